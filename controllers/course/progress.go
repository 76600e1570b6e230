package controllers

import (
	"academy/middleware"
	"academy/services"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// CompleteLesson marks a lesson as completed
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(uint)

	result, err := services.App.Progress.CompleteLesson(c.UserContext(), userID, lessonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", result)
}

// UpdateVideoProgress records how much of a video lesson was watched
func UpdateVideoProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(uint)
	reqData, ok := c.Locals("validatedVideoProgress").(*courseValidator.VideoProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.App.Progress.UpdateVideo(c.UserContext(), userID, lessonID, reqData.Percent, reqData.SecondsWatched)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved.", result)
}

// SubmitQuiz grades a quiz attempt
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(uint)
	answers, ok := c.Locals("validatedQuizAnswers").(map[uint]uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.App.Progress.SubmitQuiz(c.UserContext(), userID, lessonID, answers)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Quiz not passed. Try again!"
	if result.QuizPassed != nil && *result.QuizPassed {
		message = "Quiz passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}
