package courseValidator

import (
	"strconv"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

// VideoProgressRequest reports how far a learner has watched.
type VideoProgressRequest struct {
	Percent        float64 `json:"percent" validate:"gte=0,lte=100"`
	SecondsWatched int     `json:"seconds_watched" validate:"gte=0"`
}

type quizRequest struct {
	Answers map[string]uint `json:"answers" validate:"required,min=1"`
}

// CourseList validates the catalogue pagination query.
func CourseList() fiber.Handler {
	return paginated("validatedCourseList")
}

// UserEnrollments validates the enrollment list pagination query.
func UserEnrollments() fiber.Handler {
	return paginated("validatedEnrollmentList")
}

func paginated(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(validators.Pagination)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Normalize()

		c.Locals(key, reqData)
		return c.Next()
	}
}

// CourseID validates the :id course parameter.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// LessonInCourse validates the :course_id and :lesson_id parameters.
func LessonInCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		lessonID, ok := validators.ParamID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// LessonID validates the :id lesson parameter.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// VideoProgress validates a video progress update.
func VideoProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VideoProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVideoProgress", reqData)
		return c.Next()
	}
}

// SubmitQuiz validates quiz answers given as {"answers": {"<question id>": <option id>}}.
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(quizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		answers := make(map[uint]uint, len(reqData.Answers))
		for key, option := range reqData.Answers {
			questionID, err := strconv.ParseUint(key, 10, 64)
			if err != nil || questionID == 0 || option == 0 {
				return middleware.ValidationErrorResponse(c, map[string]string{"answers": "Answers must map question IDs to option IDs!"})
			}
			answers[uint(questionID)] = option
		}

		c.Locals("validatedQuizAnswers", answers)
		return c.Next()
	}
}
