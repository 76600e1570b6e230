package controllers

import (
	"errors"

	"academy/middleware"
	"academy/models"
	"academy/services"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

func page(p *validators.Pagination) services.Page {
	return services.Page{Page: p.Page, Limit: p.Limit}
}

// GetAllCourses lists the published catalogue
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseList").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courses, total, err := services.App.Content.Courses(c.UserContext(), page(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// GetCourseDetails returns a course outline and, for signed-in users, their enrollment
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	ctx := c.UserContext()

	course, err := services.App.Content.Course(ctx, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	data := fiber.Map{
		"course":      course,
		"is_enrolled": false,
	}
	if userID, ok := middleware.UserID(c); ok {
		status, err := services.App.Enrollments.Get(ctx, userID, courseID)
		switch {
		case err == nil:
			data["is_enrolled"] = true
			data["enrollment"] = status
		case !errors.Is(err, models.ErrNotFound):
			return middleware.ErrorResponse(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", data)
}

// GetLesson serves one lesson if the viewer passes the access checks
func GetLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	lessonID := c.Locals("lessonID").(uint)
	ctx := c.UserContext()

	var userID *uint
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}
	viewer, err := services.App.Content.Viewer(ctx, userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view, err := services.App.Content.Lesson(ctx, viewer, courseID, lessonID)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in this course or subscribe to access this lesson!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", view)
}
