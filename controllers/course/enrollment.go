package controllers

import (
	"academy/middleware"
	"academy/services"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse claims a course for the current user
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	enrollment, err := services.App.Enrollments.Enroll(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Enrollment created. Submit your payment to get access."
	if enrollment.CanAccessCourse() {
		message = "Enrolled successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, enrollment)
}

// GetEnrollmentStatus returns the user's enrollment in a course with its current payment
func GetEnrollmentStatus(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	status, err := services.App.Enrollments.Get(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched successfully!", fiber.Map{
		"enrollment":      status.Enrollment,
		"status_display":  status.Enrollment.Status.DisplayName(),
		"badge_class":     status.Enrollment.Status.BadgeClass(),
		"current_payment": status.CurrentPayment,
		"can_access":      status.CanAccess,
	})
}

// GetUserEnrollmentsList lists the user's enrollments
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedEnrollmentList").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollments, total, err := services.App.Enrollments.List(c.UserContext(), userID, page(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// CancelEnrollment drops an enrollment that was never paid
func CancelEnrollment(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)

	if err := services.App.Enrollments.Cancel(c.UserContext(), userID, enrollmentID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled.", nil)
}
