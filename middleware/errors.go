package middleware

import (
	"errors"

	"academy/logger"
	"academy/models"
	"academy/payments"
	"academy/utils"

	"github.com/gofiber/fiber/v2"
)

var errorStatus = []struct {
	target  error
	status  int
	message string
}{
	{models.ErrNotFound, fiber.StatusNotFound, "Resource not found!"},
	{models.ErrAlreadyEnrolled, fiber.StatusConflict, "You are already enrolled in this course!"},
	{models.ErrStaleRecord, fiber.StatusConflict, "The record was changed by someone else. Reload and try again."},
	{models.ErrReferenceUsed, fiber.StatusConflict, "This payment reference was already used!"},
	{models.ErrDowngrade, fiber.StatusConflict, "You already have a higher plan running!"},
	{models.ErrForbidden, fiber.StatusForbidden, "You do not have access to this content!"},
	{models.ErrInvalidTransition, fiber.StatusBadRequest, ""},
	{models.ErrPaymentProcessed, fiber.StatusBadRequest, "Payment already processed!"},
	{models.ErrTrialUsed, fiber.StatusBadRequest, "Trial already used!"},
	{models.ErrAlreadyPremium, fiber.StatusBadRequest, "You already have premium access!"},
	{models.ErrNotRenewable, fiber.StatusBadRequest, "This plan cannot be renewed!"},
	{models.ErrNotUpgrade, fiber.StatusBadRequest, "The selected plan is not an upgrade!"},
	{models.ErrInvalidPlan, fiber.StatusBadRequest, "Invalid subscription plan!"},
	{models.ErrPaymentRequired, fiber.StatusPaymentRequired, "This course requires payment!"},
	{models.ErrUnsupportedMethod, fiber.StatusBadRequest, "Unsupported payment method!"},
	{utils.ErrFileTooLarge, fiber.StatusBadRequest, "File exceeds the 5MB limit!"},
	{utils.ErrFileTypeNotAllow, fiber.StatusBadRequest, "Only images and PDF files are allowed!"},
	{payments.ErrPaymentNotCompleted, fiber.StatusPaymentRequired, "Payment has not been completed!"},
	{payments.ErrAmountMismatch, fiber.StatusBadRequest, "Paid amount does not match the price!"},
	{payments.ErrNotConfigured, fiber.StatusServiceUnavailable, "Payment method is not available!"},
}

// ErrorResponse maps a service error onto the JSON envelope. Unknown errors
// are logged and reported as a generic 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			msg := e.message
			if msg == "" {
				msg = err.Error()
			}
			return JsonResponse(c, e.status, false, msg, nil)
		}
	}

	logger.Log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// FiberErrorHandler renders errors that escape handlers in the same envelope.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return ErrorResponse(c, err)
}
