package controllers

import (
	"academy/middleware"
	"academy/services"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// AdminListPayments pages through course payments for review
func AdminListPayments(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPaymentList").(*adminValidator.PaymentListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payments, total, err := services.App.Payments.List(c.UserContext(), services.PaymentFilter{
		Status: reqData.Status,
		Method: reqData.Method,
		Page:   page(&reqData.Pagination),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// AdminPaymentStats summarises the review queue
func AdminPaymentStats(c *fiber.Ctx) error {
	stats, err := services.App.Payments.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment statistics fetched successfully!", stats)
}

// AdminApprovePayment accepts a payment and activates the enrollment
func AdminApprovePayment(c *fiber.Ctx) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	paymentID := c.Locals("paymentID").(uint)
	reqData := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	payment, err := services.App.Payments.Approve(c.UserContext(), adminID, paymentID, reqData.Notes, reqData.Version)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment approved. The enrollment is now active.", payment)
}

// AdminRejectPayment refuses a payment and cancels the enrollment
func AdminRejectPayment(c *fiber.Ctx) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	paymentID := c.Locals("paymentID").(uint)
	reqData := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	payment, err := services.App.Payments.Reject(c.UserContext(), adminID, paymentID, reqData.Reason, reqData.Notes, reqData.Version)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment rejected.", payment)
}
