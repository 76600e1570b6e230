package subscriptionController

import (
	"academy/middleware"
	"academy/services"
	"academy/utils"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func AdminListPayments(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPaymentList").(*adminValidator.PaymentListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payments, total, err := services.App.Subscriptions.ListPayments(c.UserContext(), reqData.Status, services.Page{
		Page:  reqData.Page,
		Limit: reqData.Limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription payments fetched successfully!", fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

func AdminStats(c *fiber.Ctx) error {
	stats, err := services.App.Subscriptions.Statistics(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription statistics fetched successfully!", stats)
}

func AdminApprovePayment(c *fiber.Ctx) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	paymentID := c.Locals("paymentID").(uint)
	reqData := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	payment, err := services.App.Subscriptions.ApprovePayment(c.UserContext(), adminID, paymentID, reqData.Version)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment approved. The subscription is now active.", payment)
}

func AdminRejectPayment(c *fiber.Ctx) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	paymentID := c.Locals("paymentID").(uint)
	reqData := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	payment, err := services.App.Subscriptions.RejectPayment(c.UserContext(), adminID, paymentID, reqData.Reason, reqData.Version)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment rejected.", payment)
}

// AdminRunSweep runs the daily reminder and expiry sweep immediately
func AdminRunSweep(c *fiber.Ctx) error {
	result := utils.RunDailySweep(c.UserContext(), services.App.Subscriptions, services.App.Enrollments)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sweep completed.", result)
}
