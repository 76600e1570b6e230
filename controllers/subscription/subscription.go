package subscriptionController

import (
	"academy/logger"
	"academy/middleware"
	"academy/models/subscription"
	"academy/services"
	"academy/utils"
	subscriptionValidator "academy/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

// Plans lists the plan catalogue
func Plans(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plans fetched successfully!", subscription.Plans())
}

// GetSubscription returns the caller's subscription, creating the free record on first use
func GetSubscription(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	view, err := services.App.Subscriptions.View(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription fetched successfully!", view)
}

// GetPaymentHistory lists the caller's subscription payments
func GetPaymentHistory(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	payments, err := services.App.Subscriptions.UserPayments(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment history fetched successfully!", payments)
}

func checkout(c *fiber.Ctx) (uint, services.Checkout, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, services.Checkout{}, false
	}
	reqData := c.Locals("validatedCheckout").(*subscriptionValidator.CheckoutRequest)
	return userID, services.Checkout{
		Plan:      subscription.Plan(reqData.Plan),
		Method:    reqData.Method,
		Reference: reqData.Reference,
	}, true
}

// Subscribe pays for a plan through PayPal or card
func Subscribe(c *fiber.Ctx) error {
	userID, in, ok := checkout(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sub, payment, err := services.App.Subscriptions.Subscribe(c.UserContext(), userID, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription activated!", fiber.Map{
		"subscription": sub,
		"payment":      payment,
	})
}

// Upgrade moves to a higher plan, charging the price less the unused credit
func Upgrade(c *fiber.Ctx) error {
	userID, in, ok := checkout(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sub, payment, err := services.App.Subscriptions.Upgrade(c.UserContext(), userID, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription upgraded!", fiber.Map{
		"subscription": sub,
		"payment":      payment,
	})
}

// SubmitTransfer uploads a bank transfer proof for a plan
func SubmitTransfer(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedPlanTransfer").(*subscriptionValidator.TransferRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx := c.UserContext()
	path, err := services.App.Files.Save(ctx, reqData.Proof, "subscription-proofs")
	if err != nil {
		logger.Log.Errorw("saving subscription proof failed", "user_id", userID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload proof of payment!", nil)
	}

	payment, err := services.App.Subscriptions.SubmitTransfer(ctx, userID, reqData.Plan, services.TransferInput{
		ProofPath:   path,
		SenderName:  reqData.SenderName,
		Reference:   reqData.Reference,
		BankAccount: reqData.BankAccount,
		Amount:      reqData.Amount,
		Notes:       reqData.Notes,
	})
	if err != nil {
		utils.DiscardUpload(ctx, services.App.Files, path)
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment proof submitted. An administrator will review it shortly.", fiber.Map{
		"payment":   payment,
		"proof_url": utils.GetFileURL(payment.ProofOfPaymentPath),
	})
}

// StartTrial begins the one-time free trial
func StartTrial(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sub, err := services.App.Subscriptions.StartTrial(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trial started!", sub)
}

// Cancel stops renewal; access lasts until the end of the paid period
func Cancel(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sub, err := services.App.Subscriptions.Cancel(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription cancelled. You keep access until the end of the current period.", sub)
}
