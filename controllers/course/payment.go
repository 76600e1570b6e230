package controllers

import (
	"academy/logger"
	"academy/middleware"
	"academy/models/course"
	"academy/services"
	"academy/utils"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

const proofFolder = "proofs"

func transferInput(path string, req *courseValidator.TransferRequest) services.TransferInput {
	return services.TransferInput{
		ProofPath:   path,
		SenderName:  req.SenderName,
		Reference:   req.Reference,
		BankAccount: req.BankAccount,
		Amount:      req.Amount,
		Notes:       req.Notes,
	}
}

// SubmitTransferProof uploads a bank transfer proof for review
func SubmitTransferProof(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedTransfer").(*courseValidator.TransferRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx := c.UserContext()
	path, err := services.App.Files.Save(ctx, reqData.Proof, proofFolder)
	if err != nil {
		logger.Log.Errorw("saving transfer proof failed", "user_id", userID, "enrollment_id", enrollmentID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload proof of payment!", nil)
	}

	payment, err := services.App.Payments.SubmitTransfer(ctx, userID, enrollmentID, transferInput(path, reqData))
	if err != nil {
		utils.DiscardUpload(ctx, services.App.Files, path)
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment proof submitted. An administrator will review it shortly.", fiber.Map{
		"payment":   payment,
		"proof_url": utils.GetFileURL(payment.ProofOfPaymentPath),
	})
}

// PayInstant settles an enrollment through PayPal, card or the free path
func PayInstant(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedInstantPayment").(*courseValidator.InstantPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payment, err := services.App.Payments.PayInstant(c.UserContext(), userID, enrollmentID, course.PaymentMethod(reqData.Method), reqData.Reference)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment completed. Your course is now active!", payment)
}

// WithdrawPayment cancels a proof that is still waiting for review
func WithdrawPayment(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)

	if err := services.App.Payments.Withdraw(c.UserContext(), userID, enrollmentID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment withdrawn.", nil)
}
