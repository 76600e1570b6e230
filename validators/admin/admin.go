package adminValidator

import (
	"strings"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

// PaymentListQuery filters a review queue.
type PaymentListQuery struct {
	Status string `query:"status"`
	Method string `query:"method" validate:"omitempty,oneof=BANK_TRANSFER PAYPAL CREDIT_CARD FREE"`
	validators.Pagination
}

// ReviewRequest is an admin decision on a payment. Version, when sent, must
// match the payment the admin was looking at.
type ReviewRequest struct {
	Notes   string `json:"notes" validate:"omitempty,max=1000"`
	Reason  string `json:"reason" validate:"omitempty,max=1000"`
	Version *uint  `json:"version"`
}

// PaymentList validates the queue filters. allowedStatuses is the status
// vocabulary of the queue being listed.
func PaymentList(allowedStatuses ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PaymentListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		reqData.Method = strings.ToUpper(strings.TrimSpace(reqData.Method))

		errors := validators.Struct(reqData)
		if reqData.Status != "" && !contains(allowedStatuses, reqData.Status) {
			errors["status"] = "status must be one of: " + strings.Join(allowedStatuses, ", ") + "!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Normalize()

		c.Locals("validatedPaymentList", reqData)
		return c.Next()
	}
}

// ApprovePayment validates an approval of payment :id.
func ApprovePayment() fiber.Handler {
	return review(false)
}

// RejectPayment validates a rejection of payment :id; a reason is required.
func RejectPayment() fiber.Handler {
	return review(true)
}

func review(needReason bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Payment ID!", nil)
		}

		reqData := new(ReviewRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		reqData.Reason = strings.TrimSpace(reqData.Reason)

		errors := validators.Struct(reqData)
		if needReason && len(reqData.Reason) < 3 {
			errors["reason"] = "A rejection reason of at least 3 characters is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("paymentID", paymentID)
		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
