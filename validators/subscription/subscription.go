package subscriptionValidator

import (
	"strings"

	"academy/middleware"
	"academy/models/subscription"
	"academy/validators"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// CheckoutRequest buys or upgrades to a paid plan through a gateway.
type CheckoutRequest struct {
	Plan      string `json:"plan" validate:"required,oneof=MONTHLY ANNUAL LIFETIME"`
	Method    string `json:"method" validate:"required,oneof=PAYPAL CREDIT_CARD"`
	Reference string `json:"reference" validate:"omitempty,max=255"`
}

// TransferRequest is a bank transfer for a plan.
type TransferRequest struct {
	Plan subscription.Plan
	*courseValidator.TransferRequest
}

// Checkout validates a subscribe or upgrade request.
func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CheckoutRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Plan = strings.ToUpper(strings.TrimSpace(reqData.Plan))
		reqData.Method = strings.ToUpper(strings.TrimSpace(reqData.Method))
		reqData.Reference = strings.TrimSpace(reqData.Reference)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

// Transfer validates a multipart plan payment with a "plan" field and a proof file.
func Transfer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan := subscription.Plan(strings.ToUpper(strings.TrimSpace(c.FormValue("plan"))))

		transfer, errors := courseValidator.ParseTransfer(c)
		if errors == nil {
			errors = map[string]string{}
		}
		if !plan.IsPaid() {
			errors["plan"] = "plan must be one of: MONTHLY, ANNUAL, LIFETIME!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPlanTransfer", &TransferRequest{Plan: plan, TransferRequest: transfer})
		return c.Next()
	}
}
