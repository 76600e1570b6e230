package courseValidator

import (
	"mime/multipart"
	"strings"

	"academy/middleware"
	"academy/utils"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

// TransferRequest is a bank transfer proof with its metadata.
type TransferRequest struct {
	SenderName  string   `form:"sender_name" validate:"omitempty,max=150"`
	Reference   string   `form:"reference" validate:"omitempty,max=100"`
	BankAccount string   `form:"bank_account" validate:"omitempty,max=100"`
	Amount      *float64 `form:"amount" validate:"omitempty,gt=0"`
	Notes       string   `form:"notes" validate:"omitempty,max=1000"`

	Proof *multipart.FileHeader `form:"-" validate:"-"`
}

// InstantPaymentRequest settles an enrollment through a gateway.
type InstantPaymentRequest struct {
	Method    string `json:"method" validate:"required,oneof=PAYPAL CREDIT_CARD FREE"`
	Reference string `json:"reference" validate:"required_unless=Method FREE,max=255"`
}

// EnrollmentID validates the :id enrollment parameter.
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}

// TransferProof validates a multipart bank transfer submission. The proof
// file is required: png, jpg, jpeg, gif, webp or pdf up to 5MB.
func TransferProof() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := ParseTransfer(c)
		if errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTransfer", reqData)
		return c.Next()
	}
}

// ParseTransfer reads and checks the transfer form shared by course and
// subscription payments.
func ParseTransfer(c *fiber.Ctx) (*TransferRequest, map[string]string) {
	reqData := new(TransferRequest)
	if err := c.BodyParser(reqData); err != nil {
		return nil, map[string]string{"request": "Invalid multipart form!"}
	}
	reqData.SenderName = strings.TrimSpace(reqData.SenderName)
	reqData.Reference = strings.TrimSpace(reqData.Reference)

	errors := validators.Struct(reqData)

	proof, err := c.FormFile("proof")
	if err != nil {
		errors["proof"] = "Proof of payment is required!"
	} else if err := utils.ValidateProofFile(proof); err != nil {
		if err == utils.ErrFileTooLarge {
			errors["proof"] = "File exceeds the 5MB limit!"
		} else {
			errors["proof"] = "Only images (png, jpg, jpeg, gif, webp) and PDF files are allowed!"
		}
	}

	if len(errors) > 0 {
		return nil, errors
	}
	reqData.Proof = proof
	return reqData, nil
}

// InstantPayment validates a gateway payment request.
func InstantPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(InstantPaymentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Method = strings.ToUpper(strings.TrimSpace(reqData.Method))
		reqData.Reference = strings.TrimSpace(reqData.Reference)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInstantPayment", reqData)
		return c.Next()
	}
}
