package authValidator

import (
	"strings"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// LoginHistoryList validates the pagination query.
func LoginHistoryList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(validators.Pagination)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Normalize()

		c.Locals("validatedLoginHistory", reqData)
		return c.Next()
	}
}
