package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"academy/config"
	"academy/models"
	"academy/payments"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{models.ErrNotFound, fiber.StatusNotFound, "Resource not found!"},
		{fmt.Errorf("load course: %w", models.ErrNotFound), fiber.StatusNotFound, "Resource not found!"},
		{models.ErrAlreadyEnrolled, fiber.StatusConflict, "You are already enrolled in this course!"},
		{models.ErrStaleRecord, fiber.StatusConflict, "The record was changed by someone else. Reload and try again."},
		{models.ErrPaymentRequired, fiber.StatusPaymentRequired, "This course requires payment!"},
		{models.ErrReferenceUsed, fiber.StatusConflict, "This payment reference was already used!"},
		{models.ErrDowngrade, fiber.StatusConflict, "You already have a higher plan running!"},
		{fmt.Errorf("verify PAYPAL payment: %w", payments.ErrNotConfigured), fiber.StatusServiceUnavailable, "Payment method is not available!"},
		{&models.TransitionError{Entity: "enrollment", From: "ACTIVE", To: "CANCELLED"}, fiber.StatusBadRequest, ""},
		{errors.New("disk on fire"), fiber.StatusInternalServerError, "Something went wrong!"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body struct {
				Status  bool   `json:"status"`
				Message string `json:"message"`
			}
			raw, _ := io.ReadAll(resp.Body)
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.False(t, body.Status)
			if tc.message == "" {
				assert.Equal(t, tc.err.Error(), body.Message)
			} else {
				assert.Equal(t, tc.message, body.Message)
			}
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}

	app := fiber.New()
	app.Get("/private", JWTMiddleware, func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.SendString(fmt.Sprint(id))
	})
	app.Get("/public", OptionalJWT, func(c *fiber.Ctx) error {
		_, ok := UserID(c)
		return c.SendString(fmt.Sprint(ok))
	})

	token, err := GenerateJWT(42, "Ana", models.RoleUser, "ana@example.com")
	require.NoError(t, err)

	get := func(path, auth string) (int, string) {
		req := httptest.NewRequest("GET", path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(raw)
	}

	status, body := get("/private", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "42", body)

	status, _ = get("/private", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get("/private", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	config.AppConfig = &config.Config{JWTKey: "rotated"}
	status, _ = get("/private", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	_, body = get("/public", "Bearer not-a-token")
	assert.Equal(t, "false", body)
}
