package middleware

import (
	"fmt"
	"strings"
	"time"

	"academy/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    now.Unix(),
		"exp":    now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// parseBearer returns the user ID carried by a valid bearer token.
func parseBearer(authHeader string) (uint, string) {
	if authHeader == "" {
		return 0, "Missing or invalid Authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, "Invalid Authorization header format"
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "Invalid token payload"
	}
	// JWT numbers decode as float64
	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return 0, "Invalid token payload"
	}
	return uint(userID), ""
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// user ID under "userId".
func JWTMiddleware(c *fiber.Ctx) error {
	userID, problem := parseBearer(c.Get("Authorization"))
	if problem != "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, problem, nil)
	}

	c.Locals("userId", userID)
	return c.Next()
}

// OptionalJWT sets "userId" when a valid token is present and lets anonymous
// requests through otherwise.
func OptionalJWT(c *fiber.Ctx) error {
	if userID, problem := parseBearer(c.Get("Authorization")); problem == "" {
		c.Locals("userId", userID)
	}
	return c.Next()
}

// UserID returns the authenticated user, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userId").(uint)
	return id, ok
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
