package middleware

import (
	"errors"

	"academy/database"
	"academy/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckPermissionMiddleware returns a middleware that lets through admins
// holding requiredPermission. It must run after JWTMiddleware.
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		db := database.Database.Db.WithContext(c.UserContext())

		var user models.User
		if err := db.Where("is_deleted = ?", false).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User not found", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}
		if !user.IsAdmin() {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		var permission models.Permission
		err := db.Where("user_id = ? AND permission = ? AND is_deleted = ?", userID, requiredPermission, false).
			First(&permission).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		return c.Next()
	}
}

// AdminOnly guards the payment review endpoints.
func AdminOnly() fiber.Handler {
	return CheckPermissionMiddleware(models.PermReviewPayments)
}
