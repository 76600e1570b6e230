package authController

import (
	"errors"
	"time"

	"academy/config"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	authValidator "academy/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 3
	blockDuration   = time.Minute
	failureWindow   = 15 * time.Minute
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.Errorw("hashing password failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Role:     models.RoleUser,
		Password: string(hashedPassword),
	}

	if err := db.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		logger.Log.Errorw("saving user failed", "email", newUser.Email, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now().UTC()

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failureWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	ip := c.IP()
	tracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsBlocked = true
			unblockTime := now.Add(blockDuration)
			user.BlockedUntil = &unblockTime
			logger.Log.Warnw("account blocked after failed logins", "user_id", user.ID, "ip", ip)
		}

		if err := db.Save(&user).Error; err != nil {
			logger.Log.Errorw("saving failed login failed", "user_id", user.ID, "error", err)
		}
		recordLogin(db, tracking)

		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Wrong Password", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Save(&user).Error; err != nil {
		logger.Log.Errorw("saving last login failed", "user_id", user.ID, "error", err)
	}

	tracking.Succeeded = true
	recordLogin(db, tracking)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func recordLogin(db *gorm.DB, tracking models.LoginTracking) {
	if err := db.Create(&tracking).Error; err != nil {
		logger.Log.Errorw("saving login tracking failed", "user_id", tracking.UserID, "error", err)
	}
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLoginHistory").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())
	offset := (reqData.Page - 1) * reqData.Limit

	var loginTracking []models.LoginTracking
	var total int64

	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("timestamp desc").
		Offset(offset).
		Limit(reqData.Limit).
		Find(&loginTracking).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userId, false).Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	response := map[string]interface{}{
		"loginTracking": loginTracking,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", response)
}
