package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"academy/config"
	"academy/database"
	"academy/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Creates an admin account, or promotes an existing one, and grants every
// admin permission it does not hold yet.
//
//	go run ./scripts/createAdmin -email admin@example.com -password 'secret123' -name Admin
func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "password for a new account")
	name := flag.String("name", "Admin", "display name for a new account")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", strings.ToLower(*email)).First(&user).Error
		switch {
		case err == nil:
			user.Role = models.RoleAdmin
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
			log.Printf("Promoted existing user %d to admin", user.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			if len(*password) < 8 {
				log.Fatal("-password of at least 8 characters is required for a new account")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(*password), config.AppConfig.SaltRound)
			if err != nil {
				return err
			}
			user = models.User{Name: *name, Email: strings.ToLower(*email), Role: models.RoleAdmin, Password: string(hashed)}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			log.Printf("Created admin user %d", user.ID)
		default:
			return err
		}

		var held []string
		if err := tx.Model(&models.Permission{}).
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Pluck("permission", &held).Error; err != nil {
			return err
		}
		have := make(map[string]bool, len(held))
		for _, p := range held {
			have[p] = true
		}
		var missing []string
		for _, p := range models.AdminPermissions {
			if !have[p] {
				missing = append(missing, p)
			}
		}
		log.Printf("Granting permissions: %v", missing)
		return models.GrantPermissions(tx, user.ID, models.RoleAdmin, missing)
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
}
