package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"academy/config"
	"academy/models"
	"academy/models/blog"
	"academy/models/course"
	"academy/models/subscription"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates it and stores it globally.
func ConnectDb() {
	cfg := config.AppConfig

	db, err := Open(cfg.DBDriver, buildDSN(cfg))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	Database = DbInstance{Db: db}
}

// Open connects to driver (postgres, mysql or sqlite) with dsn.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
}

func buildDSN(cfg *config.Config) string {
	if cfg.DBDSN != "" {
		return cfg.DBDSN
	}
	switch cfg.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case "sqlite":
		return cfg.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.LoginTracking{},
		&models.GatewayReference{},
		&course.Course{},
		&course.Module{},
		&course.Lesson{},
		&course.QuizQuestion{},
		&course.QuizOption{},
		&course.Enrollment{},
		&course.Payment{},
		&course.LessonProgress{},
		&subscription.Subscription{},
		&subscription.SubscriptionPayment{},
		&blog.ArticleCategory{},
		&blog.Article{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}
