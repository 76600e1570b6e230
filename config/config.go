package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	// ProxyHeader carries the client IP, honoured only from TrustedProxies.
	ProxyHeader    string
	TrustedProxies []string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // overrides the individual DB_* values when set

	JWTKey    string
	SaltRound int

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string
	AdminEmail      string
	BaseURL         string

	PayPalAPIBaseURL   string
	PayPalClientID     string
	PayPalClientSecret string
	StripeSecretKey    string

	CloudinaryURL string
	UploadDir     string

	SchedulerTimezone    string
	BankTransferCurrency string
	DefaultCurrency      string
	ReminderDays         int
	TrialDays            int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		ProxyHeader:    getEnv("PROXY_HEADER", ""),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "academy"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@academy.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Academy"),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		BaseURL:         getEnv("BASE_URL", "http://localhost:3000"),

		PayPalAPIBaseURL:   getEnv("PAYPAL_API_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		UploadDir:     getEnv("UPLOAD_DIR", "./public/uploads"),

		SchedulerTimezone:    getEnv("SCHEDULER_TIMEZONE", "UTC"),
		BankTransferCurrency: getEnv("BANK_TRANSFER_CURRENCY", "MXN"),
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "USD"),
		ReminderDays:         getEnvInt("REMINDER_DAYS", 7),
		TrialDays:            getEnvInt("TRIAL_DAYS", 7),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will only be logged.")
	}
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated environment variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
