package main

import (
	"log"

	"academy/config"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/payments"
	authRoutes "academy/routers/authRoutes"
	blogRoutes "academy/routers/blogRoutes"
	courseRoutes "academy/routers/courseRoutes"
	subscriptionRoutes "academy/routers/subscriptionRoutes"
	"academy/services"
	"academy/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func gateways(cfg *config.Config) services.Gateways {
	g := services.Gateways{}
	if cfg.PayPalClientID != "" && cfg.PayPalClientSecret != "" {
		g["PAYPAL"] = payments.NewPayPalClient(cfg.PayPalAPIBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)
	} else {
		logger.Log.Warn("PayPal credentials not set. PayPal payments are disabled.")
	}
	if cfg.StripeSecretKey != "" {
		g["CREDIT_CARD"] = payments.NewStripeClient(cfg.StripeSecretKey)
	} else {
		logger.Log.Warn("STRIPE_SECRET_KEY not set. Card payments are disabled.")
	}
	return g
}

// newApp builds the HTTP server with every route mounted.
func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:            middleware.FiberErrorHandler,
		BodyLimit:               6 * 1024 * 1024,
		ProxyHeader:             cfg.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.TrustedProxies,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Uploaded payment proofs
	app.Static("/uploads", cfg.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	blogRoutes.SetupBlogRoutes(app)
	subscriptionRoutes.SetupSubscriptionRoutes(app)

	return app
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database.ConnectDb()
	utils.InitMailer()

	services.App = services.NewRegistry(
		database.Database.Db,
		cfg,
		utils.NewEmailNotifier(cfg.AdminEmail, cfg.BaseURL),
		gateways(cfg),
		utils.NewFileStore(),
	)

	scheduler, err := utils.InitializeSubscriptionScheduler(cfg.SchedulerTimezone, services.App.Subscriptions, services.App.Enrollments)
	if err != nil {
		log.Fatalf("Failed to start subscription scheduler: %v", err)
	}
	defer scheduler.Stop()

	app := newApp(cfg)

	logger.Log.Infof("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatalf("Server stopped: %v", err)
	}
}
