package subscriptionRoutes

import (
	subscriptionControllers "academy/controllers/subscription"
	"academy/middleware"
	"academy/models"
	"academy/models/subscription"
	adminValidators "academy/validators/admin"
	subscriptionValidators "academy/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(app *fiber.App) {
	app.Get("/subscription/plans", subscriptionControllers.Plans)

	subGroup := app.Group("/subscription", middleware.JWTMiddleware)
	subGroup.Get("/", subscriptionControllers.GetSubscription)
	subGroup.Get("/payments", subscriptionControllers.GetPaymentHistory)
	subGroup.Post("/subscribe", subscriptionValidators.Checkout(), subscriptionControllers.Subscribe)
	subGroup.Post("/upgrade", subscriptionValidators.Checkout(), subscriptionControllers.Upgrade)
	subGroup.Post("/payment", subscriptionValidators.Transfer(), subscriptionControllers.SubmitTransfer)
	subGroup.Post("/trial", subscriptionControllers.StartTrial)
	subGroup.Post("/cancel", subscriptionControllers.Cancel)

	adminGroup := app.Group("/admin/subscription", middleware.JWTMiddleware)
	adminGroup.Get("/payments", middleware.AdminOnly(), adminValidators.PaymentList(
		string(subscription.PaymentPending),
		string(subscription.PaymentCompleted),
		string(subscription.PaymentFailed),
		string(subscription.PaymentRefunded),
	), subscriptionControllers.AdminListPayments)
	adminGroup.Get("/stats", middleware.AdminOnly(), subscriptionControllers.AdminStats)
	adminGroup.Patch("/payments/:id/approve", middleware.AdminOnly(), adminValidators.ApprovePayment(), subscriptionControllers.AdminApprovePayment)
	adminGroup.Patch("/payments/:id/reject", middleware.AdminOnly(), adminValidators.RejectPayment(), subscriptionControllers.AdminRejectPayment)
	adminGroup.Post("/sweep", middleware.CheckPermissionMiddleware(models.PermRunSweep), subscriptionControllers.AdminRunSweep)
}
