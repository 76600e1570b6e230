package courseRoutes

import (
	controllers "academy/controllers/course"
	"academy/middleware"
	"academy/models"
	"academy/models/course"
	adminValidators "academy/validators/admin"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up course authoring and payment review routes
func SetupAdminCourseRoutes(app *fiber.App) {
	content := middleware.CheckPermissionMiddleware(models.PermManageContent)

	// Course authoring
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, content)
	adminGroup.Post("/", validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Patch("/:id", validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Post("/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.AdminCreateLesson)

	lessonGroup := app.Group("/admin/lesson", middleware.JWTMiddleware, content)
	lessonGroup.Post("/:id/question", validators.AddQuestion(), controllers.AdminAddQuestion)

	// Payment review
	paymentGroup := app.Group("/admin/payments", middleware.JWTMiddleware, middleware.AdminOnly())
	paymentGroup.Get("/", adminValidators.PaymentList(
		string(course.PaymentPendingApproval),
		string(course.PaymentApproved),
		string(course.PaymentRejected),
		string(course.PaymentCancelled),
	), controllers.AdminListPayments)
	paymentGroup.Get("/stats", controllers.AdminPaymentStats)
	paymentGroup.Patch("/:id/approve", adminValidators.ApprovePayment(), controllers.AdminApprovePayment)
	paymentGroup.Patch("/:id/reject", adminValidators.RejectPayment(), controllers.AdminRejectPayment)
}
