package courseRoutes

import (
	controllers "academy/controllers/course"
	"academy/middleware"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalogue (published courses)
	courseGroup.Get("/list", validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.OptionalJWT, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Get("/:id/enrollment", middleware.JWTMiddleware, validators.CourseID(), controllers.GetEnrollmentStatus)

	// Gated lesson content
	courseGroup.Get("/:course_id/lesson/:lesson_id", middleware.OptionalJWT, validators.LessonInCourse(), controllers.GetLesson)

	// Progress
	lessonGroup := app.Group("/lesson", middleware.JWTMiddleware)
	lessonGroup.Post("/:id/complete", validators.LessonID(), controllers.CompleteLesson)
	lessonGroup.Post("/:id/video", validators.LessonID(), validators.VideoProgress(), controllers.UpdateVideoProgress)
	lessonGroup.Post("/:id/quiz", validators.LessonID(), validators.SubmitQuiz(), controllers.SubmitQuiz)

	app.Get("/user/enrollments", middleware.JWTMiddleware, validators.UserEnrollments(), controllers.GetUserEnrollmentsList)

	// Payments
	enrollmentGroup := app.Group("/enrollment", middleware.JWTMiddleware)
	enrollmentGroup.Post("/:id/payment", validators.EnrollmentID(), validators.TransferProof(), controllers.SubmitTransferProof)
	enrollmentGroup.Post("/:id/pay", validators.EnrollmentID(), validators.InstantPayment(), controllers.PayInstant)
	enrollmentGroup.Delete("/:id/payment", validators.EnrollmentID(), controllers.WithdrawPayment)
	enrollmentGroup.Delete("/:id", validators.EnrollmentID(), controllers.CancelEnrollment)
}
