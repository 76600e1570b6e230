package blogRoutes

import (
	blogControllers "academy/controllers/blog"
	"academy/middleware"
	"academy/models"
	blogValidators "academy/validators/blog"

	"github.com/gofiber/fiber/v2"
)

func SetupBlogRoutes(app *fiber.App) {
	articleGroup := app.Group("/article")

	articleGroup.Get("/list", blogValidators.ArticleList(), blogControllers.ListArticles)
	articleGroup.Get("/:slug", middleware.OptionalJWT, blogValidators.ArticleSlug(), blogControllers.GetArticle)

	app.Post("/admin/article",
		middleware.JWTMiddleware,
		middleware.CheckPermissionMiddleware(models.PermManageContent),
		blogValidators.CreateArticle(),
		blogControllers.AdminCreateArticle,
	)
}
