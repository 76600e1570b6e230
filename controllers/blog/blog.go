package blogController

import (
	"errors"
	"time"

	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models/blog"
	"academy/services"
	blogValidator "academy/validators/blog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetArticle serves an article; premium content is cut to a teaser for non-subscribers
func GetArticle(c *fiber.Ctx) error {
	slug := c.Locals("articleSlug").(string)
	ctx := c.UserContext()

	var userID *uint
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}
	viewer, err := services.App.Content.Viewer(ctx, userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view, err := services.App.Content.Article(ctx, viewer, slug)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Article fetched successfully!"
	if !view.Accessible {
		message = "Subscribe to read the full article."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, view)
}

// ListArticles pages through published articles
func ListArticles(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedArticleList").(*blogValidator.ArticleListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	articles, total, err := services.App.Content.Articles(c.UserContext(), reqData.Category, services.Page{
		Page:  reqData.Page,
		Limit: reqData.Limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Articles fetched successfully!", fiber.Map{
		"articles": articles,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// AdminCreateArticle writes a new article
func AdminCreateArticle(c *fiber.Ctx) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedArticle").(*blogValidator.ArticleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	if reqData.CategoryID != nil {
		if err := db.Where("is_active = ?", true).First(&blog.ArticleCategory{}, *reqData.CategoryID).Error; err != nil {
			return middleware.ErrorResponse(c, database.NotFound(err))
		}
	}

	article := blog.Article{
		Title:      reqData.Title,
		Slug:       reqData.Slug,
		Summary:    reqData.Summary,
		Content:    reqData.Content,
		CategoryID: reqData.CategoryID,
		AuthorID:   &adminID,
		Tags:       reqData.Tags,
		IsPremium:  reqData.IsPremium,
		Published:  reqData.Published,
	}
	if article.Published {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	if err := db.Create(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "An article with this slug already exists!", nil)
		}
		logger.Log.Errorw("creating article failed", "slug", article.Slug, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create article!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Article created successfully!", article)
}
