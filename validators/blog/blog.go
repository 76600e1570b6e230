package blogValidator

import (
	"regexp"
	"strings"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type ArticleListQuery struct {
	Category string `query:"category" validate:"omitempty,max=100"`
	validators.Pagination
}

type ArticleRequest struct {
	Title      string `json:"title" validate:"required,min=3,max=200"`
	Slug       string `json:"slug" validate:"required,max=200"`
	Summary    string `json:"summary" validate:"omitempty,max=500"`
	Content    string `json:"content" validate:"required"`
	CategoryID *uint  `json:"category_id" validate:"omitempty,gt=0"`
	Tags       string `json:"tags" validate:"omitempty,max=500"`
	IsPremium  bool   `json:"is_premium"`
	Published  bool   `json:"published"`
}

// ArticleSlug validates the :slug parameter.
func ArticleSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
		if !slugPattern.MatchString(slug) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid article slug!", nil)
		}

		c.Locals("articleSlug", slug)
		return c.Next()
	}
}

// ArticleList validates the article listing query.
func ArticleList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ArticleListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Category = strings.ToLower(strings.TrimSpace(reqData.Category))
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Normalize()

		c.Locals("validatedArticleList", reqData)
		return c.Next()
	}
}

// CreateArticle validates a new article.
func CreateArticle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ArticleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))

		errors := validators.Struct(reqData)
		if _, bad := errors["slug"]; !bad && !slugPattern.MatchString(reqData.Slug) {
			errors["slug"] = "Slug may only contain lowercase letters, digits and hyphens!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedArticle", reqData)
		return c.Next()
	}
}
