package courseValidator

import (
	"encoding/json"
	"regexp"
	"strings"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CourseRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Slug         string  `json:"slug" validate:"required,max=200"`
	Description  string  `json:"description" validate:"omitempty,max=5000"`
	Author       string  `json:"author" validate:"omitempty,max=150"`
	Price        float64 `json:"price" validate:"gte=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3"`
	AccessDays   *int    `json:"access_days" validate:"omitempty,gt=0"`
	ThumbnailURL string  `json:"thumbnail_url" validate:"omitempty,url"`
}

type CourseUpdateRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=5000"`
	Author       *string  `json:"author" validate:"omitempty,max=150"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	AccessDays   *int     `json:"access_days" validate:"omitempty,gte=0"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,url"`
	Status       *string  `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
	IsPublished  *bool    `json:"is_published"`
}

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

type LessonRequest struct {
	Title        string          `json:"title" validate:"required,min=3,max=200"`
	Description  string          `json:"description" validate:"omitempty,max=2000"`
	ContentType  string          `json:"content_type" validate:"required,oneof=TEXT VIDEO QUIZ"`
	TextContent  string          `json:"text_content"`
	VideoURL     string          `json:"video_url" validate:"omitempty,url"`
	DurationMin  int             `json:"duration_min" validate:"gte=0"`
	Resources    json.RawMessage `json:"resources"`
	PassingScore int             `json:"passing_score" validate:"omitempty,min=1,max=100"`
	OrderIndex   int             `json:"order_index" validate:"gte=0"`
	IsPreview    bool            `json:"is_preview"`
	IsPublished  bool            `json:"is_published"`
}

type QuestionRequest struct {
	Prompt     string          `json:"prompt" validate:"required,min=3"`
	OrderIndex int             `json:"order_index" validate:"gte=0"`
	Options    []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateCourseAdmin validates a new course.
func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		reqData.Currency = strings.ToUpper(strings.TrimSpace(reqData.Currency))

		errors := validators.Struct(reqData)
		if _, bad := errors["slug"]; !bad && !slugPattern.MatchString(reqData.Slug) {
			errors["slug"] = "Slug may only contain lowercase letters, digits and hyphens!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourseAdmin validates a partial course update.
func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(CourseUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CreateModule validates a new module under :id.
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(ModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// CreateLesson validates a new lesson under :course_id/:module_id.
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		moduleID, ok := validators.ParamID(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}

		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.ContentType = strings.ToUpper(strings.TrimSpace(reqData.ContentType))

		errors := validators.Struct(reqData)
		if reqData.ContentType == "TEXT" && strings.TrimSpace(reqData.TextContent) == "" {
			errors["text_content"] = "text_content is required for TEXT lessons!"
		}
		if reqData.ContentType == "VIDEO" && reqData.VideoURL == "" {
			errors["video_url"] = "video_url is required for VIDEO lessons!"
		}
		if len(reqData.Resources) > 0 && !json.Valid(reqData.Resources) {
			errors["resources"] = "resources must be valid JSON!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// AddQuestion validates a quiz question for lesson :id.
func AddQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(QuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(reqData)
		correct := 0
		for _, o := range reqData.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if len(errors) == 0 && correct != 1 {
			errors["options"] = "Exactly one option must be correct!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("lessonID", lessonID)
		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}
