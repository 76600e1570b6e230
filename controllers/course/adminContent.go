package controllers

import (
	"errors"

	"academy/config"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	courseModels "academy/models/course"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminCreateCourse creates a new draft course
func AdminCreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	currency := reqData.Currency
	if currency == "" {
		currency = config.AppConfig.DefaultCurrency
	}
	course := courseModels.Course{
		Title:        reqData.Title,
		Slug:         reqData.Slug,
		Description:  reqData.Description,
		Author:       reqData.Author,
		Price:        reqData.Price,
		Currency:     currency,
		AccessDays:   reqData.AccessDays,
		ThumbnailURL: reqData.ThumbnailURL,
		Status:       courseModels.CourseStatusDraft,
		IsPublished:  false,
	}

	if err := database.Database.Db.WithContext(c.UserContext()).Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A course with this slug already exists!", nil)
		}
		logger.Log.Errorw("creating course failed", "slug", course.Slug, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse changes course terms or publishes it. Existing
// enrollments keep the price and access window they were created with.
func AdminUpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.CourseUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.ErrorResponse(c, database.NotFound(err))
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Author != nil {
		course.Author = *reqData.Author
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.AccessDays != nil {
		// 0 switches the course to lifetime access
		if *reqData.AccessDays == 0 {
			course.AccessDays = nil
		} else {
			course.AccessDays = reqData.AccessDays
		}
	}
	if reqData.ThumbnailURL != nil {
		course.ThumbnailURL = *reqData.ThumbnailURL
	}
	if reqData.Status != nil {
		course.Status = *reqData.Status
	}
	if reqData.IsPublished != nil {
		course.IsPublished = *reqData.IsPublished
	}

	if err := db.Omit("Modules").Save(&course).Error; err != nil {
		logger.Log.Errorw("updating course failed", "course_id", courseID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminCreateModule adds a module to a course
func AdminCreateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&courseModels.Course{}).Error; err != nil {
		return middleware.ErrorResponse(c, database.NotFound(err))
	}

	module := courseModels.Module{
		CourseID:    courseID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}
	if err := db.Create(&module).Error; err != nil {
		logger.Log.Errorw("creating module failed", "course_id", courseID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminCreateLesson adds a lesson to a module of a course
func AdminCreateLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	moduleID := c.Locals("moduleID").(uint)
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	var module courseModels.Module
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.ErrorResponse(c, database.NotFound(err))
	}

	passing := reqData.PassingScore
	if passing == 0 {
		passing = courseModels.DefaultPassingScore
	}
	lesson := courseModels.Lesson{
		CourseID:     courseID,
		ModuleID:     moduleID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		ContentType:  reqData.ContentType,
		TextContent:  reqData.TextContent,
		VideoURL:     reqData.VideoURL,
		DurationMin:  reqData.DurationMin,
		PassingScore: passing,
		OrderIndex:   reqData.OrderIndex,
		IsPreview:    reqData.IsPreview,
		IsPublished:  reqData.IsPublished,
	}
	if len(reqData.Resources) > 0 {
		lesson.Resources = datatypes.JSON(reqData.Resources)
	}

	if err := db.Create(&lesson).Error; err != nil {
		logger.Log.Errorw("creating lesson failed", "module_id", moduleID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminAddQuestion adds a question with its options to a quiz lesson
func AdminAddQuestion(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)
	reqData, ok := c.Locals("validatedQuestion").(*courseValidator.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, database.NotFound(err))
	}
	if lesson.ContentType != courseModels.ContentQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Questions can only be added to QUIZ lessons!", nil)
	}

	question := courseModels.QuizQuestion{
		LessonID:   lessonID,
		Prompt:     reqData.Prompt,
		OrderIndex: reqData.OrderIndex,
	}
	for i, o := range reqData.Options {
		question.Options = append(question.Options, courseModels.QuizOption{
			OptionText: o.Text,
			IsCorrect:  o.IsCorrect,
			OrderIndex: i,
		})
	}

	// Create saves the options with the question in one transaction
	if err := db.Create(&question).Error; err != nil {
		logger.Log.Errorw("creating question failed", "lesson_id", lessonID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}
