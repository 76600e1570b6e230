package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academy/database"
	"academy/models"
	"academy/models/blog"
	"academy/models/course"
	"academy/models/subscription"

	"gorm.io/gorm"
)

// ContentService serves gated lessons and articles. Entitlements are read
// fresh on every request.
type ContentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db, now: utcNow}
}

// LessonView is a lesson as served to one viewer.
type LessonView struct {
	Lesson   course.Lesson          `json:"lesson"`
	Progress *course.LessonProgress `json:"progress,omitempty"`
}

// ArticleView is an article as served to one viewer. Without access only the
// teaser is included.
type ArticleView struct {
	Article    blog.Article `json:"article"`
	Accessible bool         `json:"accessible"`
}

// Viewer loads the user behind an optional user ID. A nil ID is an anonymous viewer.
func (s *ContentService) Viewer(ctx context.Context, userID *uint) (*models.User, error) {
	if userID == nil {
		return nil, nil
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&user, *userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load viewer: %w", err)
	}
	return &user, nil
}

// Lesson returns a published lesson if viewer may see it, else models.ErrForbidden.
func (s *ContentService) Lesson(ctx context.Context, viewer *models.User, courseID, lessonID uint) (*LessonView, error) {
	db := s.db.WithContext(ctx)

	var lesson course.Lesson
	err := db.Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index ASC") }).
		Preload("Questions.Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index ASC") }).
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		First(&lesson, lessonID).Error
	if err != nil {
		return nil, database.NotFound(err)
	}

	var (
		enrollment *course.Enrollment
		sub        *subscription.Subscription
	)
	if viewer != nil {
		if enrollment, err = s.enrollment(db, viewer.ID, courseID); err != nil {
			return nil, err
		}
		if sub, err = s.subscription(db, viewer.ID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	// An enrollment past its window no longer grants access, swept or not.
	if enrollment != nil && enrollment.IsPastAccessWindow(now) {
		enrollment = nil
	}
	if !lesson.CanAccess(viewer, enrollment, sub, now) {
		return nil, models.ErrForbidden
	}
	if !viewer.IsAdmin() {
		course.HideAnswers(lesson.Questions)
	}

	view := &LessonView{Lesson: lesson}
	if viewer != nil {
		var progress course.LessonProgress
		err := db.Where("user_id = ? AND lesson_id = ?", viewer.ID, lesson.ID).First(&progress).Error
		if err == nil {
			view.Progress = &progress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load progress: %w", err)
		}
	}
	return view, nil
}

// Article returns a published article. Readers without access get the teaser
// in place of the content; readers with access count as a view.
func (s *ContentService) Article(ctx context.Context, viewer *models.User, slug string) (*ArticleView, error) {
	db := s.db.WithContext(ctx)

	var article blog.Article
	if err := db.Preload("Category").Where("slug = ? AND published = ?", slug, true).First(&article).Error; err != nil {
		return nil, database.NotFound(err)
	}

	var sub *subscription.Subscription
	if viewer != nil {
		var err error
		if sub, err = s.subscription(db, viewer.ID); err != nil {
			return nil, err
		}
	}

	if !article.CanAccess(viewer, sub, s.now()) {
		article.Content = article.Teaser()
		return &ArticleView{Article: article}, nil
	}

	err := db.Model(&blog.Article{}).Where("id = ?", article.ID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	article.ViewsCount++
	return &ArticleView{Article: article, Accessible: true}, nil
}

// Articles lists published articles, newest first, without their content.
func (s *ContentService) Articles(ctx context.Context, category string, page Page) ([]blog.Article, int64, error) {
	page = page.normalize()
	db := s.db.WithContext(ctx).Model(&blog.Article{}).Where("published = ?", true)
	if category != "" {
		db = db.Joins("JOIN article_categories ON article_categories.id = articles.category_id").
			Where("article_categories.slug = ?", category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	var list []blog.Article
	err := db.Omit("content").
		Preload("Category").
		Order("articles.published_at DESC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return list, total, nil
}

// Courses lists the published catalogue.
func (s *ContentService) Courses(ctx context.Context, page Page) ([]course.Course, int64, error) {
	page = page.normalize()
	db := s.db.WithContext(ctx).Model(&course.Course{}).
		Where("is_published = ? AND is_deleted = ? AND status = ?", true, false, course.CourseStatusActive)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	var list []course.Course
	if err := db.Order("created_at DESC").Offset(page.offset()).Limit(page.Limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return list, total, nil
}

// Course returns a published course with its published outline. Lesson
// bodies are not included; they are served one at a time through Lesson.
func (s *ContentService) Course(ctx context.Context, courseID uint) (*course.Course, error) {
	var c course.Course
	err := s.db.WithContext(ctx).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_deleted = ?", false).Order("order_index ASC")
		}).
		Preload("Modules.Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "created_at", "updated_at", "course_id", "module_id", "title", "description",
				"content_type", "duration_min", "order_index", "is_preview", "is_published").
				Where("is_published = ? AND is_deleted = ?", true, false).
				Order("order_index ASC")
		}).
		Where("is_published = ? AND is_deleted = ?", true, false).
		First(&c, courseID).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &c, nil
}

func (s *ContentService) enrollment(db *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var e course.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	return &e, nil
}

func (s *ContentService) subscription(db *gorm.DB, userID uint) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return &sub, nil
}
