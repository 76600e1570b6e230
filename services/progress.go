package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"academy/database"
	"academy/models"
	"academy/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressService records lesson progress and keeps the enrollment's course
// progress in step with it.
type ProgressService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db, now: utcNow}
}

// ProgressResult is the state after a progress update.
type ProgressResult struct {
	Progress         course.LessonProgress   `json:"progress"`
	CourseProgress   float64                 `json:"course_progress"`
	EnrollmentStatus course.EnrollmentStatus `json:"enrollment_status"`
	QuizPassed       *bool                   `json:"quiz_passed,omitempty"`
	QuizScore        *float64                `json:"quiz_score,omitempty"`
}

// CompleteLesson marks a lesson as done.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*ProgressResult, error) {
	return s.record(ctx, userID, lessonID, func(tx *gorm.DB, _ *course.Lesson, p *course.LessonProgress, now time.Time, _ *ProgressResult) error {
		p.MarkComplete(now)
		return nil
	})
}

// UpdateVideo records how far a video has been watched.
func (s *ProgressService) UpdateVideo(ctx context.Context, userID, lessonID uint, percent float64, secondsWatched int) (*ProgressResult, error) {
	return s.record(ctx, userID, lessonID, func(tx *gorm.DB, _ *course.Lesson, p *course.LessonProgress, now time.Time, _ *ProgressResult) error {
		p.UpdateVideo(percent, secondsWatched, now)
		return nil
	})
}

// SubmitQuiz grades answers (question ID -> option ID) for a quiz lesson.
func (s *ProgressService) SubmitQuiz(ctx context.Context, userID, lessonID uint, answers map[uint]uint) (*ProgressResult, error) {
	return s.record(ctx, userID, lessonID, func(tx *gorm.DB, lesson *course.Lesson, p *course.LessonProgress, now time.Time, out *ProgressResult) error {
		if lesson.ContentType != course.ContentQuiz {
			return fmt.Errorf("lesson %d is not a quiz: %w", lesson.ID, models.ErrNotFound)
		}
		var questions []course.QuizQuestion
		if err := tx.Preload("Options").Where("lesson_id = ?", lesson.ID).Find(&questions).Error; err != nil {
			return fmt.Errorf("load questions: %w", err)
		}

		raw, err := json.Marshal(answers)
		if err != nil {
			return err
		}
		score := course.ScoreQuiz(questions, answers)
		passed := p.RecordQuiz(score, lesson.RequiredScore(), datatypes.JSON(raw), now)
		out.QuizPassed = &passed
		out.QuizScore = &score
		return nil
	})
}

type progressChange func(tx *gorm.DB, lesson *course.Lesson, p *course.LessonProgress, now time.Time, out *ProgressResult) error

func (s *ProgressService) record(ctx context.Context, userID, lessonID uint, change progressChange) (*ProgressResult, error) {
	out := &ProgressResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		var lesson course.Lesson
		if err := tx.Where("is_published = ? AND is_deleted = ?", true, false).First(&lesson, lessonID).Error; err != nil {
			return database.NotFound(err)
		}

		var enrollment course.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (!enrollment.CanAccessCourse() || enrollment.IsPastAccessWindow(now))) {
			return models.ErrForbidden
		}
		if err != nil {
			return fmt.Errorf("load enrollment: %w", err)
		}

		var progress course.LessonProgress
		err = tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			progress = course.LessonProgress{UserID: userID, LessonID: lessonID, EnrollmentID: enrollment.ID}
		case err != nil:
			return fmt.Errorf("load progress: %w", err)
		}

		if err := change(tx, &lesson, &progress, now, out); err != nil {
			return err
		}
		if err := tx.Save(&progress).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		pct, err := courseProgress(tx, userID, lesson.CourseID)
		if err != nil {
			return err
		}
		enrollment.UpdateProgress(pct, now)
		if err := database.SaveVersioned(tx, &enrollment, &enrollment.Version); err != nil {
			return err
		}

		out.Progress = progress
		out.CourseProgress = enrollment.ProgressPercentage
		out.EnrollmentStatus = enrollment.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// courseProgress is completed published lessons over all published lessons, in percent.
func courseProgress(tx *gorm.DB, userID, courseID uint) (float64, error) {
	var total int64
	err := tx.Model(&course.Lesson{}).
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	var done int64
	err = tx.Model(&course.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.is_completed = ?", userID, true).
		Where("lessons.course_id = ? AND lessons.is_published = ? AND lessons.is_deleted = ?", courseID, true, false).
		Where("lessons.deleted_at IS NULL").
		Count(&done).Error
	if err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return float64(done) / float64(total) * 100, nil
}
