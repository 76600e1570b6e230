package course

import (
	"time"

	"academy/models"
	"academy/models/subscription"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContentText  = "TEXT"
	ContentVideo = "VIDEO"
	ContentQuiz  = "QUIZ"

	DefaultPassingScore = 70
	// VideoCompletionPercent is how far a video must be watched to count as completed.
	VideoCompletionPercent = 90.0
)

// Lesson is a unit of course content
type Lesson struct {
	gorm.Model
	CourseID     uint           `json:"course_id" gorm:"index;not null"`
	ModuleID     uint           `json:"module_id" gorm:"index;not null"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ContentType  string         `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, QUIZ
	TextContent  string         `json:"text_content,omitempty" gorm:"type:text"`
	VideoURL     string         `json:"video_url,omitempty"`
	DurationMin  int            `json:"duration_min" gorm:"default:0"`
	Resources    datatypes.JSON `json:"resources,omitempty"`
	PassingScore int            `json:"passing_score" gorm:"default:70"`
	OrderIndex   int            `json:"order_index" gorm:"default:0"`
	IsPreview    bool           `json:"is_preview" gorm:"default:false"`
	IsPublished  bool           `json:"is_published" gorm:"default:false"`
	IsDeleted    bool           `json:"-" gorm:"default:false"`

	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:LessonID"`
}

// CanAccess decides whether user may view the lesson. Checks run in a fixed
// order: preview, authentication, admin, enrollment, subscription.
func (l *Lesson) CanAccess(user *models.User, enrollment *Enrollment, sub *subscription.Subscription, now time.Time) bool {
	if l.IsPreview {
		return true
	}
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if enrollment != nil && enrollment.CanAccessCourse() {
		return true
	}
	if sub != nil && sub.HasPremiumAccess(now) {
		return true
	}
	return false
}

// RequiredScore is the quiz pass mark.
func (l *Lesson) RequiredScore() int {
	if l.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return l.PassingScore
}

// LessonProgress tracks one user's progress through one lesson
type LessonProgress struct {
	gorm.Model
	UserID        uint           `json:"user_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	LessonID      uint           `json:"lesson_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	EnrollmentID  uint           `json:"enrollment_id" gorm:"index;not null"`
	IsCompleted   bool           `json:"is_completed" gorm:"default:false"`
	CompletedAt   *time.Time     `json:"completed_at"`
	VideoProgress float64        `json:"video_progress" gorm:"default:0"`
	TimeSpent     int            `json:"time_spent" gorm:"default:0"` // seconds
	QuizScore     *float64       `json:"quiz_score"`
	QuizAttempts  int            `json:"quiz_attempts" gorm:"default:0"`
	QuizPassed    bool           `json:"quiz_passed" gorm:"default:false"`
	QuizAnswers   datatypes.JSON `json:"quiz_answers,omitempty"`
	LastAccessed  *time.Time     `json:"last_accessed"`
}

// MarkComplete is idempotent; the first completion time is kept.
func (p *LessonProgress) MarkComplete(now time.Time) {
	p.LastAccessed = &now
	if p.IsCompleted {
		return
	}
	p.IsCompleted = true
	p.CompletedAt = &now
}

// UpdateVideo records watch progress and completes the lesson past the threshold.
func (p *LessonProgress) UpdateVideo(percent float64, secondsWatched int, now time.Time) {
	percent = clampPercent(percent)
	if percent > p.VideoProgress {
		p.VideoProgress = percent
	}
	if secondsWatched > 0 {
		p.TimeSpent += secondsWatched
	}
	p.LastAccessed = &now
	if p.VideoProgress >= VideoCompletionPercent {
		p.MarkComplete(now)
	}
}

// RecordQuiz stores an attempt and completes the lesson when it passes.
func (p *LessonProgress) RecordQuiz(score float64, passingScore int, answers datatypes.JSON, now time.Time) bool {
	p.QuizAttempts++
	p.QuizScore = &score
	p.QuizAnswers = answers
	p.LastAccessed = &now
	passed := score >= float64(passingScore)
	if passed {
		p.QuizPassed = true
		p.MarkComplete(now)
	}
	return passed
}

func clampPercent(v float64) float64 {
	return max(0, min(100, v))
}
