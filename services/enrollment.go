package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academy/database"
	"academy/logger"
	"academy/models"
	"academy/models/course"

	"gorm.io/gorm"
)

// EnrollmentService manages course claims.
type EnrollmentService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewEnrollmentService(db *gorm.DB, notifier Notifier) *EnrollmentService {
	return &EnrollmentService{db: db, notifier: notifier, now: utcNow}
}

// EnrollmentStatus is an enrollment together with the payment currently
// attached to it.
type EnrollmentStatus struct {
	Enrollment     course.Enrollment `json:"enrollment"`
	CurrentPayment *course.Payment   `json:"current_payment"`
	CanAccess      bool              `json:"can_access"`
}

// Enroll claims a course for the user. A cancelled or expired claim is
// reopened in place; a free course is activated immediately.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*course.Enrollment, error) {
	now := s.now()
	var (
		user       models.User
		c          course.Course
		enrollment course.Enrollment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return database.NotFound(err)
		}
		if err := tx.Where("is_deleted = ?", false).First(&c, courseID).Error; err != nil {
			return database.NotFound(err)
		}
		if !c.IsEnrollable() {
			return models.ErrNotFound
		}

		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		switch {
		case err == nil:
			if enrollment.Status != course.EnrollmentCancelled && enrollment.Status != course.EnrollmentExpired {
				return models.ErrAlreadyEnrolled
			}
			if err := enrollment.Reopen(&c, now); err != nil {
				return err
			}
			if err := database.SaveVersioned(tx, &enrollment, &enrollment.Version); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			enrollment = *course.NewEnrollment(userID, &c, now)
			if err := tx.Create(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.ErrAlreadyEnrolled
				}
				return fmt.Errorf("create enrollment: %w", err)
			}
		default:
			return fmt.Errorf("load enrollment: %w", err)
		}

		if c.IsFree() {
			return activateFree(tx, &enrollment, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.EnrollmentCreated(user, c, enrollment)
	return &enrollment, nil
}

// activateFree records a zero-amount payment and activates the enrollment.
func activateFree(tx *gorm.DB, e *course.Enrollment, now time.Time) error {
	payment := course.Payment{
		EnrollmentID:  e.ID,
		UserID:        e.UserID,
		Amount:        0,
		Currency:      e.Currency,
		PaymentMethod: course.MethodFree,
	}
	payment.MarkInstantApproved(now)
	if err := tx.Create(&payment).Error; err != nil {
		return fmt.Errorf("create free payment: %w", err)
	}
	if err := e.Activate(now); err != nil {
		return err
	}
	e.CurrentPaymentID = &payment.ID
	return database.SaveVersioned(tx, e, &e.Version)
}

// Cancel removes an enrollment the user never paid for, together with its
// payment history.
func (s *EnrollmentService) Cancel(ctx context.Context, userID, enrollmentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e course.Enrollment
		if err := tx.Where("user_id = ?", userID).First(&e, enrollmentID).Error; err != nil {
			return database.NotFound(err)
		}
		if e.Status != course.EnrollmentPendingPayment {
			return &models.TransitionError{Entity: "enrollment", From: string(e.Status), To: string(course.EnrollmentCancelled)}
		}
		if err := e.Cancel(s.now()); err != nil {
			return err
		}

		if err := tx.Unscoped().Where("enrollment_id = ?", e.ID).Delete(&course.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		res := tx.Unscoped().Where("version = ?", e.Version).Delete(&e)
		if res.Error != nil {
			return fmt.Errorf("delete enrollment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrStaleRecord
		}
		return nil
	})
}

// Get returns the user's enrollment in a course.
func (s *EnrollmentService) Get(ctx context.Context, userID, courseID uint) (*EnrollmentStatus, error) {
	db := s.db.WithContext(ctx)

	var e course.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error; err != nil {
		return nil, database.NotFound(err)
	}

	status := &EnrollmentStatus{Enrollment: e, CanAccess: e.CanAccessCourse()}
	if e.CurrentPaymentID != nil {
		var p course.Payment
		if err := db.First(&p, *e.CurrentPaymentID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load current payment: %w", err)
			}
		} else {
			status.CurrentPayment = &p
		}
	}
	return status, nil
}

// List pages through the user's enrollments, newest first.
func (s *EnrollmentService) List(ctx context.Context, userID uint, page Page) ([]course.Enrollment, int64, error) {
	page = page.normalize()
	db := s.db.WithContext(ctx).Model(&course.Enrollment{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	var enrollments []course.Enrollment
	err := db.Preload("Course").
		Order("created_at DESC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ExpireDue ends active enrollments whose access window has passed. Each row
// is expired in its own transaction so one conflict does not block the rest.
func (s *EnrollmentService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()

	var due []course.Enrollment
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", course.EnrollmentActive, now).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("find due enrollments: %w", err)
	}

	expired := 0
	for i := range due {
		e := &due[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := e.Expire(); err != nil {
				return err
			}
			return database.SaveVersioned(tx, e, &e.Version)
		})
		if err != nil {
			logger.Log.Warnw("enrollment expiry skipped", "enrollment_id", e.ID, "error", err)
			continue
		}
		expired++
	}
	return expired, nil
}
