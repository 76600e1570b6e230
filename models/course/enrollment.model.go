package course

import (
	"time"

	"academy/models"

	"gorm.io/gorm"
)

// EnrollmentStatus tracks a course claim from request to completion
type EnrollmentStatus string

const (
	EnrollmentPendingPayment         EnrollmentStatus = "PENDING_PAYMENT"
	EnrollmentPaymentPendingApproval EnrollmentStatus = "PAYMENT_PENDING_APPROVAL"
	EnrollmentActive                 EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted              EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled              EnrollmentStatus = "CANCELLED"
	EnrollmentExpired                EnrollmentStatus = "EXPIRED"
)

var enrollmentDisplay = map[EnrollmentStatus][2]string{
	EnrollmentPendingPayment:         {"Pending payment", "warning"},
	EnrollmentPaymentPendingApproval: {"Payment awaiting approval", "info"},
	EnrollmentActive:                 {"Active", "success"},
	EnrollmentCompleted:              {"Completed", "primary"},
	EnrollmentCancelled:              {"Cancelled", "danger"},
	EnrollmentExpired:                {"Expired", "secondary"},
}

func (s EnrollmentStatus) DisplayName() string { return enrollmentDisplay[s][0] }
func (s EnrollmentStatus) BadgeClass() string  { return enrollmentDisplay[s][1] }

// Enrollment is one user's claim on one course
type Enrollment struct {
	gorm.Model
	UserID             uint             `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID           uint             `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	Status             EnrollmentStatus `json:"status" gorm:"type:varchar(30);not null;default:'PENDING_PAYMENT';index"`
	EnrolledPrice      float64          `json:"enrolled_price" gorm:"default:0"`
	Currency           string           `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	ProgressPercentage float64          `json:"progress_percentage" gorm:"default:0"`
	AccessDays         *int             `json:"access_days"`
	EnrolledAt         time.Time        `json:"enrolled_at"`
	ActivatedAt        *time.Time       `json:"activated_at"`
	CompletedAt        *time.Time       `json:"completed_at"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	ExpiresAt          *time.Time       `json:"expires_at" gorm:"index"`
	CurrentPaymentID   *uint            `json:"current_payment_id"`
	Version            uint             `json:"version" gorm:"not null;default:0"`

	Course   *Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	User     *models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Payments []Payment    `json:"payments,omitempty" gorm:"foreignKey:EnrollmentID"`
}

// NewEnrollment snapshots the course terms for a fresh claim.
func NewEnrollment(userID uint, c *Course, now time.Time) *Enrollment {
	return &Enrollment{
		UserID:        userID,
		CourseID:      c.ID,
		Status:        EnrollmentPendingPayment,
		EnrolledPrice: c.Price,
		Currency:      c.Currency,
		AccessDays:    c.AccessDays,
		EnrolledAt:    now,
	}
}

// CanAccessCourse reports whether the enrollment unlocks the course content.
func (e *Enrollment) CanAccessCourse() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentCompleted
}

// Activate grants access and starts the optional access window.
func (e *Enrollment) Activate(now time.Time) error {
	if err := e.guard(EnrollmentActive); err != nil {
		return err
	}
	e.Status = EnrollmentActive
	e.ActivatedAt = &now
	e.ExpiresAt = nil
	if e.AccessDays != nil && *e.AccessDays > 0 {
		end := now.AddDate(0, 0, *e.AccessDays)
		e.ExpiresAt = &end
	}
	return nil
}

// Cancel ends an enrollment that was never paid for.
func (e *Enrollment) Cancel(now time.Time) error {
	if err := e.guard(EnrollmentCancelled); err != nil {
		return err
	}
	e.Status = EnrollmentCancelled
	e.CancelledAt = &now
	return nil
}

// MarkPaymentSubmitted records that a payment proof awaits review.
func (e *Enrollment) MarkPaymentSubmitted(paymentID uint) error {
	if err := e.guard(EnrollmentPaymentPendingApproval); err != nil {
		return err
	}
	e.Status = EnrollmentPaymentPendingApproval
	e.CurrentPaymentID = &paymentID
	return nil
}

// WithdrawPayment returns the enrollment to awaiting payment.
func (e *Enrollment) WithdrawPayment() error {
	if e.Status != EnrollmentPaymentPendingApproval {
		return e.transitionError(EnrollmentPendingPayment)
	}
	e.Status = EnrollmentPendingPayment
	e.CurrentPaymentID = nil
	return nil
}

// Reopen restarts a cancelled or expired enrollment with fresh course terms.
func (e *Enrollment) Reopen(c *Course, now time.Time) error {
	if e.Status != EnrollmentCancelled && e.Status != EnrollmentExpired {
		return e.transitionError(EnrollmentPendingPayment)
	}
	e.Status = EnrollmentPendingPayment
	e.EnrolledPrice = c.Price
	e.Currency = c.Currency
	e.AccessDays = c.AccessDays
	e.EnrolledAt = now
	e.ProgressPercentage = 0
	e.ActivatedAt = nil
	e.CompletedAt = nil
	e.CancelledAt = nil
	e.ExpiresAt = nil
	e.CurrentPaymentID = nil
	return nil
}

// Expire ends access once the access window has passed.
func (e *Enrollment) Expire() error {
	if err := e.guard(EnrollmentExpired); err != nil {
		return err
	}
	e.Status = EnrollmentExpired
	return nil
}

// UpdateProgress clamps pct to [0,100]. Reaching 100 completes an active enrollment.
func (e *Enrollment) UpdateProgress(pct float64, now time.Time) {
	e.ProgressPercentage = clampPercent(pct)
	if e.ProgressPercentage >= 100 && e.Status == EnrollmentActive {
		e.Status = EnrollmentCompleted
		e.CompletedAt = &now
	}
}

// IsPastAccessWindow reports whether an access window exists and has ended.
func (e *Enrollment) IsPastAccessWindow(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

func (e *Enrollment) guard(target EnrollmentStatus) error {
	if !e.CanTransitionTo(target) {
		return e.transitionError(target)
	}
	return nil
}

func (e *Enrollment) transitionError(target EnrollmentStatus) error {
	return &models.TransitionError{Entity: "enrollment", From: string(e.Status), To: string(target)}
}
