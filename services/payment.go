package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"academy/database"
	"academy/models"
	"academy/models/course"

	jnow "github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService handles course payments: learner submissions, gateway
// checkouts and the admin review queue.
type PaymentService struct {
	db               *gorm.DB
	notifier         Notifier
	gateways         Gateways
	transferCurrency string
	now              func() time.Time
}

func NewPaymentService(db *gorm.DB, notifier Notifier, gateways Gateways, transferCurrency string) *PaymentService {
	return &PaymentService{
		db:               db,
		notifier:         notifier,
		gateways:         gateways,
		transferCurrency: transferCurrency,
		now:              utcNow,
	}
}

// TransferInput is the metadata a learner supplies with a bank transfer proof.
type TransferInput struct {
	ProofPath   string
	SenderName  string
	Reference   string
	BankAccount string
	Amount      *float64
	Notes       string
}

// PaymentFilter narrows the admin payment list.
type PaymentFilter struct {
	Status string
	Method string
	Page
}

// PaymentStats summarises the review queue.
type PaymentStats struct {
	Pending       int64            `json:"pending"`
	ApprovedToday int64            `json:"approved_today"`
	Rejected      int64            `json:"rejected"`
	TotalRevenue  float64          `json:"total_revenue"`
	ByMethod      map[string]int64 `json:"by_method"`
}

// SubmitTransfer attaches a bank transfer proof to the enrollment and queues
// it for review.
func (s *PaymentService) SubmitTransfer(ctx context.Context, userID, enrollmentID uint, in TransferInput) (*course.Payment, error) {
	now := s.now()
	var (
		payment    course.Payment
		enrollment course.Enrollment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Course").Preload("User").Where("user_id = ?", userID).First(&enrollment, enrollmentID).Error; err != nil {
			return database.NotFound(err)
		}
		if !enrollment.CanTransitionTo(course.EnrollmentPaymentPendingApproval) {
			return &models.TransitionError{
				Entity: "enrollment",
				From:   string(enrollment.Status),
				To:     string(course.EnrollmentPaymentPendingApproval),
			}
		}

		currency := enrollment.Currency
		if currency == "" {
			currency = s.transferCurrency
		}
		payment = course.Payment{
			EnrollmentID:       enrollment.ID,
			UserID:             userID,
			Amount:             enrollment.EnrolledPrice,
			Currency:           currency,
			PaymentMethod:      course.MethodBankTransfer,
			Status:             course.PaymentPendingApproval,
			ProofOfPaymentPath: in.ProofPath,
			BankAccountUsed:    in.BankAccount,
			TransferSenderName: in.SenderName,
			TransferReference:  in.Reference,
			TransferAmount:     in.Amount,
			AdditionalNotes:    in.Notes,
			SubmittedAt:        now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := enrollment.MarkPaymentSubmitted(payment.ID); err != nil {
			return err
		}
		return database.SaveVersioned(tx, &enrollment, &enrollment.Version)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PaymentSubmitted(*enrollment.User, *enrollment.Course, payment)
	return &payment, nil
}

// PayInstant settles an enrollment through PayPal, a card or, for free
// courses, no payment at all. The gateway is asked before any row changes;
// the enrollment version read up front detects a concurrent change.
func (s *PaymentService) PayInstant(ctx context.Context, userID, enrollmentID uint, method course.PaymentMethod, reference string) (*course.Payment, error) {
	if !method.IsInstant() {
		return nil, models.ErrUnsupportedMethod
	}

	var enrollment course.Enrollment
	err := s.db.WithContext(ctx).Preload("Course").Preload("User").
		Where("user_id = ?", userID).First(&enrollment, enrollmentID).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	if !enrollment.CanTransitionTo(course.EnrollmentActive) || enrollment.Status != course.EnrollmentPendingPayment {
		return nil, &models.TransitionError{Entity: "enrollment", From: string(enrollment.Status), To: string(course.EnrollmentActive)}
	}

	var gatewayResponse datatypes.JSONMap
	if method == course.MethodFree {
		if enrollment.EnrolledPrice > 0 {
			return nil, models.ErrPaymentRequired
		}
	} else {
		reference = strings.TrimSpace(reference)
		v, err := s.gateways.get(string(method)).Verify(ctx, reference, enrollment.EnrolledPrice, enrollment.Currency)
		if err != nil {
			return nil, fmt.Errorf("verify %s payment: %w", method, err)
		}
		gatewayResponse = datatypes.JSONMap(v.Raw)
	}

	now := s.now()
	payment := course.Payment{
		EnrollmentID:         enrollment.ID,
		UserID:               userID,
		Amount:               enrollment.EnrolledPrice,
		Currency:             enrollment.Currency,
		PaymentMethod:        method,
		TransactionReference: reference,
		GatewayResponse:      gatewayResponse,
	}
	payment.MarkInstantApproved(now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reference != "" {
			if err := claimReference(tx, string(method), reference, models.ReferenceCoursePayment, userID); err != nil {
				return err
			}
		}

		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := enrollment.Activate(now); err != nil {
			return err
		}
		enrollment.CurrentPaymentID = &payment.ID
		return database.SaveVersioned(tx, &enrollment, &enrollment.Version)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PaymentApproved(*enrollment.User, *enrollment.Course, payment)
	return &payment, nil
}

// Withdraw cancels the pending proof so the learner can pay another way.
func (s *PaymentService) Withdraw(ctx context.Context, userID, enrollmentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment course.Enrollment
		if err := tx.Where("user_id = ?", userID).First(&enrollment, enrollmentID).Error; err != nil {
			return database.NotFound(err)
		}
		if enrollment.CurrentPaymentID == nil {
			return models.ErrNotFound
		}

		var payment course.Payment
		if err := tx.First(&payment, *enrollment.CurrentPaymentID).Error; err != nil {
			return database.NotFound(err)
		}
		payment.Enrollment = &enrollment
		if err := payment.Cancel(s.now()); err != nil {
			return err
		}
		if err := database.SaveVersioned(tx, &payment, &payment.Version); err != nil {
			return err
		}
		return database.SaveVersioned(tx, &enrollment, &enrollment.Version)
	})
}

// Approve accepts a pending payment and activates its enrollment. When
// expectedVersion is set the payment must not have changed since the admin
// loaded it.
func (s *PaymentService) Approve(ctx context.Context, adminID, paymentID uint, notes string, expectedVersion *uint) (*course.Payment, error) {
	payment, err := s.review(ctx, paymentID, expectedVersion, func(p *course.Payment, now time.Time) error {
		return p.Approve(adminID, notes, now)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.PaymentApproved(*payment.User, *payment.Enrollment.Course, *payment)
	return payment, nil
}

// Reject declines a pending payment and cancels its enrollment.
func (s *PaymentService) Reject(ctx context.Context, adminID, paymentID uint, reason, notes string, expectedVersion *uint) (*course.Payment, error) {
	payment, err := s.review(ctx, paymentID, expectedVersion, func(p *course.Payment, now time.Time) error {
		return p.Reject(adminID, reason, notes, now)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.PaymentRejected(*payment.User, *payment.Enrollment.Course, *payment)
	return payment, nil
}

func (s *PaymentService) review(ctx context.Context, paymentID uint, expectedVersion *uint, decide func(*course.Payment, time.Time) error) (*course.Payment, error) {
	var payment course.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Enrollment").Preload("Enrollment.Course").Preload("User").First(&payment, paymentID).Error
		if err != nil {
			return database.NotFound(err)
		}
		if expectedVersion != nil && *expectedVersion != payment.Version {
			return models.ErrStaleRecord
		}

		if err := decide(&payment, s.now()); err != nil {
			return err
		}
		if err := database.SaveVersioned(tx, &payment, &payment.Version); err != nil {
			return err
		}
		return database.SaveVersioned(tx, payment.Enrollment, &payment.Enrollment.Version)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// List pages through payments for the admin queue, newest first.
func (s *PaymentService) List(ctx context.Context, filter PaymentFilter) ([]course.Payment, int64, error) {
	filter.Page = filter.Page.normalize()
	db := s.db.WithContext(ctx).Model(&course.Payment{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		db = db.Where("payment_method = ?", filter.Method)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	var list []course.Payment
	err := db.Preload("User").
		Preload("Enrollment").
		Preload("Enrollment.Course").
		Order("created_at DESC").
		Offset(filter.Page.offset()).
		Limit(filter.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return list, total, nil
}

// Stats counts the queue and sums approved revenue.
func (s *PaymentService) Stats(ctx context.Context) (*PaymentStats, error) {
	db := s.db.WithContext(ctx)
	startOfDay := jnow.With(s.now()).BeginningOfDay()
	stats := &PaymentStats{ByMethod: map[string]int64{}}

	if err := db.Model(&course.Payment{}).Where("status = ?", course.PaymentPendingApproval).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&course.Payment{}).
		Where("status = ? AND processed_at >= ?", course.PaymentApproved, startOfDay).
		Count(&stats.ApprovedToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&course.Payment{}).Where("status = ?", course.PaymentRejected).Count(&stats.Rejected).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&course.Payment{}).
		Where("status = ?", course.PaymentApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		PaymentMethod string
		Count         int64
	}
	if err := db.Model(&course.Payment{}).
		Select("payment_method, COUNT(*) AS count").
		Group("payment_method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByMethod[r.PaymentMethod] = r.Count
	}
	return stats, nil
}
