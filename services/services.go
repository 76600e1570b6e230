// Package services owns the unit of work for every entitlement change: each
// operation loads, transitions and saves inside a single transaction and only
// notifies once that transaction has committed.
package services

import (
	"errors"
	"fmt"
	"time"

	"academy/models"
	"academy/models/course"
	"academy/models/subscription"
	"academy/payments"

	"gorm.io/gorm"
)

// Notifier receives lifecycle events after they have been committed.
type Notifier interface {
	EnrollmentCreated(user models.User, c course.Course, e course.Enrollment)
	PaymentSubmitted(user models.User, c course.Course, p course.Payment)
	PaymentApproved(user models.User, c course.Course, p course.Payment)
	PaymentRejected(user models.User, c course.Course, p course.Payment)
	SubscriptionActivated(user models.User, sub subscription.Subscription)
	SubscriptionPaymentSubmitted(user models.User, p subscription.SubscriptionPayment)
	SubscriptionPaymentRejected(user models.User, p subscription.SubscriptionPayment)
	TrialStarted(user models.User, sub subscription.Subscription)
	SubscriptionCancelled(user models.User, sub subscription.Subscription)
	SubscriptionExpiring(user models.User, sub subscription.Subscription, daysLeft int)
	SubscriptionExpired(user models.User, sub subscription.Subscription)
}

// Gateways maps an instant payment method (PAYPAL, CREDIT_CARD) to its verifier.
type Gateways map[string]payments.Gateway

func (g Gateways) get(method string) payments.Gateway {
	if gw, ok := g[method]; ok && gw != nil {
		return gw
	}
	return payments.Disabled()
}

// claimReference reserves a gateway reference for one purchase. A reference
// already settled a course payment or a subscription payment, or claimed
// concurrently, yields models.ErrReferenceUsed.
func claimReference(tx *gorm.DB, method, reference, purpose string, userID uint) error {
	var used int64
	err := tx.Model(&course.Payment{}).
		Where("transaction_reference = ? AND payment_method = ? AND status = ?", reference, method, course.PaymentApproved).
		Count(&used).Error
	if err != nil {
		return fmt.Errorf("check reference: %w", err)
	}
	if used == 0 {
		err = tx.Model(&subscription.SubscriptionPayment{}).
			Where("external_payment_id = ? AND payment_method = ? AND status = ?", reference, method, subscription.PaymentCompleted).
			Count(&used).Error
		if err != nil {
			return fmt.Errorf("check reference: %w", err)
		}
	}
	if used > 0 {
		return models.ErrReferenceUsed
	}

	claim := models.GatewayReference{Method: method, Reference: reference, Purpose: purpose, UserID: userID}
	if err := tx.Create(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrReferenceUsed
		}
		return fmt.Errorf("claim reference: %w", err)
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Page is a 1-based pagination request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}
