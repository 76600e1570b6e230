package subscription

import (
	"fmt"
	"strings"
	"time"

	"academy/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus of a subscription charge
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// SubscriptionPayment records one charge toward a subscription
type SubscriptionPayment struct {
	gorm.Model
	SubscriptionID     uint          `json:"subscription_id" gorm:"index;not null"`
	UserID             uint          `json:"user_id" gorm:"index;not null"`
	Plan               Plan          `json:"plan" gorm:"type:varchar(20);not null"`
	Amount             float64       `json:"amount" gorm:"not null"`
	Currency           string        `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	PaymentMethod      string        `json:"payment_method" gorm:"type:varchar(30);not null"`
	Status             PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ExternalPaymentID  string        `json:"external_payment_id" gorm:"index"`
	InvoiceNumber      string        `json:"invoice_number" gorm:"uniqueIndex;type:varchar(50)"`
	ProofOfPaymentPath string        `json:"proof_of_payment_path"`
	Description        string        `json:"description"`
	FailureReason      string        `json:"failure_reason"`
	PaidAt             *time.Time    `json:"paid_at"`
	ProcessedBy        *uint         `json:"processed_by"`
	Version            uint          `json:"version" gorm:"not null;default:0"`

	Subscription *Subscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`
}

func (SubscriptionPayment) TableName() string {
	return "subscription_payments"
}

// NewInvoiceNumber builds a unique, date-prefixed invoice number.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// Complete marks the charge as paid. processedBy is nil for gateway payments.
func (p *SubscriptionPayment) Complete(processedBy *uint, now time.Time) error {
	if !p.CanTransitionTo(PaymentCompleted) {
		return p.processedError(PaymentCompleted)
	}
	p.Status = PaymentCompleted
	p.PaidAt = &now
	p.ProcessedBy = processedBy
	return nil
}

// Fail rejects a pending charge.
func (p *SubscriptionPayment) Fail(processedBy *uint, reason string) error {
	if !p.CanTransitionTo(PaymentFailed) {
		return p.processedError(PaymentFailed)
	}
	p.Status = PaymentFailed
	p.FailureReason = reason
	p.ProcessedBy = processedBy
	return nil
}

func (p *SubscriptionPayment) processedError(to PaymentStatus) error {
	if p.Status != PaymentPending {
		return models.ErrPaymentProcessed
	}
	return &models.TransitionError{Entity: "subscription payment", From: string(p.Status), To: string(to)}
}
