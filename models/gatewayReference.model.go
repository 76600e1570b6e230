package models

import (
	"time"
)

// Purposes a gateway reference can be claimed for.
const (
	ReferenceCoursePayment       = "COURSE_PAYMENT"
	ReferenceSubscriptionPayment = "SUBSCRIPTION_PAYMENT"
)

// GatewayReference claims a settled PayPal order or Stripe PaymentIntent.
// A reference pays for exactly one thing across courses and subscriptions.
type GatewayReference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Method    string    `json:"method" gorm:"type:varchar(30);not null;uniqueIndex:idx_gateway_reference"`
	Reference string    `json:"reference" gorm:"type:varchar(255);not null;uniqueIndex:idx_gateway_reference"`
	Purpose   string    `json:"purpose" gorm:"type:varchar(30);not null"`
	UserID    uint      `json:"user_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
