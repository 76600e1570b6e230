package subscription

import (
	"math"
	"time"

	"academy/models"

	"gorm.io/gorm"
)

// Status of a subscription. Time-based expiry is derived from ExpiresAt; the
// stored status only records what cannot be derived from time.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusPending   Status = "PENDING"
	StatusTrial     Status = "TRIAL"
)

const DefaultTrialDays = 7

var statusDisplay = map[Status][2]string{
	StatusActive:    {"Active", "success"},
	StatusCancelled: {"Cancelled", "secondary"},
	StatusExpired:   {"Expired", "danger"},
	StatusPending:   {"Pending", "warning"},
	StatusTrial:     {"Trial", "info"},
}

func (s Status) DisplayName() string { return statusDisplay[s][0] }
func (s Status) BadgeClass() string  { return statusDisplay[s][1] }

// Subscription is a user's platform-wide premium entitlement.
type Subscription struct {
	gorm.Model
	UserID                 uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Plan                   Plan       `json:"plan" gorm:"type:varchar(20);not null;default:'FREE'"`
	Status                 Status     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	PricePaid              float64    `json:"price_paid" gorm:"default:0"`
	Currency               string     `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	StartedAt              *time.Time `json:"started_at"`
	ExpiresAt              *time.Time `json:"expires_at" gorm:"index"`
	CancelledAt            *time.Time `json:"cancelled_at"`
	TrialEndsAt            *time.Time `json:"trial_ends_at"`
	HasUsedTrial           bool       `json:"has_used_trial" gorm:"default:false"`
	AutoRenew              bool       `json:"auto_renew" gorm:"default:true"`
	PaymentMethod          string     `json:"payment_method" gorm:"type:varchar(30)"`
	ExternalSubscriptionID string     `json:"external_subscription_id"`
	RenewalCount           int        `json:"renewal_count" gorm:"default:0"`
	LastPaymentAt          *time.Time `json:"last_payment_at"`
	NextBillingAt          *time.Time `json:"next_billing_at"`
	ReminderSent           bool       `json:"reminder_sent" gorm:"default:false"`
	Version                uint       `json:"version" gorm:"not null;default:0"`

	Payments []SubscriptionPayment `json:"payments,omitempty" gorm:"foreignKey:SubscriptionID"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// NewFree returns the record lazily created for a user without a subscription.
func NewFree(userID uint) *Subscription {
	return &Subscription{
		UserID:    userID,
		Plan:      PlanFree,
		Status:    StatusPending,
		Currency:  "USD",
		AutoRenew: false,
	}
}

// IsActive reports whether the subscription grants its plan at now.
// Lifetime never lapses; a cancelled subscription keeps access until the
// paid period ends.
func (s *Subscription) IsActive(now time.Time) bool {
	switch s.Status {
	case StatusActive:
		if s.Plan == PlanLifetime || s.ExpiresAt == nil {
			return true
		}
		return now.Before(*s.ExpiresAt)
	case StatusCancelled:
		return s.ExpiresAt != nil && now.Before(*s.ExpiresAt)
	default:
		return false
	}
}

// IsPremium reports whether the subscription currently unlocks premium content.
func (s *Subscription) IsPremium(now time.Time) bool {
	return s.Plan != PlanFree && s.IsActive(now)
}

// IsTrialActive reports whether the one-time trial is still running.
func (s *Subscription) IsTrialActive(now time.Time) bool {
	return s.Status == StatusTrial && s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// HasPremiumAccess combines a paid plan with a running trial.
func (s *Subscription) HasPremiumAccess(now time.Time) bool {
	return s.IsPremium(now) || s.IsTrialActive(now)
}

// EffectiveStatus is the status to show a user: records whose period has
// passed read as expired even before the sweep has persisted it.
func (s *Subscription) EffectiveStatus(now time.Time) Status {
	switch s.Status {
	case StatusActive, StatusCancelled:
		if s.Plan != PlanLifetime && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt) {
			return StatusExpired
		}
	case StatusTrial:
		if !s.IsTrialActive(now) {
			return StatusExpired
		}
	}
	return s.Status
}

// DaysRemaining returns whole days left in the current period. A nil result
// means the plan never expires.
func (s *Subscription) DaysRemaining(now time.Time) *int {
	if s.ExpiresAt == nil {
		if s.Plan == PlanLifetime {
			return nil
		}
		zero := 0
		return &zero
	}
	days := int(math.Floor(s.ExpiresAt.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// Activate replaces the plan and restarts the billing clock from now.
func (s *Subscription) Activate(plan Plan, price float64, now time.Time) error {
	if !plan.Valid() {
		return &models.TransitionError{Entity: "subscription", From: string(s.Plan), To: string(plan)}
	}
	s.Plan = plan
	s.Status = StatusActive
	s.PricePaid = price
	s.StartedAt = &now
	s.LastPaymentAt = &now
	s.CancelledAt = nil
	s.AutoRenew = plan.Duration() > 0
	s.ReminderSent = false
	s.setPeriod(now)
	return nil
}

// StartTrial begins the one-time trial on the monthly plan.
func (s *Subscription) StartTrial(days int, now time.Time) error {
	if s.HasUsedTrial {
		return models.ErrTrialUsed
	}
	if days <= 0 {
		days = DefaultTrialDays
	}
	end := now.Add(time.Duration(days) * 24 * time.Hour)
	s.Plan = PlanMonthly
	s.Status = StatusTrial
	s.StartedAt = &now
	s.TrialEndsAt = &end
	s.ExpiresAt = &end
	s.HasUsedTrial = true
	s.ReminderSent = false
	return nil
}

// Cancel stops renewal. Access continues until ExpiresAt.
func (s *Subscription) Cancel(now time.Time) error {
	if s.Plan == PlanFree || !s.CanTransitionTo(StatusCancelled) {
		return s.transitionError(StatusCancelled)
	}
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.AutoRenew = false
	s.NextBillingAt = nil
	return nil
}

// Renew starts a new billing period from now.
func (s *Subscription) Renew(now time.Time) error {
	if s.Plan.Duration() == 0 {
		return models.ErrNotRenewable
	}
	if !s.CanTransitionTo(StatusActive) {
		return s.transitionError(StatusActive)
	}
	s.Status = StatusActive
	s.RenewalCount++
	s.LastPaymentAt = &now
	s.CancelledAt = nil
	s.ReminderSent = false
	s.setPeriod(now)
	return nil
}

// Upgrade moves to a higher plan, crediting the unused part of the current
// period. It returns the amount charged.
func (s *Subscription) Upgrade(newPlan Plan, now time.Time) (float64, error) {
	if !newPlan.Valid() || newPlan.Rank() <= s.Plan.Rank() {
		return 0, models.ErrNotUpgrade
	}
	charge := math.Max(0, newPlan.Price()-s.UpgradeCredit(now))
	if err := s.Activate(newPlan, charge, now); err != nil {
		return 0, err
	}
	return charge, nil
}

// UpgradeCredit is the prorated value of the days left on a paid, active period.
func (s *Subscription) UpgradeCredit(now time.Time) float64 {
	cfg, ok := s.Plan.Config()
	if !ok || cfg.Price <= 0 || cfg.DurationDays == 0 || !s.IsActive(now) || s.inTrialPeriod() {
		return 0
	}
	days := s.DaysRemaining(now)
	if days == nil || *days == 0 {
		return 0
	}
	return cfg.Price / float64(cfg.DurationDays) * float64(*days)
}

// inTrialPeriod reports whether the current period is still the unpaid trial,
// as after a trial is cancelled.
func (s *Subscription) inTrialPeriod() bool {
	return s.TrialEndsAt != nil && s.ExpiresAt != nil && s.ExpiresAt.Equal(*s.TrialEndsAt)
}

// IsDowngrade reports whether buying plan would replace a running, higher plan.
func (s *Subscription) IsDowngrade(plan Plan, now time.Time) bool {
	return s.IsActive(now) && plan.Rank() < s.Plan.Rank()
}

// Expire records that the paid or trial period has ended.
func (s *Subscription) Expire(now time.Time) error {
	if s.Plan == PlanLifetime || !s.CanTransitionTo(StatusExpired) {
		return s.transitionError(StatusExpired)
	}
	s.Status = StatusExpired
	s.AutoRenew = false
	s.NextBillingAt = nil
	return nil
}

func (s *Subscription) setPeriod(now time.Time) {
	d := s.Plan.Duration()
	if d == 0 {
		s.ExpiresAt = nil
		s.NextBillingAt = nil
		return
	}
	end := now.Add(d)
	s.ExpiresAt = &end
	next := end
	s.NextBillingAt = &next
}

func (s *Subscription) transitionError(to Status) error {
	return &models.TransitionError{Entity: "subscription", From: string(s.Status), To: string(to)}
}
