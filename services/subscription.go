package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"academy/database"
	"academy/logger"
	"academy/models"
	"academy/models/subscription"

	jnow "github.com/jinzhu/now"
	"gorm.io/gorm"
)

// SubscriptionService manages the platform-wide premium entitlement.
type SubscriptionService struct {
	db           *gorm.DB
	notifier     Notifier
	gateways     Gateways
	trialDays    int
	reminderDays int
	now          func() time.Time
}

func NewSubscriptionService(db *gorm.DB, notifier Notifier, gateways Gateways, trialDays, reminderDays int) *SubscriptionService {
	if reminderDays <= 0 {
		reminderDays = 7
	}
	return &SubscriptionService{
		db:           db,
		notifier:     notifier,
		gateways:     gateways,
		trialDays:    trialDays,
		reminderDays: reminderDays,
		now:          utcNow,
	}
}

// Checkout is a gateway payment for a plan.
type Checkout struct {
	Plan      subscription.Plan
	Method    string
	Reference string
}

// SubscriptionStats is the admin dashboard summary.
type SubscriptionStats struct {
	Total          int64                       `json:"total"`
	Active         int64                       `json:"active"`
	Trial          int64                       `json:"trial"`
	Cancelled      int64                       `json:"cancelled"`
	Expired        int64                       `json:"expired"`
	ByPlan         map[subscription.Plan]int64 `json:"by_plan"`
	MonthlyRevenue float64                     `json:"monthly_revenue"`
	TotalRevenue   float64                     `json:"total_revenue"`
	ConversionRate float64                     `json:"conversion_rate"`
	PendingReview  int64                       `json:"pending_review"`
}

// Get returns the user's subscription, creating the FREE record on first use.
func (s *SubscriptionService) Get(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = getOrCreate(tx, userID)
		return err
	})
	return sub, err
}

// SubscriptionView is a subscription as seen at one instant.
type SubscriptionView struct {
	Subscription    subscription.Subscription `json:"subscription"`
	EffectiveStatus subscription.Status       `json:"effective_status"`
	StatusDisplay   string                    `json:"status_display"`
	BadgeClass      string                    `json:"badge_class"`
	DaysRemaining   *int                      `json:"days_remaining"`
	HasPremium      bool                      `json:"has_premium_access"`
	IsTrialActive   bool                      `json:"is_trial_active"`
}

// View returns the user's subscription with its derived state.
func (s *SubscriptionService) View(ctx context.Context, userID uint) (*SubscriptionView, error) {
	sub, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	status := sub.EffectiveStatus(now)
	return &SubscriptionView{
		Subscription:    *sub,
		EffectiveStatus: status,
		StatusDisplay:   status.DisplayName(),
		BadgeClass:      status.BadgeClass(),
		DaysRemaining:   sub.DaysRemaining(now),
		HasPremium:      sub.HasPremiumAccess(now),
		IsTrialActive:   sub.IsTrialActive(now),
	}, nil
}

func getOrCreate(tx *gorm.DB, userID uint) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := tx.Where("user_id = ?", userID).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	sub = *subscription.NewFree(userID)
	if err := tx.Create(&sub).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		sub = subscription.Subscription{}
		if err := tx.Where("user_id = ?", userID).First(&sub).Error; err != nil {
			return nil, fmt.Errorf("load subscription: %w", err)
		}
	}
	return &sub, nil
}

// HasPremiumAccess reports whether the user currently has a paid plan or trial.
func (s *SubscriptionService) HasPremiumAccess(ctx context.Context, userID uint) (bool, error) {
	var sub subscription.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.HasPremiumAccess(s.now()), nil
}

// StartTrial begins the one-time trial.
func (s *SubscriptionService) StartTrial(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	user, sub, err := s.mutate(ctx, userID, func(sub *subscription.Subscription, now time.Time) error {
		if sub.HasPremiumAccess(now) {
			return models.ErrAlreadyPremium
		}
		return sub.StartTrial(s.trialDays, now)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.TrialStarted(*user, *sub)
	return sub, nil
}

// Cancel stops renewal; access continues until the paid period ends.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	user, sub, err := s.mutate(ctx, userID, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Cancel(now)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SubscriptionCancelled(*user, *sub)
	return sub, nil
}

func (s *SubscriptionService) mutate(ctx context.Context, userID uint, change func(*subscription.Subscription, time.Time) error) (*models.User, *subscription.Subscription, error) {
	var (
		user models.User
		sub  *subscription.Subscription
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return database.NotFound(err)
		}
		var err error
		if sub, err = getOrCreate(tx, userID); err != nil {
			return err
		}
		if err := change(sub, s.now()); err != nil {
			return err
		}
		return database.SaveVersioned(tx, sub, &sub.Version)
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, sub, nil
}

// Subscribe charges the full plan price through a gateway and activates it.
// Paying again for the plan that is already running renews it.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID uint, in Checkout) (*subscription.Subscription, *subscription.SubscriptionPayment, error) {
	if !in.Plan.IsPaid() {
		return nil, nil, models.ErrInvalidPlan
	}
	return s.checkout(ctx, userID, in, func(*subscription.Subscription, time.Time) (float64, error) {
		return in.Plan.Price(), nil
	})
}

// Upgrade moves to a higher plan, charging the price minus the prorated
// credit of the current period.
func (s *SubscriptionService) Upgrade(ctx context.Context, userID uint, in Checkout) (*subscription.Subscription, *subscription.SubscriptionPayment, error) {
	return s.checkout(ctx, userID, in, func(sub *subscription.Subscription, now time.Time) (float64, error) {
		preview := *sub
		return preview.Upgrade(in.Plan, now)
	})
}

// checkout verifies the gateway payment before the transaction and then
// applies it. A single clock reading is used for pricing and for the change.
func (s *SubscriptionService) checkout(ctx context.Context, userID uint, in Checkout, price func(*subscription.Subscription, time.Time) (float64, error)) (*subscription.Subscription, *subscription.SubscriptionPayment, error) {
	now := s.now()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	amount, err := price(current, now)
	if err != nil {
		return nil, nil, err
	}
	if current.IsDowngrade(in.Plan, now) {
		return nil, nil, models.ErrDowngrade
	}

	cfg, _ := in.Plan.Config()
	reference := strings.TrimSpace(in.Reference)
	if amount > 0 {
		if in.Method != "PAYPAL" && in.Method != "CREDIT_CARD" {
			return nil, nil, models.ErrUnsupportedMethod
		}
		if _, err := s.gateways.get(in.Method).Verify(ctx, reference, amount, cfg.Currency); err != nil {
			return nil, nil, fmt.Errorf("verify %s payment: %w", in.Method, err)
		}
	}

	var (
		user    models.User
		sub     subscription.Subscription
		payment subscription.SubscriptionPayment
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return database.NotFound(err)
		}
		if err := tx.First(&sub, current.ID).Error; err != nil {
			return database.NotFound(err)
		}
		if sub.Version != current.Version {
			return models.ErrStaleRecord
		}
		if reference != "" {
			if err := claimReference(tx, in.Method, reference, models.ReferenceSubscriptionPayment, userID); err != nil {
				return err
			}
		}

		payment = subscription.SubscriptionPayment{
			SubscriptionID:    sub.ID,
			UserID:            userID,
			Plan:              in.Plan,
			Amount:            amount,
			Currency:          cfg.Currency,
			PaymentMethod:     in.Method,
			Status:            subscription.PaymentPending,
			ExternalPaymentID: reference,
			InvoiceNumber:     subscription.NewInvoiceNumber(now),
			Description:       "Subscription: " + in.Plan.DisplayName(),
		}
		if err := payment.Complete(nil, now); err != nil {
			return err
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create subscription payment: %w", err)
		}

		if err := processPayment(&sub, in.Plan, amount, now); err != nil {
			return err
		}
		sub.PaymentMethod = in.Method
		return database.SaveVersioned(tx, &sub, &sub.Version)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.SubscriptionActivated(user, sub)
	return &sub, &payment, nil
}

// processPayment applies a settled charge: the same running plan is renewed,
// a lower plan than the running one is refused, anything else is activated
// from now.
func processPayment(sub *subscription.Subscription, plan subscription.Plan, amount float64, now time.Time) error {
	if sub.IsDowngrade(plan, now) {
		return models.ErrDowngrade
	}
	if sub.Plan == plan && sub.IsActive(now) && plan.Duration() > 0 {
		if err := sub.Renew(now); err != nil {
			return err
		}
		sub.PricePaid = amount
		return nil
	}
	return sub.Activate(plan, amount, now)
}

// SubmitTransfer records a bank transfer for a plan. The plan is applied
// once an admin approves the proof.
func (s *SubscriptionService) SubmitTransfer(ctx context.Context, userID uint, plan subscription.Plan, in TransferInput) (*subscription.SubscriptionPayment, error) {
	cfg, ok := plan.Config()
	if !ok || !plan.IsPaid() {
		return nil, models.ErrInvalidPlan
	}
	now := s.now()

	var (
		user    models.User
		payment subscription.SubscriptionPayment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return database.NotFound(err)
		}
		sub, err := getOrCreate(tx, userID)
		if err != nil {
			return err
		}
		if sub.IsDowngrade(plan, now) {
			return models.ErrDowngrade
		}

		description := "Bank transfer: " + cfg.Name
		if in.SenderName != "" {
			description += " from " + in.SenderName
		}
		if in.Notes != "" {
			description += ". " + in.Notes
		}
		payment = subscription.SubscriptionPayment{
			SubscriptionID:     sub.ID,
			UserID:             userID,
			Plan:               plan,
			Amount:             cfg.Price,
			Currency:           cfg.Currency,
			PaymentMethod:      "BANK_TRANSFER",
			Status:             subscription.PaymentPending,
			ExternalPaymentID:  strings.TrimSpace(in.Reference),
			InvoiceNumber:      subscription.NewInvoiceNumber(now),
			ProofOfPaymentPath: in.ProofPath,
			Description:        description,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create subscription payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SubscriptionPaymentSubmitted(user, payment)
	return &payment, nil
}

// ApprovePayment completes a bank transfer and applies its plan.
func (s *SubscriptionService) ApprovePayment(ctx context.Context, adminID, paymentID uint, expectedVersion *uint) (*subscription.SubscriptionPayment, error) {
	var (
		user    models.User
		payment subscription.SubscriptionPayment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadPayment(tx, paymentID, expectedVersion, &payment, &user); err != nil {
			return err
		}
		now := s.now()
		if err := payment.Complete(&adminID, now); err != nil {
			return err
		}
		if err := database.SaveVersioned(tx, &payment, &payment.Version); err != nil {
			return err
		}

		sub := payment.Subscription
		if err := processPayment(sub, payment.Plan, payment.Amount, now); err != nil {
			return err
		}
		sub.PaymentMethod = payment.PaymentMethod
		return database.SaveVersioned(tx, sub, &sub.Version)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SubscriptionActivated(user, *payment.Subscription)
	return &payment, nil
}

// RejectPayment fails a bank transfer. The subscription is left untouched.
func (s *SubscriptionService) RejectPayment(ctx context.Context, adminID, paymentID uint, reason string, expectedVersion *uint) (*subscription.SubscriptionPayment, error) {
	var (
		user    models.User
		payment subscription.SubscriptionPayment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadPayment(tx, paymentID, expectedVersion, &payment, &user); err != nil {
			return err
		}
		if err := payment.Fail(&adminID, reason); err != nil {
			return err
		}
		return database.SaveVersioned(tx, &payment, &payment.Version)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SubscriptionPaymentRejected(user, payment)
	return &payment, nil
}

func (s *SubscriptionService) loadPayment(tx *gorm.DB, paymentID uint, expectedVersion *uint, payment *subscription.SubscriptionPayment, user *models.User) error {
	if err := tx.Preload("Subscription").First(payment, paymentID).Error; err != nil {
		return database.NotFound(err)
	}
	if expectedVersion != nil && *expectedVersion != payment.Version {
		return models.ErrStaleRecord
	}
	if err := tx.First(user, payment.UserID).Error; err != nil {
		return database.NotFound(err)
	}
	return nil
}

// ListPayments pages through subscription payments, newest first.
func (s *SubscriptionService) ListPayments(ctx context.Context, status string, page Page) ([]subscription.SubscriptionPayment, int64, error) {
	page = page.normalize()
	db := s.db.WithContext(ctx).Model(&subscription.SubscriptionPayment{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscription payments: %w", err)
	}

	var list []subscription.SubscriptionPayment
	err := db.Order("created_at DESC").Offset(page.offset()).Limit(page.Limit).Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list subscription payments: %w", err)
	}
	return list, total, nil
}

// UserPayments returns the user's own payment history.
func (s *SubscriptionService) UserPayments(ctx context.Context, userID uint) ([]subscription.SubscriptionPayment, error) {
	var list []subscription.SubscriptionPayment
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// ExpireDue persists the expiry of every subscription whose period has
// passed. Access was already denied from ExpiresAt; this records it.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()

	var due []subscription.Subscription
	err := s.db.WithContext(ctx).
		Where("status IN ? AND plan <> ? AND expires_at IS NOT NULL AND expires_at <= ?",
			[]subscription.Status{subscription.StatusActive, subscription.StatusCancelled, subscription.StatusTrial},
			subscription.PlanLifetime, now).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("find due subscriptions: %w", err)
	}

	expired := 0
	for i := range due {
		sub := &due[i]
		var user models.User
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&user, sub.UserID).Error; err != nil {
				return database.NotFound(err)
			}
			if err := sub.Expire(now); err != nil {
				return err
			}
			return database.SaveVersioned(tx, sub, &sub.Version)
		})
		if err != nil {
			logger.Log.Warnw("subscription expiry skipped", "subscription_id", sub.ID, "error", err)
			continue
		}
		expired++
		s.notifier.SubscriptionExpired(user, *sub)
	}
	return expired, nil
}

// SendExpiringReminders emails users whose period ends within the reminder
// window. Each subscription is reminded once per period.
func (s *SubscriptionService) SendExpiringReminders(ctx context.Context) (int, error) {
	now := s.now()
	until := now.AddDate(0, 0, s.reminderDays)

	var soon []subscription.Subscription
	err := s.db.WithContext(ctx).
		Where("status IN ? AND plan <> ? AND reminder_sent = ? AND expires_at > ? AND expires_at <= ?",
			[]subscription.Status{subscription.StatusActive, subscription.StatusTrial},
			subscription.PlanLifetime, false, now, until).
		Find(&soon).Error
	if err != nil {
		return 0, fmt.Errorf("find expiring subscriptions: %w", err)
	}

	sent := 0
	for i := range soon {
		sub := &soon[i]
		res := s.db.WithContext(ctx).Model(&subscription.Subscription{}).
			Where("id = ? AND reminder_sent = ?", sub.ID, false).
			UpdateColumn("reminder_sent", true)
		if res.Error != nil {
			logger.Log.Warnw("reminder flag not saved", "subscription_id", sub.ID, "error", res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}

		var user models.User
		if err := s.db.WithContext(ctx).First(&user, sub.UserID).Error; err != nil {
			logger.Log.Warnw("reminder user missing", "subscription_id", sub.ID, "error", err)
			continue
		}
		days := 0
		if d := sub.DaysRemaining(now); d != nil {
			days = *d
		}
		s.notifier.SubscriptionExpiring(user, *sub, days)
		sent++
	}
	return sent, nil
}

// Statistics summarises subscriptions and revenue.
func (s *SubscriptionService) Statistics(ctx context.Context) (*SubscriptionStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	stats := &SubscriptionStats{ByPlan: map[subscription.Plan]int64{}}
	model := func() *gorm.DB { return db.Model(&subscription.Subscription{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().
		Where("status = ? AND (expires_at IS NULL OR expires_at > ?)", subscription.StatusActive, now).
		Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := model().
		Where("status = ? AND trial_ends_at > ?", subscription.StatusTrial, now).
		Count(&stats.Trial).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", subscription.StatusCancelled).Count(&stats.Cancelled).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", subscription.StatusExpired).Count(&stats.Expired).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Plan  subscription.Plan
		Count int64
	}
	if err := model().Select("plan, COUNT(*) AS count").Group("plan").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByPlan[r.Plan] = r.Count
	}

	payments := func() *gorm.DB {
		return db.Model(&subscription.SubscriptionPayment{}).Where("status = ?", subscription.PaymentCompleted)
	}
	if err := payments().
		Where("paid_at >= ?", jnow.With(now).BeginningOfMonth()).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.MonthlyRevenue).Error; err != nil {
		return nil, err
	}
	if err := payments().Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&subscription.SubscriptionPayment{}).
		Where("status = ?", subscription.PaymentPending).
		Count(&stats.PendingReview).Error; err != nil {
		return nil, err
	}

	var premium int64
	if err := model().
		Where("plan <> ? AND status = ? AND (plan = ? OR expires_at > ?)",
			subscription.PlanFree, subscription.StatusActive, subscription.PlanLifetime, now).
		Count(&premium).Error; err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(premium) / float64(stats.Total) * 100
	}
	return stats, nil
}
