package subscription

import (
	"testing"
	"time"

	"academy/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	v := t0.Add(d)
	return &v
}

const day = 24 * time.Hour

func TestLifetimeIsAlwaysActive(t *testing.T) {
	for _, exp := range []*time.Time{nil, at(-400 * day), at(400 * day)} {
		s := &Subscription{Plan: PlanLifetime, Status: StatusActive, ExpiresAt: exp}
		assert.True(t, s.IsActive(t0))
		assert.True(t, s.IsPremium(t0))
		if exp == nil {
			assert.Nil(t, s.DaysRemaining(t0))
		}
	}
}

func TestMonthlyLapsesWithoutSweep(t *testing.T) {
	s := NewFree(1)
	require.NoError(t, s.Activate(PlanMonthly, PlanMonthly.Price(), t0))

	assert.True(t, s.IsActive(t0.Add(29*day)))
	later := t0.Add(31 * day)
	assert.Equal(t, StatusActive, s.Status, "stored status untouched")
	assert.False(t, s.IsActive(later))
	assert.False(t, s.IsPremium(later))
	assert.Equal(t, StatusExpired, s.EffectiveStatus(later))
}

func TestIsActiveByStatus(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"free active has no expiry", Subscription{Plan: PlanFree, Status: StatusActive}, true},
		{"pending", Subscription{Plan: PlanMonthly, Status: StatusPending, ExpiresAt: at(day)}, false},
		{"expired status", Subscription{Plan: PlanMonthly, Status: StatusExpired, ExpiresAt: at(day)}, false},
		{"cancelled keeps paid period", Subscription{Plan: PlanAnnual, Status: StatusCancelled, ExpiresAt: at(day)}, true},
		{"cancelled after period", Subscription{Plan: PlanAnnual, Status: StatusCancelled, ExpiresAt: at(-day)}, false},
		{"cancelled lifetime", Subscription{Plan: PlanLifetime, Status: StatusCancelled}, false},
		{"trial is not a paid activation", Subscription{Plan: PlanMonthly, Status: StatusTrial, ExpiresAt: at(day), TrialEndsAt: at(day)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsActive(t0))
		})
	}
}

func TestStartTrialOnce(t *testing.T) {
	s := NewFree(1)
	require.NoError(t, s.StartTrial(0, t0))
	assert.Equal(t, StatusTrial, s.Status)
	assert.Equal(t, PlanMonthly, s.Plan)
	assert.Equal(t, t0.Add(7*day), *s.TrialEndsAt)
	assert.True(t, s.IsTrialActive(t0.Add(6*day)))
	assert.False(t, s.IsTrialActive(t0.Add(8*day)))
	assert.True(t, s.HasPremiumAccess(t0))

	firstEnd := *s.TrialEndsAt
	err := s.StartTrial(14, t0.Add(30*day))
	assert.ErrorIs(t, err, models.ErrTrialUsed)
	assert.Equal(t, firstEnd, *s.TrialEndsAt)
}

func TestUpgradeCreditsRemainingDays(t *testing.T) {
	s := &Subscription{Plan: PlanMonthly, Status: StatusActive, ExpiresAt: at(15 * day)}

	charge, err := s.Upgrade(PlanAnnual, t0)
	require.NoError(t, err)

	assert.InDelta(t, 9.99/30*15, 4.995, 0.0001)
	assert.InDelta(t, 84.995, charge, 0.01)
	assert.Equal(t, PlanAnnual, s.Plan)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, t0.Add(365*day), *s.ExpiresAt)
	assert.InDelta(t, charge, s.PricePaid, 0.0001)
}

func TestUpgradeRules(t *testing.T) {
	s := &Subscription{Plan: PlanAnnual, Status: StatusActive, ExpiresAt: at(100 * day)}
	_, err := s.Upgrade(PlanMonthly, t0)
	assert.ErrorIs(t, err, models.ErrNotUpgrade)
	_, err = s.Upgrade(PlanAnnual, t0)
	assert.ErrorIs(t, err, models.ErrNotUpgrade)
	assert.Equal(t, PlanAnnual, s.Plan)

	free := NewFree(1)
	charge, err := free.Upgrade(PlanLifetime, t0)
	require.NoError(t, err)
	assert.Equal(t, 299.99, charge)
	assert.Nil(t, free.ExpiresAt)

	lapsed := &Subscription{Plan: PlanMonthly, Status: StatusActive, ExpiresAt: at(-day)}
	charge, err = lapsed.Upgrade(PlanAnnual, t0)
	require.NoError(t, err)
	assert.Equal(t, 89.99, charge, "no credit for a lapsed period")
}

func TestCancelledTrialEarnsNoUpgradeCredit(t *testing.T) {
	s := NewFree(1)
	require.NoError(t, s.StartTrial(7, t0))
	require.NoError(t, s.Cancel(t0.Add(day)))
	require.True(t, s.IsActive(t0.Add(2*day)))

	assert.Zero(t, s.UpgradeCredit(t0.Add(2*day)))
	charge, err := s.Upgrade(PlanAnnual, t0.Add(2*day))
	require.NoError(t, err)
	assert.Equal(t, 89.99, charge)
}

func TestIsDowngrade(t *testing.T) {
	lifetime := &Subscription{Plan: PlanLifetime, Status: StatusActive}
	assert.True(t, lifetime.IsDowngrade(PlanMonthly, t0))
	assert.False(t, lifetime.IsDowngrade(PlanLifetime, t0))

	lapsed := &Subscription{Plan: PlanAnnual, Status: StatusExpired, ExpiresAt: at(-day)}
	assert.False(t, lapsed.IsDowngrade(PlanMonthly, t0))
}

func TestRenew(t *testing.T) {
	s := &Subscription{Plan: PlanMonthly, Status: StatusActive, ExpiresAt: at(3 * day)}
	require.NoError(t, s.Renew(t0))
	assert.Equal(t, t0.Add(30*day), *s.ExpiresAt)
	assert.Equal(t, 1, s.RenewalCount)

	expired := &Subscription{Plan: PlanAnnual, Status: StatusExpired}
	require.NoError(t, expired.Renew(t0))
	assert.Equal(t, StatusActive, expired.Status)

	for _, p := range []Plan{PlanFree, PlanLifetime} {
		s := &Subscription{Plan: p, Status: StatusActive}
		assert.ErrorIs(t, s.Renew(t0), models.ErrNotRenewable)
	}
}

func TestCancelIsSoft(t *testing.T) {
	s := &Subscription{Plan: PlanAnnual, Status: StatusActive, ExpiresAt: at(10 * day), AutoRenew: true}
	require.NoError(t, s.Cancel(t0))
	assert.Equal(t, StatusCancelled, s.Status)
	assert.False(t, s.AutoRenew)
	assert.True(t, s.IsPremium(t0.Add(9*day)))
	assert.False(t, s.IsPremium(t0.Add(11*day)))

	assert.ErrorIs(t, s.Cancel(t0), models.ErrInvalidTransition)
	assert.ErrorIs(t, NewFree(1).Cancel(t0), models.ErrInvalidTransition)
}

func TestExpire(t *testing.T) {
	s := &Subscription{Plan: PlanMonthly, Status: StatusActive, ExpiresAt: at(-day)}
	require.NoError(t, s.Expire(t0))
	assert.Equal(t, StatusExpired, s.Status)

	life := &Subscription{Plan: PlanLifetime, Status: StatusActive}
	assert.ErrorIs(t, life.Expire(t0), models.ErrInvalidTransition)
	assert.Equal(t, StatusActive, life.Status)

	pending := NewFree(2)
	assert.ErrorIs(t, pending.Expire(t0), models.ErrInvalidTransition)
}

func TestDaysRemaining(t *testing.T) {
	s := &Subscription{Plan: PlanMonthly, ExpiresAt: at(15*day + 3*time.Hour)}
	assert.Equal(t, 15, *s.DaysRemaining(t0))

	s.ExpiresAt = at(-2 * day)
	assert.Equal(t, 0, *s.DaysRemaining(t0))

	s.ExpiresAt = nil
	assert.Equal(t, 0, *s.DaysRemaining(t0))
}

func TestPlanCatalogue(t *testing.T) {
	ps := Plans()
	require.Len(t, ps, 4)
	assert.Equal(t, PlanFree, ps[0].Plan)
	assert.Equal(t, PlanLifetime, ps[3].Plan)
	assert.Less(t, PlanMonthly.Rank(), PlanAnnual.Rank())
	assert.Equal(t, -1, Plan("GOLD").Rank())
	assert.Equal(t, 30*day, PlanMonthly.Duration())
	assert.Zero(t, PlanLifetime.Duration())
	assert.False(t, PlanFree.IsPaid())
}

func TestSubscriptionPaymentTransitions(t *testing.T) {
	admin := uint(9)
	p := &SubscriptionPayment{Status: PaymentPending}
	require.NoError(t, p.Complete(&admin, t0))
	assert.Equal(t, PaymentCompleted, p.Status)
	assert.NotNil(t, p.PaidAt)

	assert.ErrorIs(t, p.Fail(&admin, "late"), models.ErrPaymentProcessed)
	assert.ErrorIs(t, p.Complete(&admin, t0), models.ErrPaymentProcessed)

	assert.Regexp(t, `^INV-20250110-[0-9A-F]{8}$`, NewInvoiceNumber(t0))
}
