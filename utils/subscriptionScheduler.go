package utils

import (
	"context"
	"fmt"
	"time"

	"academy/logger"

	"github.com/robfig/cron/v3"
)

// DailySweepSpec runs the sweep every day at 09:00 in the scheduler timezone.
const DailySweepSpec = "0 9 * * *"

// SubscriptionSweeper persists time-derived subscription state.
type SubscriptionSweeper interface {
	ExpireDue(ctx context.Context) (int, error)
	SendExpiringReminders(ctx context.Context) (int, error)
}

// EnrollmentSweeper expires enrollments past their access window.
type EnrollmentSweeper interface {
	ExpireDue(ctx context.Context) (int, error)
}

// SweepResult counts what one sweep changed.
type SweepResult struct {
	RemindersSent        int `json:"reminders_sent"`
	SubscriptionsExpired int `json:"subscriptions_expired"`
	EnrollmentsExpired   int `json:"enrollments_expired"`
}

// InitializeSubscriptionScheduler starts the daily expiry sweep. The returned
// cron must be stopped on shutdown.
func InitializeSubscriptionScheduler(timezone string, subs SubscriptionSweeper, enrollments EnrollmentSweeper) (*cron.Cron, error) {
	logger.Log.Info("[SUBSCRIPTION-SCHEDULER] Initializing subscription scheduler...")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(DailySweepSpec, func() {
		logger.Log.Info("[SUBSCRIPTION-SCHEDULER] Running daily subscription check...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		RunDailySweep(ctx, subs, enrollments)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.Infof("[SUBSCRIPTION-SCHEDULER] Subscription scheduler started - runs daily at 09:00 %s", loc)
	return c, nil
}

// RunDailySweep sends reminders first so a subscription is never expired
// before its owner was warned, then persists expiries.
func RunDailySweep(ctx context.Context, subs SubscriptionSweeper, enrollments EnrollmentSweeper) SweepResult {
	var res SweepResult
	var err error

	if res.RemindersSent, err = subs.SendExpiringReminders(ctx); err != nil {
		logger.Log.Errorf("[SUBSCRIPTION-SCHEDULER] Error sending expiry reminders: %v", err)
	}
	if res.SubscriptionsExpired, err = subs.ExpireDue(ctx); err != nil {
		logger.Log.Errorf("[SUBSCRIPTION-SCHEDULER] Error expiring subscriptions: %v", err)
	}
	if enrollments != nil {
		if res.EnrollmentsExpired, err = enrollments.ExpireDue(ctx); err != nil {
			logger.Log.Errorf("[SUBSCRIPTION-SCHEDULER] Error expiring enrollments: %v", err)
		}
	}

	logger.Log.Infow("[SUBSCRIPTION-SCHEDULER] Sweep finished",
		"reminders", res.RemindersSent,
		"subscriptions_expired", res.SubscriptionsExpired,
		"enrollments_expired", res.EnrollmentsExpired,
	)
	return res
}
