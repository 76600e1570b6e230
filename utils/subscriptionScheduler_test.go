package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	order     *[]string
	reminders int
	expired   int
	err       error
}

func (f fakeSweeper) SendExpiringReminders(context.Context) (int, error) {
	*f.order = append(*f.order, "remind")
	return f.reminders, nil
}

func (f fakeSweeper) ExpireDue(context.Context) (int, error) {
	*f.order = append(*f.order, "expire")
	return f.expired, f.err
}

func TestRunDailySweep(t *testing.T) {
	var order []string
	subs := fakeSweeper{order: &order, reminders: 2, expired: 3}
	enrollments := fakeSweeper{order: &order, expired: 1}

	res := RunDailySweep(context.Background(), subs, enrollments)

	assert.Equal(t, SweepResult{RemindersSent: 2, SubscriptionsExpired: 3, EnrollmentsExpired: 1}, res)
	assert.Equal(t, []string{"remind", "expire", "expire"}, order)
}

func TestRunDailySweepContinuesAfterError(t *testing.T) {
	var order []string
	subs := fakeSweeper{order: &order, err: errors.New("db down")}
	enrollments := fakeSweeper{order: &order, expired: 4}

	res := RunDailySweep(context.Background(), subs, enrollments)
	assert.Equal(t, 4, res.EnrollmentsExpired)
}

func TestInitializeSubscriptionScheduler(t *testing.T) {
	var order []string
	subs := fakeSweeper{order: &order}

	_, err := InitializeSubscriptionScheduler("Mars/Olympus", subs, nil)
	require.Error(t, err)

	c, err := InitializeSubscriptionScheduler("UTC", subs, nil)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
