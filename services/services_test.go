package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"academy/database/dbtest"
	"academy/models"
	"academy/models/course"
	"academy/models/subscription"
	"academy/payments"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *recordingNotifier) EnrollmentCreated(models.User, course.Course, course.Enrollment) {
	n.add("enrollment_created")
}
func (n *recordingNotifier) PaymentSubmitted(models.User, course.Course, course.Payment) {
	n.add("payment_submitted")
}
func (n *recordingNotifier) PaymentApproved(models.User, course.Course, course.Payment) {
	n.add("payment_approved")
}
func (n *recordingNotifier) PaymentRejected(models.User, course.Course, course.Payment) {
	n.add("payment_rejected")
}
func (n *recordingNotifier) SubscriptionActivated(models.User, subscription.Subscription) {
	n.add("subscription_activated")
}
func (n *recordingNotifier) SubscriptionPaymentSubmitted(models.User, subscription.SubscriptionPayment) {
	n.add("subscription_payment_submitted")
}
func (n *recordingNotifier) SubscriptionPaymentRejected(models.User, subscription.SubscriptionPayment) {
	n.add("subscription_payment_rejected")
}
func (n *recordingNotifier) TrialStarted(models.User, subscription.Subscription) {
	n.add("trial_started")
}
func (n *recordingNotifier) SubscriptionCancelled(models.User, subscription.Subscription) {
	n.add("subscription_cancelled")
}
func (n *recordingNotifier) SubscriptionExpiring(models.User, subscription.Subscription, int) {
	n.add("subscription_expiring")
}
func (n *recordingNotifier) SubscriptionExpired(models.User, subscription.Subscription) {
	n.add("subscription_expired")
}

// stubGateway accepts any reference and reports the requested amount as paid.
type stubGateway struct {
	err   error
	calls []float64
}

func (g *stubGateway) Verify(_ context.Context, reference string, amount float64, currency string) (*payments.Verification, error) {
	g.calls = append(g.calls, amount)
	if g.err != nil {
		return nil, g.err
	}
	return &payments.Verification{
		Reference: reference,
		Status:    "COMPLETED",
		Amount:    amount,
		Currency:  currency,
		Raw:       map[string]interface{}{"id": reference},
	}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	u := models.User{Name: "Test " + role, Email: email, Role: role, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, slug string, price float64) course.Course {
	t.Helper()
	c := course.Course{
		Title:       "Course " + slug,
		Slug:        slug,
		Price:       price,
		Currency:    "USD",
		Status:      course.CourseStatusActive,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedLessons(t *testing.T, db *gorm.DB, c course.Course, n int) []course.Lesson {
	t.Helper()
	m := course.Module{CourseID: c.ID, Title: "Module"}
	require.NoError(t, db.Create(&m).Error)

	lessons := make([]course.Lesson, n)
	for i := range lessons {
		lessons[i] = course.Lesson{
			CourseID:    c.ID,
			ModuleID:    m.ID,
			Title:       "Lesson",
			ContentType: course.ContentText,
			OrderIndex:  i,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	return lessons
}

type harness struct {
	db            *gorm.DB
	notifier      *recordingNotifier
	paypal        *stubGateway
	enrollments   *EnrollmentService
	payments      *PaymentService
	subscriptions *SubscriptionService
	content       *ContentService
	progress      *ProgressService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.New(t)
	n := &recordingNotifier{}
	pp := &stubGateway{}
	gw := Gateways{"PAYPAL": pp}

	h := &harness{
		db:            db,
		notifier:      n,
		paypal:        pp,
		enrollments:   NewEnrollmentService(db, n),
		payments:      NewPaymentService(db, n, gw, "MXN"),
		subscriptions: NewSubscriptionService(db, n, gw, 7, 7),
		content:       NewContentService(db),
		progress:      NewProgressService(db),
	}
	h.setClock(testNow)
	return h
}

func (h *harness) setClock(t time.Time) {
	clock := fixedClock(t)
	h.enrollments.now = clock
	h.payments.now = clock
	h.subscriptions.now = clock
	h.content.now = clock
	h.progress.now = clock
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: 0, Limit: 500}.normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 20, Page{Page: 3, Limit: 10}.offset())
}
