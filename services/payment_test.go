package services

import (
	"context"
	"errors"
	"testing"

	"academy/models"
	"academy/models/course"
	"academy/models/subscription"
	"academy/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankTransferApprovalScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	require.EqualValues(t, 1, admin.ID)
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)

	amount := 50.0
	p, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{
		ProofPath:  "/uploads/proofs/a.png",
		SenderName: "Ana",
		Reference:  "SPEI-123",
		Amount:     &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, course.PaymentPendingApproval, p.Status)
	assert.Equal(t, 50.0, p.Amount)

	var pending course.Enrollment
	require.NoError(t, h.db.First(&pending, e.ID).Error)
	assert.Equal(t, course.EnrollmentPaymentPendingApproval, pending.Status)

	approved, err := h.payments.Approve(ctx, admin.ID, p.ID, "looks good", nil)
	require.NoError(t, err)
	assert.Equal(t, course.PaymentApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.EqualValues(t, 1, *approved.ProcessedBy)

	var active course.Enrollment
	require.NoError(t, h.db.First(&active, e.ID).Error)
	assert.Equal(t, course.EnrollmentActive, active.Status)
	assert.NotNil(t, active.ActivatedAt)
	assert.True(t, active.CanAccessCourse())

	assert.Equal(t, []string{"enrollment_created", "payment_submitted", "payment_approved"}, h.notifier.Events())
}

func TestSecondApprovalWithStaleVersionFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	other := seedUser(t, h.db, "admin2@example.com", models.RoleAdmin)
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	p, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/a.png"})
	require.NoError(t, err)

	seen := p.Version
	_, err = h.payments.Approve(ctx, admin.ID, p.ID, "first", &seen)
	require.NoError(t, err)

	_, err = h.payments.Reject(ctx, other.ID, p.ID, "late", "", &seen)
	assert.ErrorIs(t, err, models.ErrStaleRecord)

	_, err = h.payments.Approve(ctx, other.ID, p.ID, "again", nil)
	assert.ErrorIs(t, err, models.ErrPaymentProcessed)

	var stored course.Payment
	require.NoError(t, h.db.First(&stored, p.ID).Error)
	assert.Equal(t, course.PaymentApproved, stored.Status)
	require.NotNil(t, stored.ProcessedBy)
	assert.Equal(t, admin.ID, *stored.ProcessedBy)
	assert.Equal(t, "first", stored.AdminNotes)
}

func TestResubmitAfterRejection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	first, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/blurry.png"})
	require.NoError(t, err)

	_, err = h.payments.Reject(ctx, admin.ID, first.ID, "unreadable proof", "", nil)
	require.NoError(t, err)

	var cancelled course.Enrollment
	require.NoError(t, h.db.First(&cancelled, e.ID).Error)
	assert.Equal(t, course.EnrollmentCancelled, cancelled.Status)

	reopened, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, reopened.ID)
	assert.Equal(t, course.EnrollmentPendingPayment, reopened.Status)
	assert.Nil(t, reopened.CurrentPaymentID)

	second, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/clear.png"})
	require.NoError(t, err)

	status, err := h.enrollments.Get(ctx, user.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, status.CurrentPayment)
	assert.Equal(t, second.ID, status.CurrentPayment.ID)

	_, err = h.payments.Approve(ctx, admin.ID, second.ID, "", nil)
	require.NoError(t, err)

	var history []course.Payment
	require.NoError(t, h.db.Where("enrollment_id = ?", e.ID).Order("id").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, course.PaymentRejected, history[0].Status)
	assert.Equal(t, course.PaymentApproved, history[1].Status)
}

func TestSubmitTransferTwiceFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	_, err = h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/a.png"})
	require.NoError(t, err)

	_, err = h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/b.png"})
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	var count int64
	h.db.Model(&course.Payment{}).Where("enrollment_id = ?", e.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestPayInstant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)

	_, err = h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodFree, "")
	assert.ErrorIs(t, err, models.ErrPaymentRequired)

	_, err = h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodCreditCard, "pi_123")
	assert.ErrorIs(t, err, payments.ErrNotConfigured)

	_, err = h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodBankTransfer, "x")
	assert.ErrorIs(t, err, models.ErrUnsupportedMethod)

	p, err := h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodPayPal, " ORDER-1 ")
	require.NoError(t, err)
	assert.Equal(t, course.PaymentApproved, p.Status)
	assert.Equal(t, "ORDER-1", p.TransactionReference)
	assert.Nil(t, p.ProcessedBy)
	assert.Equal(t, []float64{50}, h.paypal.calls)

	var active course.Enrollment
	require.NoError(t, h.db.First(&active, e.ID).Error)
	assert.Equal(t, course.EnrollmentActive, active.Status)
	require.NotNil(t, active.CurrentPaymentID)
	assert.Equal(t, p.ID, *active.CurrentPaymentID)
}

func TestPayInstantRejectsReusedReference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c1 := seedCourse(t, h.db, "one", 50)
	c2 := seedCourse(t, h.db, "two", 50)

	e1, err := h.enrollments.Enroll(ctx, user.ID, c1.ID)
	require.NoError(t, err)
	e2, err := h.enrollments.Enroll(ctx, user.ID, c2.ID)
	require.NoError(t, err)

	_, err = h.payments.PayInstant(ctx, user.ID, e1.ID, course.MethodPayPal, "ORDER-1")
	require.NoError(t, err)
	_, err = h.payments.PayInstant(ctx, user.ID, e2.ID, course.MethodPayPal, "ORDER-1")
	assert.ErrorIs(t, err, models.ErrReferenceUsed)

	var pending course.Enrollment
	require.NoError(t, h.db.First(&pending, e2.ID).Error)
	assert.Equal(t, course.EnrollmentPendingPayment, pending.Status)
}

func TestPaymentListAndStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedUser(t, h.db, "admin@example.com", models.RoleAdmin)
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)

	var ids []uint
	for _, slug := range []string{"a", "b", "c"} {
		c := seedCourse(t, h.db, slug, 20)
		e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
		require.NoError(t, err)
		p, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/" + slug + ".png"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := h.payments.Approve(ctx, admin.ID, ids[0], "", nil)
	require.NoError(t, err)
	_, err = h.payments.Reject(ctx, admin.ID, ids[1], "wrong amount", "", nil)
	require.NoError(t, err)

	list, total, err := h.payments.List(ctx, PaymentFilter{Status: string(course.PaymentPendingApproval)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, ids[2], list[0].ID)
	require.NotNil(t, list[0].Enrollment)
	require.NotNil(t, list[0].Enrollment.Course)

	stats, err := h.payments.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.ApprovedToday)
	assert.EqualValues(t, 1, stats.Rejected)
	assert.InDelta(t, 20.0, stats.TotalRevenue, 0.001)
	assert.EqualValues(t, 3, stats.ByMethod[string(course.MethodBankTransfer)])
}

func TestGatewayReferenceBuysOnlyOnePurchase(t *testing.T) {
	t.Run("course then subscription", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
		c := seedCourse(t, h.db, "priced-like-annual", 89.99)

		e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
		require.NoError(t, err)
		_, err = h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodPayPal, "ORDER-1")
		require.NoError(t, err)

		_, _, err = h.subscriptions.Subscribe(ctx, user.ID, Checkout{Plan: subscription.PlanAnnual, Method: "PAYPAL", Reference: "ORDER-1"})
		assert.ErrorIs(t, err, models.ErrReferenceUsed)

		premium, err := h.subscriptions.HasPremiumAccess(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("subscription then course", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
		c := seedCourse(t, h.db, "priced-like-annual", 89.99)

		_, _, err := h.subscriptions.Subscribe(ctx, user.ID, Checkout{Plan: subscription.PlanAnnual, Method: "PAYPAL", Reference: "ORDER-1"})
		require.NoError(t, err)

		e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
		require.NoError(t, err)
		_, err = h.payments.PayInstant(ctx, user.ID, e.ID, course.MethodPayPal, "ORDER-1")
		assert.ErrorIs(t, err, models.ErrReferenceUsed)

		var pending course.Enrollment
		require.NoError(t, h.db.First(&pending, e.ID).Error)
		assert.Equal(t, course.EnrollmentPendingPayment, pending.Status)
	})

	t.Run("claim table is unique", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, claimReference(h.db, "PAYPAL", "ORDER-9", models.ReferenceCoursePayment, 1))
		err := claimReference(h.db, "PAYPAL", "ORDER-9", models.ReferenceSubscriptionPayment, 2)
		assert.ErrorIs(t, err, models.ErrReferenceUsed)

		var claims int64
		require.NoError(t, h.db.Model(&models.GatewayReference{}).Count(&claims).Error)
		assert.EqualValues(t, 1, claims)
	})
}
