package services

import (
	"context"
	"errors"
	"testing"

	"academy/models"
	"academy/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollCreatesPendingEnrollment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)

	assert.Equal(t, course.EnrollmentPendingPayment, e.Status)
	assert.Equal(t, 50.0, e.EnrolledPrice)
	assert.Equal(t, testNow, e.EnrolledAt)
	assert.Equal(t, []string{"enrollment_created"}, h.notifier.Events())

	_, err = h.enrollments.Enroll(ctx, user.ID, c.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyEnrolled)
}

func TestEnrollFreeCourseActivatesImmediately(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "intro", 0)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentActive, e.Status)
	require.NotNil(t, e.CurrentPaymentID)

	var p course.Payment
	require.NoError(t, h.db.First(&p, *e.CurrentPaymentID).Error)
	assert.Equal(t, course.MethodFree, p.PaymentMethod)
	assert.Equal(t, course.PaymentApproved, p.Status)
}

func TestEnrollRejectsUnpublishedCourse(t *testing.T) {
	h := newHarness(t)
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "draft", 10)
	require.NoError(t, h.db.Model(&c).Update("is_published", false).Error)

	_, err := h.enrollments.Enroll(context.Background(), user.ID, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelOnlyWhilePendingPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	_, err = h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/proof.png"})
	require.NoError(t, err)

	err = h.enrollments.Cancel(ctx, user.ID, e.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	require.NoError(t, h.payments.Withdraw(ctx, user.ID, e.ID))
	require.NoError(t, h.enrollments.Cancel(ctx, user.ID, e.ID))

	var count int64
	h.db.Unscoped().Model(&course.Enrollment{}).Where("id = ?", e.ID).Count(&count)
	assert.Zero(t, count)
	h.db.Unscoped().Model(&course.Payment{}).Where("enrollment_id = ?", e.ID).Count(&count)
	assert.Zero(t, count)
}

func TestCancelOtherUsersEnrollment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.db, "owner@example.com", models.RoleUser)
	other := seedUser(t, h.db, "other@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	e, err := h.enrollments.Enroll(ctx, owner.ID, c.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, h.enrollments.Cancel(ctx, other.ID, e.ID), models.ErrNotFound)
}

func TestGetIncludesCurrentPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	c := seedCourse(t, h.db, "go-basics", 50)

	_, err := h.enrollments.Get(ctx, user.ID, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	e, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
	require.NoError(t, err)
	p, err := h.payments.SubmitTransfer(ctx, user.ID, e.ID, TransferInput{ProofPath: "/uploads/proof.png"})
	require.NoError(t, err)

	status, err := h.enrollments.Get(ctx, user.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, status.CurrentPayment)
	assert.Equal(t, p.ID, status.CurrentPayment.ID)
	assert.False(t, status.CanAccess)
}

func TestListEnrollments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	for _, slug := range []string{"a", "b", "c"} {
		c := seedCourse(t, h.db, slug, 10)
		_, err := h.enrollments.Enroll(ctx, user.ID, c.ID)
		require.NoError(t, err)
	}

	list, total, err := h.enrollments.List(ctx, user.ID, Page{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)
	require.NotNil(t, list[0].Course)
}

func TestExpireDueEnrollments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := seedUser(t, h.db, "learner@example.com", models.RoleUser)
	days := 30

	windowed := seedCourse(t, h.db, "windowed", 0)
	require.NoError(t, h.db.Model(&windowed).Update("access_days", days).Error)
	lifetime := seedCourse(t, h.db, "lifetime", 0)

	e1, err := h.enrollments.Enroll(ctx, user.ID, windowed.ID)
	require.NoError(t, err)
	require.NotNil(t, e1.ExpiresAt)
	e2, err := h.enrollments.Enroll(ctx, user.ID, lifetime.ID)
	require.NoError(t, err)
	assert.Nil(t, e2.ExpiresAt)

	h.setClock(testNow.AddDate(0, 0, 29))
	n, err := h.enrollments.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.setClock(testNow.AddDate(0, 0, 31))
	n, err = h.enrollments.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got course.Enrollment
	require.NoError(t, h.db.First(&got, e1.ID).Error)
	assert.Equal(t, course.EnrollmentExpired, got.Status)
	require.NoError(t, h.db.First(&got, e2.ID).Error)
	assert.Equal(t, course.EnrollmentActive, got.Status)

	reopened, err := h.enrollments.Enroll(ctx, user.ID, windowed.ID)
	require.NoError(t, err)
	assert.Equal(t, e1.ID, reopened.ID)
	assert.Equal(t, course.EnrollmentActive, reopened.Status)
}
