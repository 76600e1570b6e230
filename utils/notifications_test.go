package utils

import (
	"testing"
	"time"

	"academy/models"
	"academy/models/course"
	"academy/models/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	to, subject, body string
}

type chanMailer chan sentEmail

func (m chanMailer) Send(toEmail, _, subject, htmlBody string) error {
	m <- sentEmail{to: toEmail, subject: subject, body: htmlBody}
	return nil
}

func captureMail(t *testing.T) chanMailer {
	t.Helper()
	m := make(chanMailer, 4)
	SetMailer(m)
	t.Cleanup(func() { SetMailer(logMailer{}) })
	return m
}

func nextEmail(t *testing.T, m chanMailer) sentEmail {
	t.Helper()
	select {
	case e := <-m:
		return e
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no email sent")
		return sentEmail{}
	}
}

func TestNotificationsEscapeUserInput(t *testing.T) {
	m := captureMail(t)
	n := NewEmailNotifier("", "http://localhost")
	user := models.User{Name: `<img src=x onerror="alert(1)">`, Email: "ana@example.com"}

	n.PaymentRejected(user, course.Course{Title: "Calls & Puts"}, course.Payment{RejectionReason: "<b>blurry</b>"})
	e := nextEmail(t, m)
	assert.Equal(t, "ana@example.com", e.to)
	assert.NotContains(t, e.body, "<img")
	assert.NotContains(t, e.body, "<b>blurry</b>")
	assert.Contains(t, e.body, "&lt;img src=x onerror=&#34;alert(1)&#34;&gt;")
	assert.Contains(t, e.body, "Calls &amp; Puts")
	assert.Contains(t, e.body, "&lt;b&gt;blurry&lt;/b&gt;")

	n.SubscriptionPaymentRejected(user, subscription.SubscriptionPayment{Plan: subscription.PlanMonthly, FailureReason: "<script>x</script>"})
	e = nextEmail(t, m)
	assert.NotContains(t, e.body, "<script>")
	assert.Contains(t, e.body, "&lt;script&gt;x&lt;/script&gt;")
}
