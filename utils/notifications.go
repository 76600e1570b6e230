package utils

import (
	"fmt"
	"html"
	"time"

	"academy/models"
	"academy/models/course"
	"academy/models/subscription"
)

// EmailNotifier turns lifecycle events into emails. Every send runs in its
// own goroutine so callers never wait on the mail provider.
type EmailNotifier struct {
	AdminEmail string
	BaseURL    string
}

func NewEmailNotifier(adminEmail, baseURL string) *EmailNotifier {
	return &EmailNotifier{AdminEmail: adminEmail, BaseURL: baseURL}
}

func (n *EmailNotifier) EnrollmentCreated(user models.User, c course.Course, e course.Enrollment) {
	subject := "Enrollment received: " + c.Title
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your enrollment in <strong>%s</strong> has been registered.</p>
		<div class="info-box">Amount due: <strong>%.2f %s</strong></div>
		<p>Complete the payment to unlock the course.</p>
		<a class="btn" href="%s/course/%d">Go to course</a>
	`, html.EscapeString(user.Name), html.EscapeString(c.Title), e.EnrolledPrice, e.Currency, n.BaseURL, c.ID)

	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("Enrollment registered", body))
}

func (n *EmailNotifier) PaymentSubmitted(user models.User, c course.Course, p course.Payment) {
	subject := "Payment received for review: " + c.Title
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received your payment proof for <strong>%s</strong>.</p>
		<p>An administrator will review it shortly. You will get an email once it is processed.</p>
	`, html.EscapeString(user.Name), html.EscapeString(c.Title))
	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("Payment under review", body))

	if n.AdminEmail == "" {
		return
	}
	adminBody := fmt.Sprintf(`
		<p>A new payment needs review.</p>
		<div class="info-box">
			Payment #%d<br>Learner: %s (%s)<br>Course: %s<br>Amount: %.2f %s<br>Method: %s
		</div>
		<a class="btn" href="%s/admin/payments/%d">Review payment</a>
	`, p.ID, html.EscapeString(user.Name), html.EscapeString(user.Email), html.EscapeString(c.Title), p.Amount, p.Currency, p.PaymentMethod, n.BaseURL, p.ID)
	go SendEmail(n.AdminEmail, "Admin", "New payment pending approval", getEmailTemplate("Payment pending approval", adminBody))
}

func (n *EmailNotifier) PaymentApproved(user models.User, c course.Course, p course.Payment) {
	subject := "Payment approved: " + c.Title
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment of <strong>%.2f %s</strong> was approved and <strong>%s</strong> is now unlocked.</p>
		<a class="btn" href="%s/course/%d">Start learning</a>
	`, html.EscapeString(user.Name), p.Amount, p.Currency, html.EscapeString(c.Title), n.BaseURL, c.ID)

	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("You're in!", body))
}

func (n *EmailNotifier) PaymentRejected(user models.User, c course.Course, p course.Payment) {
	subject := "Payment not approved: " + c.Title
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Unfortunately your payment for <strong>%s</strong> could not be approved.</p>
		<div class="info-box"><strong>Reason:</strong> %s</div>
		<p>You can enroll again and submit a new payment at any time.</p>
	`, html.EscapeString(user.Name), html.EscapeString(c.Title), html.EscapeString(p.RejectionReason))

	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("Payment rejected", body))
}

func (n *EmailNotifier) SubscriptionActivated(user models.User, sub subscription.Subscription) {
	subject := "Your " + sub.Plan.DisplayName() + " subscription is active"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your <strong>%s</strong> subscription is now active.</p>
		<div class="info-box">%s</div>
	`, html.EscapeString(user.Name), sub.Plan.DisplayName(), describeExpiry(sub.ExpiresAt))

	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("Welcome to Premium", body))
}

func (n *EmailNotifier) SubscriptionPaymentSubmitted(user models.User, p subscription.SubscriptionPayment) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received your transfer for the <strong>%s</strong> plan (invoice %s). It will be reviewed shortly.</p>
	`, html.EscapeString(user.Name), p.Plan.DisplayName(), p.InvoiceNumber)
	go SendEmail(user.Email, user.Name, "Subscription payment received", getEmailTemplate("Payment under review", body))

	if n.AdminEmail == "" {
		return
	}
	adminBody := fmt.Sprintf(`
		<p>A subscription payment needs review.</p>
		<div class="info-box">Invoice %s<br>Learner: %s (%s)<br>Plan: %s<br>Amount: %.2f %s</div>
	`, p.InvoiceNumber, html.EscapeString(user.Name), html.EscapeString(user.Email), p.Plan.DisplayName(), p.Amount, p.Currency)
	go SendEmail(n.AdminEmail, "Admin", "New subscription payment pending", getEmailTemplate("Subscription payment pending", adminBody))
}

func (n *EmailNotifier) SubscriptionPaymentRejected(user models.User, p subscription.SubscriptionPayment) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment for the <strong>%s</strong> plan (invoice %s) was not approved.</p>
		<div class="info-box"><strong>Reason:</strong> %s</div>
	`, html.EscapeString(user.Name), p.Plan.DisplayName(), p.InvoiceNumber, html.EscapeString(p.FailureReason))

	go SendEmail(user.Email, user.Name, "Subscription payment not approved", getEmailTemplate("Payment rejected", body))
}

func (n *EmailNotifier) TrialStarted(user models.User, sub subscription.Subscription) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your free premium trial has started. Enjoy every premium article and lesson.</p>
		<div class="info-box">%s</div>
	`, html.EscapeString(user.Name), describeExpiry(sub.TrialEndsAt))

	go SendEmail(user.Email, user.Name, "Your premium trial has started", getEmailTemplate("Trial started", body))
}

func (n *EmailNotifier) SubscriptionCancelled(user models.User, sub subscription.Subscription) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your <strong>%s</strong> subscription has been cancelled and will not renew.</p>
		<div class="info-box">%s</div>
	`, html.EscapeString(user.Name), sub.Plan.DisplayName(), describeExpiry(sub.ExpiresAt))

	go SendEmail(user.Email, user.Name, "Subscription cancelled", getEmailTemplate("Subscription cancelled", body))
}

func (n *EmailNotifier) SubscriptionExpiring(user models.User, sub subscription.Subscription, daysLeft int) {
	subject := fmt.Sprintf("Your subscription expires in %d days", daysLeft)
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your <strong>%s</strong> subscription expires in <strong>%d days</strong>.</p>
		<p>Renew now to keep your premium access.</p>
		<a class="btn" href="%s/subscription/plans">Renew subscription</a>
	`, html.EscapeString(user.Name), sub.Plan.DisplayName(), daysLeft, n.BaseURL)

	go SendEmail(user.Email, user.Name, subject, getEmailTemplate("Subscription expiring soon", body))
}

func (n *EmailNotifier) SubscriptionExpired(user models.User, sub subscription.Subscription) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your <strong>%s</strong> subscription has expired. Premium content is no longer available.</p>
		<a class="btn" href="%s/subscription/plans">See plans</a>
	`, html.EscapeString(user.Name), sub.Plan.DisplayName(), n.BaseURL)

	go SendEmail(user.Email, user.Name, "Your subscription has expired", getEmailTemplate("Subscription expired", body))
}

func describeExpiry(t *time.Time) string {
	if t == nil {
		return "Your access does not expire."
	}
	return "Access until: <strong>" + t.Format("January 2, 2006") + "</strong>"
}
