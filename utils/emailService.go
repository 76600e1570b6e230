package utils

import (
	"fmt"

	"academy/config"
	"academy/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(toEmail, toName, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, senderEmail, senderName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, senderEmail),
	}
}

func (m *SendGridMailer) Send(toEmail, toName, subject, htmlBody string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), "", htmlBody)
	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logMailer is used when no API key is configured.
type logMailer struct{}

func (logMailer) Send(toEmail, _, subject, _ string) error {
	logger.Log.Infow("email not sent, mailer disabled", "to", toEmail, "subject", subject)
	return nil
}

var mailer Mailer = logMailer{}

// InitMailer selects SendGrid when SENDGRID_API_KEY is set.
func InitMailer() {
	cfg := config.AppConfig
	if cfg.SendGridAPIKey == "" {
		mailer = logMailer{}
		return
	}
	mailer = NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName)
}

// SetMailer replaces the active mailer.
func SetMailer(m Mailer) {
	mailer = m
}

// SendEmail delivers one email and logs the outcome.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if toEmail == "" {
		return fmt.Errorf("missing recipient for %q", subject)
	}
	if err := mailer.Send(toEmail, toName, subject, htmlBody); err != nil {
		logger.Log.Errorw("failed to send email", "to", toEmail, "subject", subject, "error", err)
		return err
	}
	logger.Log.Debugw("email sent", "to", toEmail, "subject", subject)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F5F7; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E293B; padding: 28px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
			.content { padding: 36px 30px; color: #1E293B; line-height: 1.6; }
			.info-box { background: #EEF2FF; padding: 15px; border-radius: 4px; border-left: 4px solid #6366F1; margin: 20px 0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #6366F1; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; }
			.footer { background-color: #F4F5F7; padding: 20px; text-align: center; font-size: 12px; color: #64748B; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>ACADEMY</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You are receiving this email because you have an Academy account.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
