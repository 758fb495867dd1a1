package services

import (
	"fmt"
	"os"

	"remindme/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendSessionAlert tells the owner their WhatsApp link needs attention.
// Reminders silently pile up as skips while the session is down, so the
// mail is the only out-of-band nudge to re-link.
func (s *EmailService) SendSessionAlert(account *models.Account, reason string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(account.Username, account.Email)
	subject := "Your WhatsApp connection needs attention"

	detail := ""
	if reason != "" {
		detail = fmt.Sprintf(" (%s)", reason)
	}

	plainContent := fmt.Sprintf("Hello %s, your WhatsApp session could not authenticate%s. Your reminders will not be delivered until you reconnect from your dashboard.",
		account.Username, detail)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>Your WhatsApp session could not authenticate%s.</p><p>Your reminders will not be delivered until you reconnect from your dashboard.</p>",
		account.Username, detail)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send alert email to %s: %d", account.Email, response.StatusCode)
	}
	return nil
}
