package services

import (
	"fmt"
	"time"

	"remindme/internal/models"

	"github.com/go-resty/resty/v2"
)

// WebhookService posts delivery side-notifications to owner-configured
// endpoints. The timeout is deliberately short: a slow webhook must not
// stall the scheduler tick.
type WebhookService struct {
	client *resty.Client
}

func NewWebhookService() *WebhookService {
	return &WebhookService{
		client: resty.New().
			SetTimeout(5 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "remindme-webhook/1.0"),
	}
}

type deliveredPayload struct {
	Event       string    `json:"event"`
	ReminderID  string    `json:"reminder_id"`
	Title       string    `json:"title"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// NotifyDelivered posts a reminder.delivered event to the owner's webhook
func (s *WebhookService) NotifyDelivered(url string, item models.Reminder, at time.Time) error {
	resp, err := s.client.R().
		SetBody(deliveredPayload{
			Event:       "reminder.delivered",
			ReminderID:  item.ID,
			Title:       item.Title,
			DeliveredAt: at,
		}).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}
