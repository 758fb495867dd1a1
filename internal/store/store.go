// Package store is the durable-storage contract consumed by the
// scheduler and the session manager. Handlers doing plain CRUD talk to
// gorm directly; the core services go through this interface so they
// can be tested against an in-memory fake.
package store

import (
	"time"

	"remindme/internal/models"
)

type Store interface {
	// DueReminders returns all reminders across all owners with
	// next_trigger_at <= now and completed = false, in one query.
	DueReminders(now time.Time) ([]models.Reminder, error)

	// UpdateReminderSchedule persists the outcome of a successful
	// delivery: the notified timestamp, the (possibly advanced) next
	// trigger, and the completed flag.
	UpdateReminderSchedule(id string, notifiedAt time.Time, nextTriggerAt time.Time, completed bool) error

	// AppendDelivery writes one append-only delivery record.
	AppendDelivery(rec *models.DeliveryRecord) error

	AccountByUsername(username string) (*models.Account, error)

	SessionByOwner(ownerID string) (*models.WaSession, error)
	SaveSession(s *models.WaSession) error

	// ActiveSessions returns session rows whose persisted status claims
	// a live connection. After a restart these are stale until the
	// reconnection pass re-establishes handles.
	ActiveSessions() ([]models.WaSession, error)
}
