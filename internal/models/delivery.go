package models

import "time"

// DeliveryOutcome classifies one delivery attempt
type DeliveryOutcome string

const (
	DeliverySuccess DeliveryOutcome = "success"
	DeliveryFailed  DeliveryOutcome = "failed"
	DeliverySkipped DeliveryOutcome = "skipped"
)

// DeliveryRecord is an append-only log entry for one reminder delivery
// attempt. Rows are never mutated after creation; the idempotency check
// uses Reminder.LastNotifiedAt, not this log.
type DeliveryRecord struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     string          `gorm:"size:30;not null;index" json:"owner_id"`
	ReminderID  string          `gorm:"size:36;not null;index" json:"reminder_id"`
	AttemptedAt time.Time       `gorm:"not null;index" json:"attempted_at"`
	Outcome     DeliveryOutcome `gorm:"size:10;not null" json:"outcome"`
	Detail      string          `gorm:"type:text" json:"detail,omitempty"`
}

// TableName specifies the table name for the DeliveryRecord model
func (DeliveryRecord) TableName() string {
	return "delivery_record"
}
