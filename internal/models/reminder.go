package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepeatPolicy represents how a reminder recurs
type RepeatPolicy string

const (
	RepeatOnce   RepeatPolicy = "once"
	RepeatDaily  RepeatPolicy = "daily"
	RepeatWeekly RepeatPolicy = "weekly"
)

// IsRecurring reports whether the policy produces more than one occurrence
func (p RepeatPolicy) IsRecurring() bool {
	return p == RepeatDaily || p == RepeatWeekly
}

// WeekdaySet represents the set of weekdays a weekly reminder fires on,
// stored as a JSON array of Go weekday numbers (0=Sunday .. 6=Saturday)
type WeekdaySet []time.Weekday

func (s WeekdaySet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*s = make(WeekdaySet, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for WeekdaySet: %T", value)
	}
}

// Contains reports whether the set includes the given weekday
func (s WeekdaySet) Contains(d time.Weekday) bool {
	for _, w := range s {
		if w == d {
			return true
		}
	}
	return false
}

// Reminder represents a reminder item owned by a single account
type Reminder struct {
	ID               string       `gorm:"primaryKey;size:36" json:"id"`
	OwnerID          string       `gorm:"size:30;not null;index" json:"owner_id"`
	Title            string       `gorm:"size:200;not null" json:"title"`
	Body             string       `gorm:"type:text" json:"body"`
	NotificationText string       `gorm:"type:text" json:"notification_text"`
	NextTriggerAt    time.Time    `gorm:"not null;index" json:"next_trigger_at"`
	Repeat           RepeatPolicy `gorm:"size:10;not null;default:'once'" json:"repeat"`
	AnchorTime       string       `gorm:"size:5" json:"anchor_time"` // "HH:MM", local time
	Weekdays         WeekdaySet   `gorm:"type:jsonb;default:'[]'" json:"weekdays"`
	LastNotifiedAt   *time.Time   `json:"last_notified_at"`
	Completed        bool         `gorm:"not null;default:false;index" json:"completed"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

// Message returns the text to deliver for this reminder: the precomposed
// notification text when present, otherwise title plus body.
func (r *Reminder) Message() string {
	if r.NotificationText != "" {
		return r.NotificationText
	}
	if r.Body != "" {
		return fmt.Sprintf("Reminder: %s\n%s", r.Title, r.Body)
	}
	return fmt.Sprintf("Reminder: %s", r.Title)
}

// BeforeCreate hook assigns an ID and timestamps
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	return nil
}

// BeforeSave validates the repeat policy invariants
func (r *Reminder) BeforeSave(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	if r.Repeat == RepeatWeekly && len(r.Weekdays) == 0 {
		return fmt.Errorf("weekly reminder requires at least one weekday")
	}
	return nil
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "reminder"
}

// CreateReminderRequest represents the data needed to create a reminder
type CreateReminderRequest struct {
	Title            string         `json:"title" binding:"required,max=200"`
	Body             string         `json:"body"`
	NotificationText string         `json:"notification_text"`
	NextTriggerAt    time.Time      `json:"next_trigger_at" binding:"required"`
	Repeat           RepeatPolicy   `json:"repeat" binding:"omitempty,oneof=once daily weekly"`
	AnchorTime       string         `json:"anchor_time" binding:"omitempty,len=5"`
	Weekdays         []time.Weekday `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
}

// UpdateReminderRequest represents a partial reminder edit
type UpdateReminderRequest struct {
	Title            *string        `json:"title" binding:"omitempty,max=200"`
	Body             *string        `json:"body"`
	NotificationText *string        `json:"notification_text"`
	NextTriggerAt    *time.Time     `json:"next_trigger_at"`
	Repeat           *RepeatPolicy  `json:"repeat" binding:"omitempty,oneof=once daily weekly"`
	AnchorTime       *string        `json:"anchor_time" binding:"omitempty,len=5"`
	Weekdays         []time.Weekday `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	Completed        *bool          `json:"completed"`
}
