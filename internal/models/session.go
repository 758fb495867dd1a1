package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionDuration is the length of time a login session remains valid
const SessionDuration = time.Hour * 24 * 7 // 1 week

// Session represents a browser login session (cookie-backed)
type Session struct {
	ID          string    `gorm:"primaryKey;size:64" json:"-"`
	UserID      string    `gorm:"size:128;index" json:"-"` // Google ID
	Username    string    `gorm:"size:30;index" json:"-"`  // Username once profile is created
	Email       string    `gorm:"size:255" json:"-"`
	AccessToken string    `gorm:"type:text" json:"-"`
	TokenExpiry time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
	ExpiresAt   time.Time `gorm:"index" json:"-"`
}

// BeforeCreate hook for login sessions
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(SessionDuration)
	}
	return nil
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "session"
}
