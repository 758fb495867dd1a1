package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account represents a user account in the system
type Account struct {
	Username       string         `gorm:"primaryKey;size:30;not null" json:"username"`
	GoogleID       string         `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	EmailVerified  bool           `gorm:"not null;default:false" json:"email_verified"`
	FullName       string         `gorm:"size:100" json:"full_name"`
	AvatarURL      string         `gorm:"size:512" json:"avatar_url"`
	WhatsAppNumber string         `gorm:"size:30" json:"whatsapp_number"`
	WebhookURL     string         `gorm:"size:512" json:"webhook_url"`
	AlertEmails    bool           `gorm:"not null;default:false" json:"alert_emails"`
	DateJoined     time.Time      `gorm:"not null" json:"date_joined"`
	LastLogin      time.Time      `gorm:"not null" json:"last_login"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// NotifyNumber returns the normalized destination address for reminder
// delivery: the user-entered WhatsApp number stripped to digits only.
// Empty means no destination is configured.
func (a *Account) NotifyNumber() string {
	var b strings.Builder
	for _, r := range a.WhatsAppNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BeforeCreate hook is called before creating a new account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.DateJoined.IsZero() {
		a.DateJoined = now
	}
	if a.LastLogin.IsZero() {
		a.LastLogin = now
	}
	return nil
}

// BeforeSave hook is called before saving the account
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "account"
}

// CompleteProfileRequest represents the data needed to finish account setup
type CompleteProfileRequest struct {
	Username       string `json:"username" binding:"required,alphanum,min=3,max=30"`
	WhatsAppNumber string `json:"whatsapp_number" binding:"omitempty,max=30"`
}

// UpdateAccountRequest represents updatable account settings
type UpdateAccountRequest struct {
	WhatsAppNumber *string `json:"whatsapp_number" binding:"omitempty,max=30"`
	WebhookURL     *string `json:"webhook_url" binding:"omitempty,url,max=512"`
	AlertEmails    *bool   `json:"alert_emails"`
}
