package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionStatus represents the lifecycle state of a WhatsApp session
type SessionStatus string

const (
	SessionNone         SessionStatus = "none"
	SessionConnecting   SessionStatus = "connecting"
	SessionCodePending  SessionStatus = "code_pending"
	SessionReady        SessionStatus = "ready"
	SessionDisconnected SessionStatus = "disconnected"
	SessionError        SessionStatus = "error"
)

// WaSession is the durable status row for an owner's WhatsApp session.
// There is at most one row per owner; it is never hard-deleted, logout
// resets it to disconnected. The live transport handle lives in the
// in-process registry, not here.
type WaSession struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	OwnerID             string         `gorm:"uniqueIndex;size:30;not null" json:"owner_id"`
	Status              SessionStatus  `gorm:"size:15;not null;default:'none'" json:"status"`
	PairingCode         string         `gorm:"type:text" json:"pairing_code,omitempty"`
	LastPairingIssuedAt *time.Time     `json:"last_pairing_issued_at"`
	LastConnectedAt     *time.Time     `json:"last_connected_at"`
	RemoteNumber        string         `gorm:"size:30" json:"remote_number"`
	RemoteName          string         `gorm:"size:100" json:"remote_name"`
	RemoteAvatarURL     string         `gorm:"size:512" json:"remote_avatar_url"`
	LastEvent           datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"-"` // raw payload of the last provider event, kept for debugging
	CreatedAt           time.Time      `gorm:"not null" json:"-"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for session rows
func (s *WaSession) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	if s.Status == "" {
		s.Status = SessionNone
	}
	return nil
}

// BeforeSave keeps the pairing artifact scoped to code_pending only
func (s *WaSession) BeforeSave(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	if s.Status != SessionCodePending {
		s.PairingCode = ""
	}
	return nil
}

// TableName specifies the table name for the WaSession model
func (WaSession) TableName() string {
	return "wa_session"
}
