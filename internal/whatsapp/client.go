// Package whatsapp defines the contract for the external WhatsApp
// transport. The provider is an opaque capability: it issues a pairing
// code the owner scans out-of-band, then reports lifecycle events back
// to the application, which feeds them to the session manager.
package whatsapp

import (
	"context"
	"encoding/json"
)

// State is the transport-level connection state of a single handle
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// EventType identifies a provider lifecycle callback
type EventType string

const (
	EventPairingCode   EventType = "pairing_code"
	EventAuthenticated EventType = "authenticated"
	EventDisconnected  EventType = "disconnected"
	EventAuthFailure   EventType = "auth_failure"
)

// Event is one provider lifecycle callback, normalized
type Event struct {
	OwnerID     string
	Type        EventType
	PairingCode string          // set for EventPairingCode
	Reason      string          // diagnostic text for disconnects/failures
	Raw         json.RawMessage // original provider payload, if any
}

// Identity is the remote account metadata available once authenticated
type Identity struct {
	Number      string
	DisplayName string
	AvatarURL   string
}

// Client is one owner's live transport handle
type Client interface {
	// Connect kicks off asynchronous authentication with the provider.
	// Lifecycle progress arrives as Events, not as a return value.
	Connect(ctx context.Context) error
	Send(ctx context.Context, destination, text string) error
	// State returns the last-known connection state without I/O.
	State() State
	// SetState records state pushed by provider callbacks.
	SetState(s State)
	Identity(ctx context.Context) (*Identity, error)
	// Logout unlinks the account at the provider, not just this handle.
	Logout(ctx context.Context) error
	Close() error
}

// Provider creates transport handles for owners
type Provider interface {
	NewClient(ownerID string) Client
}
