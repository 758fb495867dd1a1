package services

import (
	"context"
	"errors"
	"log"
	"time"

	"remindme/internal/models"
	"remindme/internal/store"
	"remindme/internal/whatsapp"
)

const (
	connectTimeout  = 60 * time.Second
	identityTimeout = 10 * time.Second
	logoutTimeout   = 10 * time.Second
)

// SessionManager drives the per-owner session state machine. Provider
// callbacks arrive as events on a channel and are applied by a single
// control loop, so durable status transitions never race each other.
type SessionManager struct {
	store    store.Store
	registry *SessionRegistry
	provider whatsapp.Provider
	emails   *EmailService  // optional, session-drop alerts
	avatars  *AvatarService // optional, avatar mirroring

	events chan whatsapp.Event
	done   chan struct{}
}

func NewSessionManager(st store.Store, registry *SessionRegistry, provider whatsapp.Provider, emails *EmailService, avatars *AvatarService) *SessionManager {
	return &SessionManager{
		store:    st,
		registry: registry,
		provider: provider,
		emails:   emails,
		avatars:  avatars,
		events:   make(chan whatsapp.Event, 64),
		done:     make(chan struct{}),
	}
}

// Start launches the event control loop
func (m *SessionManager) Start() {
	go m.loop()
}

// Stop terminates the event control loop
func (m *SessionManager) Stop() {
	close(m.done)
}

// Dispatch feeds one provider event into the control loop
func (m *SessionManager) Dispatch(evt whatsapp.Event) {
	select {
	case m.events <- evt:
	case <-m.done:
	}
}

func (m *SessionManager) loop() {
	for {
		select {
		case evt := <-m.events:
			m.handleEvent(evt)
		case <-m.done:
			return
		}
	}
}

// StartSession begins connecting an owner's WhatsApp session. Idempotent:
// if a live handle already exists, the current status row is returned
// unchanged. Otherwise the status row moves to connecting, the handle is
// registered, and initialization proceeds asynchronously; callers poll
// GetStatus for progress. Initialization failures surface as status
// "error", never as a panic or an error here.
func (m *SessionManager) StartSession(ownerID string) (*models.WaSession, error) {
	if _, ok := m.registry.Get(ownerID); ok {
		return m.GetStatus(ownerID)
	}

	session, err := m.loadOrCreate(ownerID)
	if err != nil {
		return nil, err
	}

	session.Status = models.SessionConnecting
	session.PairingCode = ""
	if err := m.store.SaveSession(session); err != nil {
		return nil, err
	}

	client := m.provider.NewClient(ownerID)

	// Register before kicking off initialization so status checks during
	// init never race against a not-yet-registered handle.
	m.registry.Register(ownerID, client)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Connect(ctx); err != nil {
			log.Printf("Session init failed for %s: %v", ownerID, err)
			m.registry.Remove(ownerID)
			m.markStatus(ownerID, models.SessionError)
		}
	}()

	return session, nil
}

// StopSession closes an owner's live handle. Idempotent: returns
// found=false without error when no handle exists. The handle is
// unregistered before it is closed so no new operations are dispatched
// against it mid-teardown.
func (m *SessionManager) StopSession(ownerID string) (bool, error) {
	handle, ok := m.registry.Remove(ownerID)
	if !ok {
		return false, nil
	}

	if err := handle.Close(); err != nil {
		return true, err
	}

	m.markStatus(ownerID, models.SessionDisconnected)
	return true, nil
}

// Logout unlinks the owner's WhatsApp account. The status row is reset
// to disconnected and the pairing artifact cleared; remote identity is
// retained as last-known-good. Works from any state.
func (m *SessionManager) Logout(ownerID string) error {
	if handle, ok := m.registry.Remove(ownerID); ok {
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		if err := handle.Logout(ctx); err != nil {
			log.Printf("Provider logout failed for %s: %v", ownerID, err)
		}
		cancel()
		if err := handle.Close(); err != nil {
			log.Printf("Handle close failed for %s: %v", ownerID, err)
		}
	}

	session, err := m.loadOrCreate(ownerID)
	if err != nil {
		return err
	}
	session.Status = models.SessionDisconnected
	session.PairingCode = ""
	return m.store.SaveSession(session)
}

// GetStatus returns the owner's durable session row; owners who never
// connected get a synthetic "none" row.
func (m *SessionManager) GetStatus(ownerID string) (*models.WaSession, error) {
	session, err := m.store.SessionByOwner(ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.WaSession{OwnerID: ownerID, Status: models.SessionNone}, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RestoreSessions re-establishes handles for sessions that claimed to be
// live before the last restart. The registry starts empty, so persisted
// connecting/code_pending/ready rows are stale until this pass runs.
func (m *SessionManager) RestoreSessions() {
	sessions, err := m.store.ActiveSessions()
	if err != nil {
		log.Printf("Failed to load sessions for reconnect: %v", err)
		return
	}

	for _, session := range sessions {
		if _, err := m.StartSession(session.OwnerID); err != nil {
			log.Printf("Reconnect failed for %s: %v", session.OwnerID, err)
		}
	}

	if len(sessions) > 0 {
		log.Printf("Reconnection pass started for %d session(s)", len(sessions))
	}
}

func (m *SessionManager) handleEvent(evt whatsapp.Event) {
	session, err := m.loadOrCreate(evt.OwnerID)
	if err != nil {
		log.Printf("Failed to load session row for %s: %v", evt.OwnerID, err)
		return
	}
	if len(evt.Raw) > 0 {
		session.LastEvent = []byte(evt.Raw)
	}

	switch evt.Type {
	case whatsapp.EventPairingCode:
		// A pairing code can only be issued while authenticating; a stale
		// callback must not drag an established session back to code_pending.
		if session.Status != models.SessionConnecting && session.Status != models.SessionCodePending {
			log.Printf("Ignoring pairing code for %s in state %s", evt.OwnerID, session.Status)
			return
		}
		now := time.Now()
		session.Status = models.SessionCodePending
		session.PairingCode = evt.PairingCode
		session.LastPairingIssuedAt = &now
		if err := m.store.SaveSession(session); err != nil {
			log.Printf("Failed to persist pairing code for %s: %v", evt.OwnerID, err)
		}

	case whatsapp.EventAuthenticated:
		if session.Status != models.SessionConnecting && session.Status != models.SessionCodePending {
			log.Printf("Ignoring authenticated event for %s in state %s", evt.OwnerID, session.Status)
			return
		}
		now := time.Now()
		if handle, ok := m.registry.Get(evt.OwnerID); ok {
			handle.SetState(whatsapp.StateConnected)
			m.fetchIdentity(handle, session)
		}
		// The transition to ready is unconditional; identity metadata is
		// best-effort and may be missing.
		session.Status = models.SessionReady
		session.PairingCode = ""
		session.LastConnectedAt = &now
		if err := m.store.SaveSession(session); err != nil {
			log.Printf("Failed to persist ready status for %s: %v", evt.OwnerID, err)
		}

	case whatsapp.EventDisconnected:
		// Drop the dead handle so a later start builds a fresh one;
		// StartSession short-circuits while a registry entry exists.
		if handle, ok := m.registry.Remove(evt.OwnerID); ok {
			if err := handle.Close(); err != nil {
				log.Printf("Handle close failed for %s: %v", evt.OwnerID, err)
			}
		}
		session.Status = models.SessionDisconnected
		session.PairingCode = ""
		if err := m.store.SaveSession(session); err != nil {
			log.Printf("Failed to persist disconnect for %s: %v", evt.OwnerID, err)
		}

	case whatsapp.EventAuthFailure:
		if session.Status == models.SessionDisconnected || session.Status == models.SessionNone {
			log.Printf("Ignoring auth failure for %s in state %s", evt.OwnerID, session.Status)
			return
		}
		if handle, ok := m.registry.Remove(evt.OwnerID); ok {
			if err := handle.Close(); err != nil {
				log.Printf("Handle close failed for %s: %v", evt.OwnerID, err)
			}
		}
		session.Status = models.SessionError
		session.PairingCode = ""
		if err := m.store.SaveSession(session); err != nil {
			log.Printf("Failed to persist auth failure for %s: %v", evt.OwnerID, err)
		}
		m.sendAlert(evt.OwnerID, evt.Reason)

	default:
		log.Printf("Ignoring unknown provider event %q for %s", evt.Type, evt.OwnerID)
	}
}

// fetchIdentity pulls remote account metadata onto the session row.
// Any failure is non-fatal and leaves the previous values in place.
func (m *SessionManager) fetchIdentity(handle whatsapp.Client, session *models.WaSession) {
	ctx, cancel := context.WithTimeout(context.Background(), identityTimeout)
	defer cancel()

	identity, err := handle.Identity(ctx)
	if err != nil {
		log.Printf("Identity fetch failed for %s: %v", session.OwnerID, err)
		return
	}

	session.RemoteNumber = identity.Number
	session.RemoteName = identity.DisplayName
	session.RemoteAvatarURL = identity.AvatarURL

	// Provider avatar URLs expire; mirror to stable hosting when we can.
	if m.avatars != nil && identity.AvatarURL != "" {
		if mirrored, err := m.avatars.MirrorAvatar(ctx, session.OwnerID, identity.AvatarURL); err != nil {
			log.Printf("Avatar mirror failed for %s: %v", session.OwnerID, err)
		} else {
			session.RemoteAvatarURL = mirrored
		}
	}
}

func (m *SessionManager) sendAlert(ownerID, reason string) {
	if m.emails == nil {
		return
	}
	account, err := m.store.AccountByUsername(ownerID)
	if err != nil || !account.AlertEmails {
		return
	}
	if err := m.emails.SendSessionAlert(account, reason); err != nil {
		log.Printf("Session alert email failed for %s: %v", ownerID, err)
	}
}

func (m *SessionManager) markStatus(ownerID string, status models.SessionStatus) {
	session, err := m.loadOrCreate(ownerID)
	if err != nil {
		log.Printf("Failed to load session row for %s: %v", ownerID, err)
		return
	}
	session.Status = status
	session.PairingCode = ""
	if err := m.store.SaveSession(session); err != nil {
		log.Printf("Failed to persist status %s for %s: %v", status, ownerID, err)
	}
}

func (m *SessionManager) loadOrCreate(ownerID string) (*models.WaSession, error) {
	session, err := m.store.SessionByOwner(ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.WaSession{OwnerID: ownerID, Status: models.SessionNone}, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}
