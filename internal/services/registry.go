package services

import (
	"sync"

	"remindme/internal/whatsapp"
)

// SessionRegistry maps owner IDs to live transport handles. It is valid
// only for the lifetime of the process; after a restart it starts empty
// and the reconnection pass repopulates it. Reads come from the
// scheduler tick, writes from lifecycle transitions, so access is
// guarded by a single RWMutex.
type SessionRegistry struct {
	mu      sync.RWMutex
	handles map[string]whatsapp.Client
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{handles: make(map[string]whatsapp.Client)}
}

// Get returns the live handle for an owner, if any. No I/O, never blocks.
func (r *SessionRegistry) Get(ownerID string) (whatsapp.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[ownerID]
	return handle, ok
}

// Register stores a handle for an owner, replacing any existing one
func (r *SessionRegistry) Register(ownerID string, handle whatsapp.Client) {
	r.mu.Lock()
	r.handles[ownerID] = handle
	r.mu.Unlock()
}

// Remove unregisters and returns the handle so the caller can close it
// after it is no longer reachable for new operations
func (r *SessionRegistry) Remove(ownerID string) (whatsapp.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.handles[ownerID]
	if ok {
		delete(r.handles, ownerID)
	}
	return handle, ok
}

// Len returns the number of registered handles
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
