package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"remindme/internal/models"
	"remindme/internal/store"
	"remindme/internal/whatsapp"
)

// fakeStore is an in-memory Store for exercising the scheduler and the
// session manager without a database
type fakeStore struct {
	mu         sync.Mutex
	reminders  map[string]*models.Reminder
	accounts   map[string]*models.Account
	sessions   map[string]*models.WaSession
	deliveries []models.DeliveryRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reminders: make(map[string]*models.Reminder),
		accounts:  make(map[string]*models.Account),
		sessions:  make(map[string]*models.WaSession),
	}
}

func (s *fakeStore) addReminder(r models.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := r
	s.reminders[r.ID] = &copied
}

func (s *fakeStore) addAccount(a models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := a
	s.accounts[a.Username] = &copied
}

func (s *fakeStore) reminder(id string) models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reminders[id]
}

func (s *fakeStore) session(ownerID string) models.WaSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[ownerID]; ok {
		return *sess
	}
	return models.WaSession{OwnerID: ownerID, Status: models.SessionNone}
}

func (s *fakeStore) records() []models.DeliveryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DeliveryRecord, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

func (s *fakeStore) DueReminders(now time.Time) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.Reminder
	for _, r := range s.reminders {
		if !r.Completed && !r.NextTriggerAt.After(now) {
			due = append(due, *r)
		}
	}
	return due, nil
}

func (s *fakeStore) UpdateReminderSchedule(id string, notifiedAt time.Time, nextTriggerAt time.Time, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return fmt.Errorf("reminder %s not found", id)
	}
	at := notifiedAt
	r.LastNotifiedAt = &at
	r.NextTriggerAt = nextTriggerAt
	r.Completed = completed
	return nil
}

func (s *fakeStore) AppendDelivery(rec *models.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uint(len(s.deliveries) + 1)
	s.deliveries = append(s.deliveries, *rec)
	return nil
}

func (s *fakeStore) AccountByUsername(username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeStore) SessionByOwner(ownerID string) (*models.WaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[ownerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *fakeStore) SaveSession(session *models.WaSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.ID == 0 {
		session.ID = uint(len(s.sessions) + 1)
	}
	copied := *session
	s.sessions[session.OwnerID] = &copied
	return nil
}

func (s *fakeStore) ActiveSessions() ([]models.WaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []models.WaSession
	for _, sess := range s.sessions {
		switch sess.Status {
		case models.SessionConnecting, models.SessionCodePending, models.SessionReady:
			active = append(active, *sess)
		}
	}
	return active, nil
}

// fakeClient is an in-memory transport handle
type fakeClient struct {
	mu         sync.Mutex
	state      whatsapp.State
	sent       []sentMessage
	sendErr    error
	connectErr error
	closed     bool
	loggedOut  bool
	identity   *whatsapp.Identity
	identErr   error
}

type sentMessage struct {
	destination string
	text        string
}

func newFakeClient() *fakeClient {
	return &fakeClient{state: whatsapp.StateDisconnected}
}

func (c *fakeClient) Connect(ctx context.Context) error {
	if c.connectErr != nil {
		return c.connectErr
	}
	c.mu.Lock()
	if c.state == whatsapp.StateDisconnected {
		c.state = whatsapp.StateConnecting
	}
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) Send(ctx context.Context, destination, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentMessage{destination: destination, text: text})
	return nil
}

func (c *fakeClient) State() whatsapp.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeClient) SetState(s whatsapp.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *fakeClient) Identity(ctx context.Context) (*whatsapp.Identity, error) {
	if c.identErr != nil {
		return nil, c.identErr
	}
	if c.identity == nil {
		return &whatsapp.Identity{}, nil
	}
	return c.identity, nil
}

func (c *fakeClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.loggedOut = true
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.state = whatsapp.StateDisconnected
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) sentMessages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

// fakeProvider hands out fakeClients and counts how many were created
type fakeProvider struct {
	mu      sync.Mutex
	created int
	clients map[string]*fakeClient
	next    *fakeClient // used for the next NewClient call, if set
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{clients: make(map[string]*fakeClient)}
}

func (p *fakeProvider) NewClient(ownerID string) whatsapp.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	client := p.next
	if client == nil {
		client = newFakeClient()
	}
	p.next = nil
	p.clients[ownerID] = client
	return client
}

func (p *fakeProvider) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
