package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyConnected is returned when an account opens a second session.
var ErrAlreadyConnected = errors.New("account already has an active session")

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// CreationSession is one connected player working on a character.
type CreationSession struct {
	// ID identifies the session for its lifetime.
	ID string

	AccountID int64
	Username  string
	Role      string
	Remote    string
	Started   time.Time

	// DraftID is the draft being edited, empty until one is started or resumed.
	DraftID string

	// Inbox receives notices for this session.
	Inbox *Inbox
}

// Manager tracks every live creation session. An account may hold at most
// one session at a time.
//
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*CreationSession // id → session
	byAccount map[int64]string            // account id → session id
	now       func() time.Time
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		sessions:  make(map[string]*CreationSession),
		byAccount: make(map[int64]string),
		now:       time.Now,
	}
}

// Add registers a session for an authenticated account.
//
// Precondition: accountID > 0; username is non-empty.
// Postcondition: Returns the new session, or ErrAlreadyConnected if the
// account already has one.
func (m *Manager) Add(accountID int64, username, role, remote string) (*CreationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byAccount[accountID]; ok {
		return nil, fmt.Errorf("account %q (session %s): %w", username, id, ErrAlreadyConnected)
	}

	id := uuid.NewString()
	sess := &CreationSession{
		ID:        id,
		AccountID: accountID,
		Username:  username,
		Role:      role,
		Remote:    remote,
		Started:   m.now(),
		Inbox:     NewInbox(id, 16),
	}
	m.sessions[id] = sess
	m.byAccount[accountID] = id
	return sess, nil
}

// Remove ends a session and closes its notice channel.
//
// Postcondition: Returns ErrNotFound if id is unknown.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	sess.Inbox.Close()
	delete(m.byAccount, sess.AccountID)
	delete(m.sessions, id)
	return nil
}

// SetDraft records the draft a session is editing.
func (m *Manager) SetDraft(id, draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	sess.DraftID = draftID
	return nil
}

// Get returns a copy of the session with the given id.
func (m *Manager) Get(id string) (CreationSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return CreationSession{}, false
	}
	return *sess, true
}

// ByAccount returns a copy of the account's session, if any.
func (m *Manager) ByAccount(accountID int64) (CreationSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byAccount[accountID]
	if !ok {
		return CreationSession{}, false
	}
	return *m.sessions[id], true
}

// List returns copies of every session, oldest first.
func (m *Manager) List() []CreationSession {
	m.mu.RLock()
	out := make([]CreationSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Started.Equal(out[j].Started) {
			return out[i].Started.Before(out[j].Started)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Broadcast pushes msg to every session.
//
// Postcondition: Returns the number of sessions that accepted the notice.
func (m *Manager) Broadcast(msg string) int {
	m.mu.RLock()
	inboxes := make([]*Inbox, 0, len(m.sessions))
	for _, s := range m.sessions {
		inboxes = append(inboxes, s.Inbox)
	}
	m.mu.RUnlock()

	delivered := 0
	for _, e := range inboxes {
		if e.Push([]byte(msg)) == nil {
			delivered++
		}
	}
	return delivered
}
