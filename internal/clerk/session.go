package clerk

import (
	"sync"

	"github.com/zulandar/shopclerk/internal/catalog"
)

// State is a conversation step. The state machine only ever advances
// Idle → AwaitingName → AwaitingPhone → Idle.
type State int

const (
	// StateIdle is the initial and terminal state: no order in progress.
	StateIdle State = iota
	// StateAwaitingName means a product is selected and the bot is
	// waiting for the customer's name.
	StateAwaitingName
	// StateAwaitingPhone means name is collected and the bot is waiting
	// for the customer's phone number.
	StateAwaitingPhone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingPhone:
		return "awaiting_phone"
	default:
		return "unknown"
	}
}

// Session is one user's conversation progress and partially collected
// order fields. Invariants: Selected is non-nil whenever State != Idle;
// CustomerName is only set in StateAwaitingPhone. Sessions are mutated
// exclusively under the per-session lock held by SessionStore.With.
type Session struct {
	mu sync.Mutex

	UserID       string
	State        State
	Selected     *catalog.Product
	CustomerName string
}

// Reset returns the session to Idle and clears all accumulated fields.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Selected = nil
	s.CustomerName = ""
}

// SessionStore holds one Session per user, created lazily on a user's
// first message. Different users' sessions are independent; a given
// user's messages are serialized by the session lock.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// get returns the session for userID, creating it in StateIdle if the
// user has never been seen.
func (ss *SessionStore) get(userID string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		ss.sessions[userID] = sess
	}
	return sess
}

// With runs fn with the user's session under its lock. No two in-flight
// messages from the same user interleave their state transitions;
// different users proceed concurrently.
func (ss *SessionStore) With(userID string, fn func(*Session)) {
	sess := ss.get(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

// Snapshot returns the user's current state without creating a session.
// Used by tests and diagnostics.
func (ss *SessionStore) Snapshot(userID string) (State, bool) {
	ss.mu.Lock()
	sess, ok := ss.sessions[userID]
	ss.mu.Unlock()
	if !ok {
		return StateIdle, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.State, true
}
