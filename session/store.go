// Package session implements the session lifecycle state machine and an
// in-memory store of live sessions keyed by id.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Aganium/agenium-go/core"
)

// State is a session lifecycle state.
type State string

const (
	Initiating State = "initiating"
	Handshake  State = "handshake"
	Active     State = "active"
	Suspended  State = "suspended"
	Resuming   State = "resuming"
	Closing    State = "closing"
	Closed     State = "closed"
	Errored    State = "error"
)

// validTransitions lists every permitted state change. Errored is reachable
// from any non-terminal state; Closed and Errored are terminal.
var validTransitions = map[State][]State{
	Initiating: {Handshake, Errored},
	Handshake:  {Active, Errored},
	Active:     {Suspended, Closing, Errored},
	Suspended:  {Resuming, Errored},
	Resuming:   {Active, Errored},
	Closing:    {Closed},
	Closed:     {},
	Errored:    {},
}

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// CanTransition reports whether s -> to is a permitted transition.
func (s State) CanTransition(to State) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is a logical conversation between two agents, independent of any
// transport connection. Values handed out by the Store are copies; the
// store's own records change only through Transition and Close.
type Session struct {
	ID        string         `json:"id"`
	Local     core.AgentID   `json:"local"`
	Remote    core.AgentID   `json:"remote"`
	State     State          `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// snapshot returns a detached copy of the record. The Metadata map is
// cloned so callers never alias store-owned state.
func (sess *Session) snapshot() Session {
	out := *sess
	if sess.Metadata != nil {
		out.Metadata = make(map[string]any, len(sess.Metadata))
		for k, v := range sess.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

var (
	// ErrNotFound is returned when no live session has the given id.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidTransition is returned on a state change the lifecycle
	// does not permit. This is a caller bug, not a recoverable condition.
	ErrInvalidTransition = errors.New("invalid session state transition")
)

// Store owns the live session set. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create allocates a new session in the Initiating state.
func (s *Store) Create(local, remote core.AgentID) Session {
	now := time.Now()
	sess := &Session{
		ID:        core.GenerateID(),
		Local:     local,
		Remote:    remote,
		State:     Initiating,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]any{},
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess.snapshot()
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.snapshot(), true
}

// Transition moves the session to the given state, enforcing the lifecycle
// table. The updated session is returned on success.
func (s *Store) Transition(id string, to State) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !sess.State.CanTransition(to) {
		return Session{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.State, to)
	}
	sess.State = to
	sess.UpdatedAt = time.Now()
	return sess.snapshot(), nil
}

// Close drives the session through Closing to Closed and removes it from
// the live set. The returned copy remains readable by the caller.
func (s *Store) Close(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.State != Closing {
		if !sess.State.CanTransition(Closing) {
			return Session{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.State, Closing)
		}
		sess.State = Closing
	}
	sess.State = Closed
	sess.UpdatedAt = time.Now()
	delete(s.sessions, id)
	return sess.snapshot(), nil
}

// Fail marks the session Errored and keeps it in the store for inspection.
func (s *Store) Fail(id string) (Session, error) {
	return s.Transition(id, Errored)
}

// List returns copies of every live session.
func (s *Store) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.snapshot())
	}
	return out
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown force-closes every live session and empties the store. This is
// bulk teardown: states are set to Closed directly, bypassing per-session
// transition validation. The closed sessions are returned.
func (s *Store) Shutdown() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	out := make([]Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sess.State = Closed
		sess.UpdatedAt = now
		out = append(out, sess.snapshot())
		delete(s.sessions, id)
	}
	return out
}

// SetMetadata stores a metadata key on a live session.
func (s *Store) SetMetadata(id, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.Metadata == nil {
		sess.Metadata = map[string]any{}
	}
	sess.Metadata[key] = value
	sess.UpdatedAt = time.Now()
	return nil
}
