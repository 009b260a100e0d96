package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is a process-local SessionStore used when no Redis address is
// configured. Sessions expire ttl after their last write.
type MemoryStore struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu       sync.Mutex
	sessions map[string]*memorySession
}

type memorySession struct {
	slots   map[string]string
	expires time.Time
}

// NewMemoryStore creates an empty store. A nil clock means real time.
func NewMemoryStore(ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{ttl: ttl, clock: clock, sessions: make(map[string]*memorySession)}
}

// Get reads one slot.
func (s *MemoryStore) Get(_ context.Context, session, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(session)
	if !ok {
		return "", false, nil
	}
	v, ok := sess.slots[key]
	return v, ok, nil
}

// Set writes one slot and refreshes the session's expiry.
func (s *MemoryStore) Set(_ context.Context, session, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(session)
	if !ok {
		sess = &memorySession{slots: make(map[string]string)}
		s.sessions[session] = sess
	}
	sess.slots[key] = value
	sess.expires = s.clock.Now().Add(s.ttl)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close drops every session.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
	return nil
}

// live returns the session unless it has expired, dropping expired ones.
// Callers hold mu.
func (s *MemoryStore) live(session string) (*memorySession, bool) {
	sess, ok := s.sessions[session]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !s.clock.Now().Before(sess.expires) {
		delete(s.sessions, session)
		return nil, false
	}
	return sess, true
}
