// Package memory contains in-memory store implementations. The session
// store here is the default backend for single-process deployments and for
// tests; it honors the same TTL semantics as the Redis-backed store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/store"
)

// DefaultSessionTTL bounds how long an unfinished session survives.
const DefaultSessionTTL = 2 * time.Hour

type sessionEntry struct {
	session   *domain.ReviewSession
	expiresAt time.Time
}

// SessionStore is an in-memory, TTL-bounded store.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[uuid.UUID]sessionEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewSessionStore creates a session store with the given TTL.
// A non-positive TTL falls back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]sessionEntry),
		now:      time.Now,
	}
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// Save implements store.SessionStore.Save
// Each save refreshes the session's TTL.
func (s *SessionStore) Save(_ context.Context, session *domain.ReviewSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stored copy is detached from the caller's instance.
	clone := *session
	clone.CardIDs = append([]uuid.UUID(nil), session.CardIDs...)
	clone.Results = append([]domain.SessionReviewResult(nil), session.Results...)

	s.sessions[session.ID] = sessionEntry{
		session:   &clone,
		expiresAt: s.now().Add(s.ttl),
	}

	s.sweepLocked()
	return nil
}

// Get implements store.SessionStore.Get
func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, store.ErrSessionNotFound
	}

	clone := *entry.session
	clone.CardIDs = append([]uuid.UUID(nil), entry.session.CardIDs...)
	clone.Results = append([]domain.SessionReviewResult(nil), entry.session.Results...)
	return &clone, nil
}

// Delete implements store.SessionStore.Delete
func (s *SessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// sweepLocked drops expired entries. Called with the write lock held, on
// every save, so orphaned sessions cannot accumulate unbounded.
func (s *SessionStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
