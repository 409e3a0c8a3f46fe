package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
)

// SessionStore defines the interface for review session persistence.
// Sessions are ephemeral: implementations carry a time-to-live and drop
// sessions that are never completed, so orphans cannot accumulate.
type SessionStore interface {
	// Save stores or replaces a session and refreshes its TTL.
	Save(ctx context.Context, session *domain.ReviewSession) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session does not exist or has expired.
	Get(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
