package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
)

// DueQuery describes a due-card lookup for one student.
type DueQuery struct {
	StudentID uuid.UUID
	Subject   string // Empty means all subjects
	Now       time.Time
	Limit     int // Zero means no limit
}

// DueSummary is the forward-looking view returned after a session: how many
// cards are still due and when the next one becomes due.
type DueSummary struct {
	DueCount  int
	NextDueAt *time.Time // Nil when the student has no schedulable cards
}

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Create saves a new card. It handles domain validation internally.
	// Returns ErrDuplicate if a card with the same ID already exists.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card with a row-level lock using SELECT FOR
	// UPDATE. Use within a transaction when the card will be saved back, so
	// two concurrent reviews cannot race on the same scheduling fields.
	// Returns ErrCardNotFound if the card does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Save persists the full state of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Save(ctx context.Context, card *domain.Card) error

	// ListByStudent returns every card for a student, optionally filtered
	// by subject. Order is unspecified.
	ListByStudent(ctx context.Context, studentID uuid.UUID, subject string) ([]*domain.Card, error)

	// ListDue returns cards eligible for review: not retired and scheduled
	// at or before query.Now, ordered by next review time ascending and
	// truncated to query.Limit. Final urgency ordering, including status
	// tie-breaks, is the due selector's job.
	ListDue(ctx context.Context, query DueQuery) ([]*domain.Card, error)

	// DueSummary reports how many cards are currently due for the student
	// and the earliest upcoming review time across schedulable cards.
	DueSummary(ctx context.Context, studentID uuid.UUID, subject string, now time.Time) (*DueSummary, error)

	// ListRetireCandidates returns mastered cards with at least
	// minRepetitions whose last review is older than reviewedBefore.
	// Used by the archival sweep.
	ListRetireCandidates(ctx context.Context, reviewedBefore time.Time, minRepetitions int) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
