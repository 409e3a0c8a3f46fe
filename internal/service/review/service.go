// Package review implements the scheduling engine's service layer: the due
// selector, the session life cycle, and the archival sweep. It orchestrates
// the srs algorithm against the card and session stores.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/store"
)

// Common error types for the review service.
var (
	// ErrNoCardsDue indicates that the student has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrSessionNotFound indicates that the session does not exist or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCardNotInSession indicates the card is not part of the session.
	ErrCardNotInSession = errors.New("card is not part of this session")

	// ErrSessionClosed indicates the session was already completed or abandoned.
	ErrSessionClosed = errors.New("session is already closed")

	// ErrInvalidOptions indicates malformed session options.
	ErrInvalidOptions = errors.New("invalid session options")
)

// CreateCardParams carries the fields needed to start tracking a concept
// for a student.
type CreateCardParams struct {
	StudentID   uuid.UUID
	TopicID     string
	Subject     string
	GradeLevel  int
	QuestionRef string
	Difficulty  int
}

// SessionOptions bound a review session's size.
type SessionOptions struct {
	TargetCards int
	MaxNewCards int
}

// Validate checks the session options.
func (o SessionOptions) Validate() error {
	if o.TargetCards < 1 {
		return fmt.Errorf("%w: target cards must be at least 1", ErrInvalidOptions)
	}
	if o.MaxNewCards < 0 {
		return fmt.Errorf("%w: max new cards cannot be negative", ErrInvalidOptions)
	}
	return nil
}

// StartedSession is the result of opening a session: the session aggregate
// plus the full cards in review order.
type StartedSession struct {
	Session *domain.ReviewSession
	Cards   []*domain.Card
}

// SessionReviewOutcome is the result of answering one card in a session.
type SessionReviewOutcome struct {
	Card       *domain.Card
	IsComplete bool // Whether every card in the session is now answered
}

// SessionSummary is the result of completing a session: the closing
// statistics plus the forward-looking due summary.
type SessionSummary struct {
	Stats       *domain.SessionStats
	NextSession *store.DueSummary
}

// Service provides the full review surface: card lifecycle, single-card
// reviews, due selection, bounded sessions, and the archival sweep.
type Service interface {
	// CreateCard starts tracking a concept the student was just exposed to.
	CreateCard(ctx context.Context, params CreateCardParams) (*domain.Card, error)

	// GetCard retrieves a card by ID.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// DueCards returns the student's due cards ordered by urgency: most
	// overdue first, new cards winning exact ties. Retired cards never
	// appear. On storage read failure the result degrades to an empty
	// set with a logged warning.
	DueCards(ctx context.Context, studentID uuid.UUID, subject string, limit int) ([]*domain.Card, error)

	// ReviewCard applies a review outcome to a single card outside any
	// session and persists the new schedule.
	ReviewCard(ctx context.Context, cardID uuid.UUID, perf srs.Performance) (*domain.Card, error)

	// PostponeCard pushes a card's next review forward by days.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)

	// ResetCard restores a card to the new state for deliberate re-learning.
	ResetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// StartSession composes a bounded session from the student's due cards.
	// Returns ErrNoCardsDue when nothing is due.
	StartSession(ctx context.Context, studentID uuid.UUID, subject string, opts SessionOptions) (*StartedSession, error)

	// ReviewCardInSession applies a review outcome to a card within a
	// session, records the session-scoped result, and reports whether the
	// session is now fully answered.
	ReviewCardInSession(ctx context.Context, sessionID, cardID uuid.UUID, perf srs.Performance) (*SessionReviewOutcome, error)

	// CompleteSession closes a session and computes its statistics.
	CompleteSession(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error)

	// AbandonSession explicitly cancels an in-progress session.
	AbandonSession(ctx context.Context, sessionID uuid.UUID) error

	// RetireStaleCards runs the archival sweep and returns how many cards
	// were retired. Invoked out-of-band by the task scheduler.
	RetireStaleCards(ctx context.Context) (int, error)
}

// Clock supplies the current time. Injectable for tests.
type Clock func() time.Time

// ServiceError wraps errors from the review service with additional context.
// Consumers differentiate error kinds with errors.Is/errors.As rather than
// string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError creates a ServiceError for the given operation.
func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
