package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a review session.
type SessionStatus string

// Possible session status values.
const (
	SessionStatusInProgress SessionStatus = "in-progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// IsValid reports whether the status is one of the recognized values.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	default:
		return false
	}
}

// Common validation errors for ReviewSession.
var (
	ErrEmptySessionID        = errors.New("session ID cannot be empty")
	ErrEmptySessionStudentID = errors.New("session student ID cannot be empty")
	ErrEmptySessionCards     = errors.New("session must contain at least one card")
	ErrCardNotInSession      = errors.New("card is not part of this session")
	ErrSessionNotInProgress  = errors.New("session is not in progress")
)

// SessionReviewResult records the outcome of one answered card within a session.
type SessionReviewResult struct {
	CardID     uuid.UUID `json:"card_id"`
	Quality    int       `json:"quality"`
	TimeSpent  float64   `json:"time_spent"` // Seconds
	Correct    bool      `json:"correct"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// SessionStats are the aggregate statistics computed when a session completes.
type SessionStats struct {
	TotalCards      int     `json:"total_cards"`
	CompletedCards  int     `json:"completed_cards"`
	Correct         int     `json:"correct"`
	Accuracy        float64 `json:"accuracy"`         // Correct / answered, 0 when nothing answered
	AverageQuality  float64 `json:"average_quality"`  // Mean of 0..5 ratings
	DurationMinutes float64 `json:"duration_minutes"`
	CardsPerMinute  float64 `json:"cards_per_minute"`
}

// ReviewSession is an ephemeral aggregate covering one bounded review
// sitting. It exists only between start and completion; the session store
// expires abandoned sessions after their TTL.
type ReviewSession struct {
	ID             uuid.UUID             `json:"id"`
	StudentID      uuid.UUID             `json:"student_id"`
	Subject        string                `json:"subject,omitempty"` // Optional subject filter
	CardIDs        []uuid.UUID           `json:"card_ids"`          // Selection order is review order
	NewCards       int                   `json:"new_cards"`         // Count of new-status cards selected
	CompletedCards int                   `json:"completed_cards"`
	Results        []SessionReviewResult `json:"results,omitempty"`
	Status         SessionStatus         `json:"status"`
	StartedAt      time.Time             `json:"started_at"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	Stats          *SessionStats         `json:"stats,omitempty"`
}

// NewReviewSession creates an in-progress session over the given cards.
// The card order is the order the student reviews them in.
func NewReviewSession(
	studentID uuid.UUID,
	subject string,
	cardIDs []uuid.UUID,
	newCards int,
	now time.Time,
) (*ReviewSession, error) {
	session := &ReviewSession{
		ID:        uuid.New(),
		StudentID: studentID,
		Subject:   subject,
		CardIDs:   cardIDs,
		NewCards:  newCards,
		Status:    SessionStatusInProgress,
		StartedAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the ReviewSession has valid data.
func (s *ReviewSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.StudentID == uuid.Nil {
		return ErrEmptySessionStudentID
	}

	if len(s.CardIDs) == 0 {
		return ErrEmptySessionCards
	}

	if !s.Status.IsValid() {
		return ErrInvalidSessionStatus
	}

	return nil
}

// ContainsCard reports whether the card is part of this session.
func (s *ReviewSession) ContainsCard(cardID uuid.UUID) bool {
	for _, id := range s.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

// RecordResult appends an answered-card result and advances the completed
// count. Returns ErrSessionNotInProgress if the session is already closed
// and ErrCardNotInSession if the card was not selected for this session.
func (s *ReviewSession) RecordResult(result SessionReviewResult) error {
	if s.Status != SessionStatusInProgress {
		return ErrSessionNotInProgress
	}

	if !s.ContainsCard(result.CardID) {
		return ErrCardNotInSession
	}

	s.Results = append(s.Results, result)
	s.CompletedCards++
	return nil
}

// IsComplete reports whether every selected card has been answered.
func (s *ReviewSession) IsComplete() bool {
	return s.CompletedCards >= len(s.CardIDs)
}

// Complete transitions the session to completed and computes its closing
// statistics. Returns ErrSessionNotInProgress if the session is already
// completed or abandoned.
func (s *ReviewSession) Complete(now time.Time) (*SessionStats, error) {
	if s.Status != SessionStatusInProgress {
		return nil, ErrSessionNotInProgress
	}

	stats := &SessionStats{
		TotalCards:     len(s.CardIDs),
		CompletedCards: s.CompletedCards,
	}

	var qualitySum int
	for _, r := range s.Results {
		if r.Correct {
			stats.Correct++
		}
		qualitySum += r.Quality
	}

	if answered := len(s.Results); answered > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(answered)
		stats.AverageQuality = float64(qualitySum) / float64(answered)
	}

	duration := now.Sub(s.StartedAt)
	stats.DurationMinutes = duration.Minutes()
	if stats.DurationMinutes > 0 {
		stats.CardsPerMinute = float64(s.CompletedCards) / stats.DurationMinutes
	}

	s.Status = SessionStatusCompleted
	s.CompletedAt = &now
	s.Stats = stats
	return stats, nil
}

// Abandon closes the session without computing statistics. Used for the
// explicit cancel path; expired sessions are dropped by the store instead.
func (s *ReviewSession) Abandon(now time.Time) error {
	if s.Status != SessionStatusInProgress {
		return ErrSessionNotInProgress
	}

	s.Status = SessionStatusAbandoned
	s.CompletedAt = &now
	return nil
}
