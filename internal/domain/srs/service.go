package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/lernia/review-api/internal/domain"
)

// Common errors
var (
	ErrNilCard        = errors.New("card cannot be nil")
	ErrCardRetired    = errors.New("card is retired")
	ErrInvalidQuality = fmt.Errorf("%w: quality must be between %d and %d",
		domain.ErrValidation, MinQuality, MaxQuality)
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Performance describes a single review outcome as reported by the caller.
type Performance struct {
	Quality   int     `json:"quality"`    // 0..5 recall rating
	TimeSpent float64 `json:"time_spent"` // Seconds spent answering
	Correct   bool    `json:"correct"`
}

// Validate checks the performance payload.
func (p Performance) Validate() error {
	if p.Quality < MinQuality || p.Quality > MaxQuality {
		return ErrInvalidQuality
	}
	if p.TimeSpent < 0 {
		return fmt.Errorf("%w: time spent cannot be negative", domain.ErrValidation)
	}
	return nil
}

// Service defines the interface for scheduling algorithm operations.
// All methods are pure with respect to their inputs: they return updated
// copies and never mutate the card they are given.
type Service interface {
	// Review computes the card's next scheduling state for a review outcome.
	Review(card *domain.Card, perf Performance, now time.Time) (*domain.Card, error)

	// Postpone pushes the next review time forward by a number of days.
	Postpone(card *domain.Card, days int, now time.Time) (*domain.Card, error)

	// Reset restores a card to the new state for deliberate re-learning.
	// Review history and counters are preserved.
	Reset(card *domain.Card, now time.Time) (*domain.Card, error)

	// ShouldRetire reports whether the archival sweep should retire the card.
	ShouldRetire(card *domain.Card, now time.Time) bool
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Review implements the Service interface for processing a review outcome.
func (s *defaultService) Review(
	card *domain.Card,
	perf Performance,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if card.Status.IsTerminal() {
		return nil, ErrCardRetired
	}

	if err := perf.Validate(); err != nil {
		return nil, err
	}

	updated := card.Clone()
	applyReview(updated, perf, now, s.params)

	return updated, nil
}

// Postpone implements the Service interface for postponing reviews.
func (s *defaultService) Postpone(
	card *domain.Card,
	days int,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if card.Status.IsTerminal() {
		return nil, ErrCardRetired
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	updated := card.Clone()
	updated.NextReviewAt = card.NextReviewAt.AddDate(0, 0, days)

	return updated, nil
}

// Reset implements the Service interface for deliberate re-learning.
// This is the only path out of the retired state.
func (s *defaultService) Reset(card *domain.Card, now time.Time) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	updated := card.Clone()
	updated.EaseFactor = domain.DefaultEaseFactor
	updated.Interval = 0
	updated.Repetitions = 0
	updated.Status = domain.CardStatusNew
	updated.NextReviewAt = now

	return updated, nil
}

// ShouldRetire implements the Service interface for the archival policy:
// mastered cards with a long streak that have not been touched within the
// retirement window.
func (s *defaultService) ShouldRetire(card *domain.Card, now time.Time) bool {
	if card == nil || card.Status != domain.CardStatusMastered {
		return false
	}

	if card.Repetitions < s.params.RetireRepetitions {
		return false
	}

	if card.LastReviewedAt == nil {
		return false
	}

	return now.Sub(*card.LastReviewedAt) > s.params.RetireAfter
}
