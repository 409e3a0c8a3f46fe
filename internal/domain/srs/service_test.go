package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
)

func newReviewCard(t *testing.T, now time.Time) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), "topic", "math", 4, "q-10", 5, now)
	if err != nil {
		t.Fatalf("Expected no error creating card, got %v", err)
	}
	return card
}

func TestReviewValidation(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	card := newReviewCard(t, now)

	// Nil card is rejected.
	if _, err := svc.Review(nil, Performance{Quality: 3}, now); !errors.Is(err, ErrNilCard) {
		t.Errorf("Expected error %v, got %v", ErrNilCard, err)
	}

	// Quality outside 0..5 is a validation error.
	for _, q := range []int{-1, 6, 42} {
		_, err := svc.Review(card, Performance{Quality: q}, now)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality %d: expected error %v, got %v", q, ErrInvalidQuality, err)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("quality %d: expected error to wrap %v", q, domain.ErrValidation)
		}
	}

	// Negative time spent is a validation error.
	_, err := svc.Review(card, Performance{Quality: 3, TimeSpent: -1}, now)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}

	// Retired cards are never reviewed.
	retired := newReviewCard(t, now)
	retired.Status = domain.CardStatusRetired
	if _, err := svc.Review(retired, Performance{Quality: 4}, now); !errors.Is(err, ErrCardRetired) {
		t.Errorf("Expected error %v, got %v", ErrCardRetired, err)
	}
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	card := newReviewCard(t, now)

	updated, err := svc.Review(card, Performance{Quality: 5, Correct: true}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.Repetitions != 0 || card.TotalReviews != 0 || len(card.ReviewHistory) != 0 {
		t.Error("Expected original card to be untouched")
	}

	if updated.Repetitions != 1 || updated.TotalReviews != 1 {
		t.Errorf("Expected updated copy to carry the review, got reps=%d total=%d",
			updated.Repetitions, updated.TotalReviews)
	}
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	card := newReviewCard(t, now)
	card.NextReviewAt = now

	updated, err := svc.Postpone(card, 3, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if want := now.AddDate(0, 0, 3); !updated.NextReviewAt.Equal(want) {
		t.Errorf("Expected next review %v, got %v", want, updated.NextReviewAt)
	}

	if _, err := svc.Postpone(card, 0, now); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("Expected error %v, got %v", ErrInvalidDays, err)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	card := newReviewCard(t, now.Add(-90*24*time.Hour))
	card.Status = domain.CardStatusRetired
	card.EaseFactor = 1.7
	card.Interval = 120
	card.Repetitions = 9
	card.TotalReviews = 15
	card.SuccessfulReviews = 12
	card.ReviewHistory = []domain.ReviewRecord{{Quality: 5, Correct: true}}

	updated, err := svc.Reset(card, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.EaseFactor != domain.DefaultEaseFactor {
		t.Errorf("Expected ease factor restored to %v, got %v",
			domain.DefaultEaseFactor, updated.EaseFactor)
	}

	if updated.Interval != 0 || updated.Repetitions != 0 {
		t.Errorf("Expected interval and repetitions reset, got %d/%d",
			updated.Interval, updated.Repetitions)
	}

	if updated.Status != domain.CardStatusNew {
		t.Errorf("Expected status new, got %s", updated.Status)
	}

	if !updated.NextReviewAt.Equal(now) {
		t.Errorf("Expected card due immediately, got %v", updated.NextReviewAt)
	}

	// Reset keeps history and counters.
	if updated.TotalReviews != 15 || updated.SuccessfulReviews != 12 {
		t.Error("Expected counters preserved across reset")
	}
	if len(updated.ReviewHistory) != 1 {
		t.Error("Expected review history preserved across reset")
	}
}

func TestShouldRetire(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	old := now.Add(-200 * 24 * time.Hour)
	recent := now.Add(-30 * 24 * time.Hour)

	testCases := []struct {
		name     string
		status   domain.CardStatus
		reps     int
		last     *time.Time
		expected bool
	}{
		{
			name:     "mastered, long streak, stale",
			status:   domain.CardStatusMastered,
			reps:     8,
			last:     &old,
			expected: true,
		},
		{
			name:     "mastered but short streak is left alone regardless of age",
			status:   domain.CardStatusMastered,
			reps:     5,
			last:     &old,
			expected: false,
		},
		{
			name:     "mastered but recently reviewed",
			status:   domain.CardStatusMastered,
			reps:     10,
			last:     &recent,
			expected: false,
		},
		{
			name:     "not mastered",
			status:   domain.CardStatusReview,
			reps:     12,
			last:     &old,
			expected: false,
		},
		{
			name:     "never reviewed",
			status:   domain.CardStatusMastered,
			reps:     8,
			last:     nil,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := &domain.Card{
				Status:         tc.status,
				Repetitions:    tc.reps,
				LastReviewedAt: tc.last,
			}

			if got := svc.ShouldRetire(card, now); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}
