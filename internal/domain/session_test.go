package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestSession(t *testing.T, cardCount int) *ReviewSession {
	t.Helper()

	cardIDs := make([]uuid.UUID, cardCount)
	for i := range cardIDs {
		cardIDs[i] = uuid.New()
	}

	session, err := NewReviewSession(uuid.New(), "math", cardIDs, 1, time.Now().UTC())
	if err != nil {
		t.Fatalf("Expected no error creating session, got %v", err)
	}
	return session
}

func TestNewReviewSession(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, 3)

	if session.Status != SessionStatusInProgress {
		t.Errorf("Expected status %s, got %s", SessionStatusInProgress, session.Status)
	}

	if session.CompletedCards != 0 {
		t.Errorf("Expected zero completed cards, got %d", session.CompletedCards)
	}

	// A session needs at least one card.
	_, err := NewReviewSession(uuid.New(), "", nil, 0, time.Now().UTC())
	if !errors.Is(err, ErrEmptySessionCards) {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionCards, err)
	}

	_, err = NewReviewSession(uuid.Nil, "", []uuid.UUID{uuid.New()}, 0, time.Now().UTC())
	if !errors.Is(err, ErrEmptySessionStudentID) {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionStudentID, err)
	}
}

func TestSessionRecordResult(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, 2)
	now := time.Now().UTC()

	err := session.RecordResult(SessionReviewResult{
		CardID:     session.CardIDs[0],
		Quality:    4,
		Correct:    true,
		ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.CompletedCards != 1 {
		t.Errorf("Expected 1 completed card, got %d", session.CompletedCards)
	}

	if session.IsComplete() {
		t.Error("Expected session not yet complete")
	}

	// A card outside the session is rejected.
	err = session.RecordResult(SessionReviewResult{CardID: uuid.New()})
	if !errors.Is(err, ErrCardNotInSession) {
		t.Errorf("Expected error %v, got %v", ErrCardNotInSession, err)
	}

	err = session.RecordResult(SessionReviewResult{
		CardID:     session.CardIDs[1],
		Quality:    2,
		Correct:    false,
		ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !session.IsComplete() {
		t.Error("Expected session complete after answering every card")
	}
}

func TestSessionComplete(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, 4)
	start := session.StartedAt

	qualities := []int{5, 4, 2, 5}
	for i, q := range qualities {
		err := session.RecordResult(SessionReviewResult{
			CardID:     session.CardIDs[i],
			Quality:    q,
			Correct:    q >= 3,
			ReviewedAt: start.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Expected no error recording result, got %v", err)
		}
	}

	stats, err := session.Complete(start.Add(8 * time.Minute))
	if err != nil {
		t.Fatalf("Expected no error completing session, got %v", err)
	}

	if stats.TotalCards != 4 || stats.CompletedCards != 4 {
		t.Errorf("Expected 4/4 cards, got %d/%d", stats.CompletedCards, stats.TotalCards)
	}

	if stats.Correct != 3 {
		t.Errorf("Expected 3 correct, got %d", stats.Correct)
	}

	if math.Abs(stats.Accuracy-0.75) > 1e-9 {
		t.Errorf("Expected accuracy 0.75, got %v", stats.Accuracy)
	}

	if math.Abs(stats.AverageQuality-4.0) > 1e-9 {
		t.Errorf("Expected average quality 4.0, got %v", stats.AverageQuality)
	}

	if math.Abs(stats.DurationMinutes-8.0) > 1e-9 {
		t.Errorf("Expected duration 8 minutes, got %v", stats.DurationMinutes)
	}

	if math.Abs(stats.CardsPerMinute-0.5) > 1e-9 {
		t.Errorf("Expected 0.5 cards per minute, got %v", stats.CardsPerMinute)
	}

	if session.Status != SessionStatusCompleted {
		t.Errorf("Expected status %s, got %s", SessionStatusCompleted, session.Status)
	}

	// Completing twice is an invalid-state error.
	_, err = session.Complete(start.Add(9 * time.Minute))
	if !errors.Is(err, ErrSessionNotInProgress) {
		t.Errorf("Expected error %v, got %v", ErrSessionNotInProgress, err)
	}

	// So is recording another result.
	err = session.RecordResult(SessionReviewResult{CardID: session.CardIDs[0]})
	if !errors.Is(err, ErrSessionNotInProgress) {
		t.Errorf("Expected error %v, got %v", ErrSessionNotInProgress, err)
	}
}

func TestSessionAbandon(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, 2)
	now := time.Now().UTC()

	if err := session.Abandon(now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.Status != SessionStatusAbandoned {
		t.Errorf("Expected status %s, got %s", SessionStatusAbandoned, session.Status)
	}

	if err := session.Abandon(now); !errors.Is(err, ErrSessionNotInProgress) {
		t.Errorf("Expected error %v, got %v", ErrSessionNotInProgress, err)
	}
}
