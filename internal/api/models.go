package api

import (
	"time"

	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/service/review"
	"github.com/lernia/review-api/internal/store"
)

// CreateCardRequest is the body for POST /cards.
type CreateCardRequest struct {
	StudentID   string `json:"student_id"   validate:"required,uuid"`
	TopicID     string `json:"topic_id"`
	Subject     string `json:"subject"      validate:"required"`
	GradeLevel  int    `json:"grade_level"  validate:"min=0,max=12"`
	QuestionRef string `json:"question_ref" validate:"required"`
	Difficulty  int    `json:"difficulty"   validate:"min=1,max=10"`
}

// ReviewRequest is the body for submitting one review outcome. Quality can
// be given directly, or left out and derived from correctness, confidence,
// and timing.
type ReviewRequest struct {
	Quality      *int    `json:"quality,omitempty"      validate:"omitempty,min=0,max=5"`
	Correct      bool    `json:"correct"`
	Confidence   float64 `json:"confidence"             validate:"min=0,max=1"`
	TimeSpent    float64 `json:"time_spent"             validate:"min=0"`
	ExpectedTime float64 `json:"expected_time"          validate:"min=0"`
}

// Performance resolves the request into the quality rating the scheduler
// consumes.
func (r ReviewRequest) Performance() srs.Performance {
	quality := srs.DeriveQuality(r.Correct, r.Confidence, r.TimeSpent, r.ExpectedTime)
	if r.Quality != nil {
		quality = *r.Quality
	}
	return srs.Performance{
		Quality:   quality,
		TimeSpent: r.TimeSpent,
		Correct:   r.Correct,
	}
}

// PostponeRequest is the body for POST /cards/{id}/postpone.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// StartSessionRequest is the body for POST /sessions.
type StartSessionRequest struct {
	StudentID   string `json:"student_id"    validate:"required,uuid"`
	Subject     string `json:"subject"`
	TargetCards int    `json:"target_cards"  validate:"required,min=1,max=100"`
	MaxNewCards int    `json:"max_new_cards" validate:"min=0"`
}

// CardResponse is the client-facing view of a card.
type CardResponse struct {
	ID                string     `json:"id"`
	StudentID         string     `json:"student_id"`
	TopicID           string     `json:"topic_id,omitempty"`
	Subject           string     `json:"subject"`
	GradeLevel        int        `json:"grade_level"`
	QuestionRef       string     `json:"question_ref"`
	Difficulty        int        `json:"difficulty"`
	EaseFactor        float64    `json:"ease_factor"`
	Interval          int        `json:"interval"`
	Repetitions       int        `json:"repetitions"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt      time.Time  `json:"next_review_at"`
	TotalReviews      int        `json:"total_reviews"`
	SuccessfulReviews int        `json:"successful_reviews"`
}

// SessionResponse is the client-facing view of a session and its cards.
type SessionResponse struct {
	ID             string         `json:"id"`
	StudentID      string         `json:"student_id"`
	Subject        string         `json:"subject,omitempty"`
	Status         string         `json:"status"`
	NewCards       int            `json:"new_cards"`
	CompletedCards int            `json:"completed_cards"`
	StartedAt      time.Time      `json:"started_at"`
	Cards          []CardResponse `json:"cards,omitempty"`
}

// SessionReviewResponse is returned after answering one card in a session.
type SessionReviewResponse struct {
	Card       CardResponse `json:"card"`
	IsComplete bool         `json:"is_complete"`
}

// SessionSummaryResponse is returned when a session completes.
type SessionSummaryResponse struct {
	TotalCards      int        `json:"total_cards"`
	CompletedCards  int        `json:"completed_cards"`
	Correct         int        `json:"correct"`
	Accuracy        float64    `json:"accuracy"`
	AverageQuality  float64    `json:"average_quality"`
	DurationMinutes float64    `json:"duration_minutes"`
	CardsPerMinute  float64    `json:"cards_per_minute"`
	NextDueCount    int        `json:"next_due_count"`
	NextDueAt       *time.Time `json:"next_due_at,omitempty"`
}

// DueCardsResponse wraps the due card list for a student.
type DueCardsResponse struct {
	Cards []CardResponse `json:"cards"`
	Count int            `json:"count"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:                card.ID.String(),
		StudentID:         card.StudentID.String(),
		TopicID:           card.TopicID,
		Subject:           card.Subject,
		GradeLevel:        card.GradeLevel,
		QuestionRef:       card.QuestionRef,
		Difficulty:        card.Difficulty,
		EaseFactor:        card.EaseFactor,
		Interval:          card.Interval,
		Repetitions:       card.Repetitions,
		Status:            string(card.Status),
		CreatedAt:         card.CreatedAt,
		LastReviewedAt:    card.LastReviewedAt,
		NextReviewAt:      card.NextReviewAt,
		TotalReviews:      card.TotalReviews,
		SuccessfulReviews: card.SuccessfulReviews,
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, len(cards))
	for i, card := range cards {
		out[i] = cardToResponse(card)
	}
	return out
}

func sessionToResponse(started *review.StartedSession) SessionResponse {
	session := started.Session
	return SessionResponse{
		ID:             session.ID.String(),
		StudentID:      session.StudentID.String(),
		Subject:        session.Subject,
		Status:         string(session.Status),
		NewCards:       session.NewCards,
		CompletedCards: session.CompletedCards,
		StartedAt:      session.StartedAt,
		Cards:          cardsToResponse(started.Cards),
	}
}

func summaryToResponse(stats *domain.SessionStats, next *store.DueSummary) SessionSummaryResponse {
	resp := SessionSummaryResponse{
		TotalCards:      stats.TotalCards,
		CompletedCards:  stats.CompletedCards,
		Correct:         stats.Correct,
		Accuracy:        stats.Accuracy,
		AverageQuality:  stats.AverageQuality,
		DurationMinutes: stats.DurationMinutes,
		CardsPerMinute:  stats.CardsPerMinute,
	}
	if next != nil {
		resp.NextDueCount = next.DueCount
		resp.NextDueAt = next.NextDueAt
	}
	return resp
}
