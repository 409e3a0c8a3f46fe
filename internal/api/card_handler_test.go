package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/service/review"
)

func testCard(t *testing.T) *domain.Card {
	t.Helper()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	card, err := domain.NewCard(uuid.New(), "fractions", "math", 4, "q-17", 5, now)
	require.NoError(t, err)
	return card
}

func cardRouter(service review.Service) http.Handler {
	handler := NewCardHandler(service, slog.Default())
	r := chi.NewRouter()
	r.Post("/cards", handler.CreateCard)
	r.Get("/cards/{id}", handler.GetCard)
	r.Post("/cards/{id}/review", handler.ReviewCard)
	r.Post("/cards/{id}/postpone", handler.PostponeCard)
	r.Post("/cards/{id}/reset", handler.ResetCard)
	r.Get("/students/{studentID}/cards/due", handler.DueCards)
	return r
}

func TestCreateCardHandler(t *testing.T) {
	t.Parallel()

	card := testCard(t)
	service := &mockReviewService{
		createCardFn: func(ctx context.Context, params review.CreateCardParams) (*domain.Card, error) {
			return card, nil
		},
	}

	body, _ := json.Marshal(CreateCardRequest{
		StudentID:   card.StudentID.String(),
		TopicID:     "fractions",
		Subject:     "math",
		GradeLevel:  4,
		QuestionRef: "q-17",
		Difficulty:  5,
	})

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, card.ID.String(), resp.ID)
	assert.Equal(t, "new", resp.Status)
}

func TestCreateCardHandlerValidation(t *testing.T) {
	t.Parallel()

	service := &mockReviewService{}

	// Difficulty out of range fails before the service is called.
	body, _ := json.Marshal(CreateCardRequest{
		StudentID:   uuid.New().String(),
		Subject:     "math",
		GradeLevel:  4,
		QuestionRef: "q-17",
		Difficulty:  11,
	})

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCardHandlerNotFound(t *testing.T) {
	t.Parallel()

	service := &mockReviewService{
		getCardFn: func(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
			return nil, review.ErrCardNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/cards/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Card not found", resp["error"])
}

func TestGetCardHandlerBadID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/cards/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	cardRouter(&mockReviewService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewCardHandler(t *testing.T) {
	t.Parallel()

	card := testCard(t)
	var gotPerf srs.Performance
	service := &mockReviewService{
		reviewCardFn: func(ctx context.Context, cardID uuid.UUID, perf srs.Performance) (*domain.Card, error) {
			gotPerf = perf
			return card, nil
		},
	}

	quality := 4
	body, _ := json.Marshal(ReviewRequest{
		Quality:   &quality,
		Correct:   true,
		TimeSpent: 12.5,
	})

	url := fmt.Sprintf("/cards/%s/review", card.ID)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, gotPerf.Quality)
	assert.Equal(t, 12.5, gotPerf.TimeSpent)
	assert.True(t, gotPerf.Correct)
}

func TestReviewCardHandlerDerivesQuality(t *testing.T) {
	t.Parallel()

	card := testCard(t)
	var gotPerf srs.Performance
	service := &mockReviewService{
		reviewCardFn: func(ctx context.Context, cardID uuid.UUID, perf srs.Performance) (*domain.Card, error) {
			gotPerf = perf
			return card, nil
		},
	}

	// No explicit quality: derived from correctness, confidence, timing.
	body, _ := json.Marshal(ReviewRequest{
		Correct:      true,
		Confidence:   0.95,
		TimeSpent:    5,
		ExpectedTime: 10,
	})

	url := fmt.Sprintf("/cards/%s/review", card.ID)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotPerf.Quality, "fast confident correct answers derive a 5")
}

func TestReviewCardHandlerRejectsBadQuality(t *testing.T) {
	t.Parallel()

	quality := 6
	body, _ := json.Marshal(ReviewRequest{Quality: &quality})

	url := fmt.Sprintf("/cards/%s/review", uuid.New())
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(&mockReviewService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewCardHandlerRetiredConflict(t *testing.T) {
	t.Parallel()

	service := &mockReviewService{
		reviewCardFn: func(ctx context.Context, cardID uuid.UUID, perf srs.Performance) (*domain.Card, error) {
			return nil, srs.ErrCardRetired
		},
	}

	quality := 4
	body, _ := json.Marshal(ReviewRequest{Quality: &quality})

	url := fmt.Sprintf("/cards/%s/review", uuid.New())
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostponeCardHandler(t *testing.T) {
	t.Parallel()

	card := testCard(t)
	var gotDays int
	service := &mockReviewService{
		postponeCardFn: func(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error) {
			gotDays = days
			return card, nil
		},
	}

	body, _ := json.Marshal(PostponeRequest{Days: 3})

	url := fmt.Sprintf("/cards/%s/postpone", card.ID)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotDays)
}

func TestPostponeCardHandlerRejectsZeroDays(t *testing.T) {
	t.Parallel()

	body, _ := json.Marshal(PostponeRequest{Days: 0})

	url := fmt.Sprintf("/cards/%s/postpone", uuid.New())
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	cardRouter(&mockReviewService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDueCardsHandler(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	cards := []*domain.Card{testCard(t), testCard(t)}
	var gotSubject string
	var gotLimit int
	service := &mockReviewService{
		dueCardsFn: func(ctx context.Context, sid uuid.UUID, subject string, limit int) ([]*domain.Card, error) {
			gotSubject = subject
			gotLimit = limit
			return cards, nil
		},
	}

	url := fmt.Sprintf("/students/%s/cards/due?subject=math&limit=10", studentID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	cardRouter(service).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "math", gotSubject)
	assert.Equal(t, 10, gotLimit)

	var resp DueCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Cards, 2)
}

func TestDueCardsHandlerBadLimit(t *testing.T) {
	t.Parallel()

	url := fmt.Sprintf("/students/%s/cards/due?limit=banana", uuid.New())
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	cardRouter(&mockReviewService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
