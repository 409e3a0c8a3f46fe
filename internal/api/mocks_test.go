package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/service/review"
)

// mockReviewService implements review.Service with per-method stubs.
type mockReviewService struct {
	createCardFn   func(ctx context.Context, params review.CreateCardParams) (*domain.Card, error)
	getCardFn      func(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	dueCardsFn     func(ctx context.Context, studentID uuid.UUID, subject string, limit int) ([]*domain.Card, error)
	reviewCardFn   func(ctx context.Context, cardID uuid.UUID, perf srs.Performance) (*domain.Card, error)
	postponeCardFn func(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)
	resetCardFn    func(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	startSessionFn func(ctx context.Context, studentID uuid.UUID, subject string, opts review.SessionOptions) (*review.StartedSession, error)
	reviewInSessFn func(ctx context.Context, sessionID, cardID uuid.UUID, perf srs.Performance) (*review.SessionReviewOutcome, error)
	completeSessFn func(ctx context.Context, sessionID uuid.UUID) (*review.SessionSummary, error)
	abandonSessFn  func(ctx context.Context, sessionID uuid.UUID) error
	retireStaleFn  func(ctx context.Context) (int, error)
}

var _ review.Service = (*mockReviewService)(nil)

func (m *mockReviewService) CreateCard(
	ctx context.Context,
	params review.CreateCardParams,
) (*domain.Card, error) {
	return m.createCardFn(ctx, params)
}

func (m *mockReviewService) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return m.getCardFn(ctx, cardID)
}

func (m *mockReviewService) DueCards(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	limit int,
) ([]*domain.Card, error) {
	return m.dueCardsFn(ctx, studentID, subject, limit)
}

func (m *mockReviewService) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	perf srs.Performance,
) (*domain.Card, error) {
	return m.reviewCardFn(ctx, cardID, perf)
}

func (m *mockReviewService) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	return m.postponeCardFn(ctx, cardID, days)
}

func (m *mockReviewService) ResetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return m.resetCardFn(ctx, cardID)
}

func (m *mockReviewService) StartSession(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	opts review.SessionOptions,
) (*review.StartedSession, error) {
	return m.startSessionFn(ctx, studentID, subject, opts)
}

func (m *mockReviewService) ReviewCardInSession(
	ctx context.Context,
	sessionID, cardID uuid.UUID,
	perf srs.Performance,
) (*review.SessionReviewOutcome, error) {
	return m.reviewInSessFn(ctx, sessionID, cardID, perf)
}

func (m *mockReviewService) CompleteSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*review.SessionSummary, error) {
	return m.completeSessFn(ctx, sessionID)
}

func (m *mockReviewService) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	return m.abandonSessFn(ctx, sessionID)
}

func (m *mockReviewService) RetireStaleCards(ctx context.Context) (int, error) {
	return m.retireStaleFn(ctx)
}
