package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/platform/logger"
	"github.com/lernia/review-api/internal/store"
)

// ArchiveConfig controls the archival sweep.
type ArchiveConfig struct {
	// RetireAfter is how long a mastered card may sit unreviewed before
	// the sweep retires it.
	RetireAfter time.Duration

	// RetireRepetitions is the minimum streak a card needs to be a
	// retirement candidate.
	RetireRepetitions int
}

// Config holds service-level settings.
type Config struct {
	Archive ArchiveConfig
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	cards      store.CardStore
	sessions   store.SessionStore
	txRunner   TxRunner
	srsService srs.Service
	clock      Clock
	locks      *studentLocks
	archive    ArchiveConfig
	logger     *slog.Logger
}

// NewService creates the review service. The clock is injectable; pass nil
// to use the system clock in UTC.
func NewService(
	cards store.CardStore,
	sessions store.SessionStore,
	txRunner TxRunner,
	srsService srs.Service,
	cfg Config,
	clock Clock,
	log *slog.Logger,
) Service {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if sessions == nil {
		panic("sessions store cannot be nil")
	}
	if txRunner == nil {
		panic("txRunner cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	if cfg.Archive.RetireAfter <= 0 {
		cfg.Archive.RetireAfter = 180 * 24 * time.Hour
	}
	if cfg.Archive.RetireRepetitions <= 0 {
		cfg.Archive.RetireRepetitions = 8
	}

	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		cards:      cards,
		sessions:   sessions,
		txRunner:   txRunner,
		srsService: srsService,
		clock:      clock,
		locks:      newStudentLocks(),
		archive:    cfg.Archive,
		logger:     log.With(slog.String("component", "review_service")),
	}
}

// CreateCard implements Service.CreateCard.
func (s *serviceImpl) CreateCard(
	ctx context.Context,
	params CreateCardParams,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(
		params.StudentID,
		params.TopicID,
		params.Subject,
		params.GradeLevel,
		params.QuestionRef,
		params.Difficulty,
		s.clock(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.cards.Create(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("student_id", params.StudentID.String()))
		return nil, newServiceError("create_card", "failed to persist card", err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("student_id", card.StudentID.String()),
		slog.String("subject", card.Subject))
	return card, nil
}

// GetCard implements Service.GetCard.
func (s *serviceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, newServiceError("get_card", "failed to load card", err)
	}
	return card, nil
}

// DueCards implements Service.DueCards.
// Storage read failures degrade to an empty result with a warning, so a
// flaky backend never takes the review path down.
func (s *serviceImpl) DueCards(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pool, err := s.cards.ListDue(ctx, store.DueQuery{
		StudentID: studentID,
		Subject:   subject,
		Now:       s.clock(),
		Limit:     limit,
	})
	if err != nil {
		log.Warn("due card query failed, degrading to empty set",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return []*domain.Card{}, nil
	}

	orderByUrgency(pool)
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

// ReviewCard implements Service.ReviewCard.
func (s *serviceImpl) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	perf srs.Performance,
) (*domain.Card, error) {
	if err := perf.Validate(); err != nil {
		return nil, err
	}
	return s.reviewCard(ctx, cardID, perf)
}

// reviewCard loads, re-schedules, and saves one card under the owning
// student's lock and a storage transaction.
func (s *serviceImpl) reviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	perf srs.Performance,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, newServiceError("review_card", "failed to load card", err)
	}

	lock := s.locks.forStudent(card.StudentID)
	lock.Lock()
	defer lock.Unlock()

	var updated *domain.Card
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context, cards store.CardStore) error {
		current, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return err
		}

		updated, err = s.srsService.Review(current, perf, s.clock())
		if err != nil {
			return err
		}

		return cards.Save(ctx, updated)
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) ||
			errors.Is(err, domain.ErrValidation) ||
			errors.Is(err, srs.ErrCardRetired) {
			return nil, err
		}
		log.Error("failed to review card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, newServiceError("review_card", "failed to apply review", err)
	}

	log.Debug("card reviewed",
		slog.String("card_id", updated.ID.String()),
		slog.Int("quality", perf.Quality),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval", updated.Interval),
		slog.String("status", string(updated.Status)),
		slog.Time("next_review_at", updated.NextReviewAt))
	return updated, nil
}

// PostponeCard implements Service.PostponeCard.
func (s *serviceImpl) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	return s.mutateCard(ctx, "postpone_card", cardID,
		func(card *domain.Card, now time.Time) (*domain.Card, error) {
			return s.srsService.Postpone(card, days, now)
		})
}

// ResetCard implements Service.ResetCard.
func (s *serviceImpl) ResetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return s.mutateCard(ctx, "reset_card", cardID,
		func(card *domain.Card, now time.Time) (*domain.Card, error) {
			return s.srsService.Reset(card, now)
		})
}

// mutateCard runs a scheduling mutation under the student lock and a
// transaction. Shared by postpone and reset.
func (s *serviceImpl) mutateCard(
	ctx context.Context,
	operation string,
	cardID uuid.UUID,
	mutate func(card *domain.Card, now time.Time) (*domain.Card, error),
) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, newServiceError(operation, "failed to load card", err)
	}

	lock := s.locks.forStudent(card.StudentID)
	lock.Lock()
	defer lock.Unlock()

	var updated *domain.Card
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context, cards store.CardStore) error {
		current, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return err
		}

		updated, err = mutate(current, s.clock())
		if err != nil {
			return err
		}

		return cards.Save(ctx, updated)
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) ||
			errors.Is(err, srs.ErrCardRetired) ||
			errors.Is(err, srs.ErrInvalidDays) {
			return nil, err
		}
		return nil, newServiceError(operation, "failed to update card", err)
	}

	return updated, nil
}

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	opts SessionOptions,
) (*StartedSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	lock := s.locks.forStudent(studentID)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock()

	// Pull up to twice the target so composition has enough of each
	// status bucket to choose from.
	pool, err := s.cards.ListDue(ctx, store.DueQuery{
		StudentID: studentID,
		Subject:   subject,
		Now:       now,
		Limit:     2 * opts.TargetCards,
	})
	if err != nil {
		log.Warn("due card query failed, treating as no cards due",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, ErrNoCardsDue
	}

	orderByUrgency(pool)
	selected, newCount := composeSession(pool, opts.TargetCards, opts.MaxNewCards)
	if len(selected) == 0 {
		return nil, ErrNoCardsDue
	}

	cardIDs := make([]uuid.UUID, len(selected))
	for i, card := range selected {
		cardIDs[i] = card.ID
	}

	session, err := domain.NewReviewSession(studentID, subject, cardIDs, newCount, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, newServiceError("start_session", "failed to persist session", err)
	}

	log.Info("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("student_id", studentID.String()),
		slog.String("subject", subject),
		slog.Int("cards", len(selected)),
		slog.Int("new_cards", newCount))
	return &StartedSession{Session: session, Cards: selected}, nil
}

// ReviewCardInSession implements Service.ReviewCardInSession.
func (s *serviceImpl) ReviewCardInSession(
	ctx context.Context,
	sessionID, cardID uuid.UUID,
	perf srs.Performance,
) (*SessionReviewOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := perf.Validate(); err != nil {
		return nil, err
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusInProgress {
		return nil, ErrSessionClosed
	}

	if !session.ContainsCard(cardID) {
		return nil, ErrCardNotInSession
	}

	updated, err := s.reviewCard(ctx, cardID, perf)
	if err != nil {
		return nil, err
	}

	result := domain.SessionReviewResult{
		CardID:     cardID,
		Quality:    perf.Quality,
		TimeSpent:  perf.TimeSpent,
		Correct:    perf.Correct,
		ReviewedAt: s.clock(),
	}
	if err := session.RecordResult(result); err != nil {
		// The card's schedule is already updated and durable; only the
		// session-scoped bookkeeping failed.
		return nil, newServiceError("review_in_session", "failed to record result", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save session after review",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, newServiceError("review_in_session", "failed to persist session", err)
	}

	return &SessionReviewOutcome{
		Card:       updated,
		IsComplete: session.IsComplete(),
	}, nil
}

// CompleteSession implements Service.CompleteSession.
func (s *serviceImpl) CompleteSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	stats, err := session.Complete(now)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotInProgress) {
			return nil, ErrSessionClosed
		}
		return nil, newServiceError("complete_session", "failed to close session", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save completed session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, newServiceError("complete_session", "failed to persist session", err)
	}

	// The forward-looking summary is best-effort; a read failure degrades
	// to statistics only.
	summary, err := s.cards.DueSummary(ctx, session.StudentID, session.Subject, now)
	if err != nil {
		log.Warn("due summary query failed, omitting next session info",
			slog.String("error", err.Error()),
			slog.String("student_id", session.StudentID.String()))
		summary = nil
	}

	log.Info("session completed",
		slog.String("session_id", session.ID.String()),
		slog.String("student_id", session.StudentID.String()),
		slog.Int("completed_cards", stats.CompletedCards),
		slog.Float64("accuracy", stats.Accuracy))
	return &SessionSummary{Stats: stats, NextSession: summary}, nil
}

// AbandonSession implements Service.AbandonSession.
func (s *serviceImpl) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := session.Abandon(s.clock()); err != nil {
		if errors.Is(err, domain.ErrSessionNotInProgress) {
			return ErrSessionClosed
		}
		return newServiceError("abandon_session", "failed to abandon session", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return newServiceError("abandon_session", "failed to persist session", err)
	}

	log.Info("session abandoned",
		slog.String("session_id", session.ID.String()),
		slog.Int("completed_cards", session.CompletedCards),
		slog.Int("total_cards", len(session.CardIDs)))
	return nil
}

// RetireStaleCards implements Service.RetireStaleCards.
// Candidates are re-checked under the student lock so the sweep never
// races an in-flight review of the same card.
func (s *serviceImpl) RetireStaleCards(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.clock()
	candidates, err := s.cards.ListRetireCandidates(
		ctx,
		now.Add(-s.archive.RetireAfter),
		s.archive.RetireRepetitions,
	)
	if err != nil {
		return 0, newServiceError("retire_stale", "failed to list candidates", err)
	}

	retired := 0
	for _, candidate := range candidates {
		if err := s.retireCard(ctx, candidate.ID, candidate.StudentID, now); err != nil {
			log.Warn("failed to retire card, skipping",
				slog.String("error", err.Error()),
				slog.String("card_id", candidate.ID.String()))
			continue
		}
		retired++
	}

	if retired > 0 {
		log.Info("archival sweep retired cards", slog.Int("count", retired))
	}
	return retired, nil
}

func (s *serviceImpl) retireCard(
	ctx context.Context,
	cardID, studentID uuid.UUID,
	now time.Time,
) error {
	lock := s.locks.forStudent(studentID)
	lock.Lock()
	defer lock.Unlock()

	return s.txRunner.RunInTx(ctx, func(ctx context.Context, cards store.CardStore) error {
		card, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}

		// Re-check under the lock: the student may have reviewed the card
		// between the candidate query and now.
		if !s.srsService.ShouldRetire(card, now) {
			return nil
		}

		card.Status = domain.CardStatusRetired
		return cards.Save(ctx, card)
	})
}

func (s *serviceImpl) getSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.ReviewSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, newServiceError("get_session", "failed to load session", err)
	}
	return session, nil
}
