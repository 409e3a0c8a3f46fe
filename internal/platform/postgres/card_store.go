package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/platform/logger"
	"github.com/lernia/review-api/internal/store"
)

// cardColumns is the select list shared by every card query. The interval
// column is named interval_days because interval is a reserved word.
const cardColumns = `
	id, student_id, topic_id, subject, grade_level, question_ref, difficulty,
	ease_factor, interval_days, repetitions, status, created_at,
	last_reviewed_at, next_review_at, review_history, total_reviews,
	successful_reviews
`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, log *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create
// It saves a new card to the database, handling domain validation.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	history, err := json.Marshal(card.ReviewHistory)
	if err != nil {
		return fmt.Errorf("%w: marshal review history: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (
			id, student_id, topic_id, subject, grade_level, question_ref,
			difficulty, ease_factor, interval_days, repetitions, status,
			created_at, last_reviewed_at, next_review_at, review_history,
			total_reviews, successful_reviews
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.StudentID,
		card.TopicID,
		card.Subject,
		card.GradeLevel,
		card.QuestionRef,
		card.Difficulty,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		card.Status,
		card.CreatedAt,
		card.LastReviewedAt,
		card.NextReviewAt,
		history,
		card.TotalReviews,
		card.SuccessfulReviews,
	)

	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("student_id", card.StudentID.String()))
		return mapCardError("create", err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("student_id", card.StudentID.String()),
		slog.String("subject", card.Subject))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForUpdate implements store.CardStore.GetForUpdate
// It takes a row-level lock so concurrent reviews of the same card are
// serialized. Must run inside a transaction.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresCardStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, query, id)
	card, err := scanCard(row)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Error("failed to get card",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
		}
		return nil, mapCardError("get", err)
	}

	return card, nil
}

// Save implements store.CardStore.Save
// It persists the full scheduling state of an existing card.
func (s *PostgresCardStore) Save(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	history, err := json.Marshal(card.ReviewHistory)
	if err != nil {
		return fmt.Errorf("%w: marshal review history: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards SET
			ease_factor = $2,
			interval_days = $3,
			repetitions = $4,
			status = $5,
			last_reviewed_at = $6,
			next_review_at = $7,
			review_history = $8,
			total_reviews = $9,
			successful_reviews = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		card.Status,
		card.LastReviewedAt,
		card.NextReviewAt,
		history,
		card.TotalReviews,
		card.SuccessfulReviews,
	)
	if err != nil {
		log.Error("failed to save card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return mapCardError("save", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapCardError("save", err)
	}
	if rows == 0 {
		return store.ErrCardNotFound
	}

	log.Debug("card saved",
		slog.String("card_id", card.ID.String()),
		slog.String("status", string(card.Status)),
		slog.Time("next_review_at", card.NextReviewAt))
	return nil
}

// ListByStudent implements store.CardStore.ListByStudent
func (s *PostgresCardStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE student_id = $1`
	args := []any{studentID}

	if subject != "" {
		query += ` AND subject = $2`
		args = append(args, subject)
	}

	return s.list(ctx, "list_by_student", query, args...)
}

// ListDue implements store.CardStore.ListDue
// Eligibility is status != retired and next_review_at <= now; results come
// back most overdue first.
func (s *PostgresCardStore) ListDue(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE student_id = $1
		  AND status <> $2
		  AND next_review_at <= $3`
	args := []any{q.StudentID, domain.CardStatusRetired, q.Now}

	if q.Subject != "" {
		args = append(args, q.Subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}

	query += ` ORDER BY next_review_at ASC`

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return s.list(ctx, "list_due", query, args...)
}

// DueSummary implements store.CardStore.DueSummary
func (s *PostgresCardStore) DueSummary(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	now time.Time,
) (*store.DueSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE next_review_at <= $2),
			MIN(next_review_at)
		FROM cards
		WHERE student_id = $1 AND status <> $3
	`
	args := []any{studentID, now, domain.CardStatusRetired}

	if subject != "" {
		args = append(args, subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}

	var summary store.DueSummary
	var nextDue sql.NullTime
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&summary.DueCount, &nextDue)
	if err != nil {
		log.Error("failed to compute due summary",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, mapCardError("due_summary", err)
	}

	if nextDue.Valid {
		t := nextDue.Time.UTC()
		summary.NextDueAt = &t
	}

	return &summary, nil
}

// ListRetireCandidates implements store.CardStore.ListRetireCandidates
func (s *PostgresCardStore) ListRetireCandidates(
	ctx context.Context,
	reviewedBefore time.Time,
	minRepetitions int,
) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE status = $1
		  AND repetitions >= $2
		  AND last_reviewed_at IS NOT NULL
		  AND last_reviewed_at < $3`

	return s.list(ctx, "list_retire_candidates", query,
		domain.CardStatusMastered, minRepetitions, reviewedBefore)
}

func (s *PostgresCardStore) list(
	ctx context.Context,
	operation, query string,
	args ...any,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("card query failed",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, mapCardError(operation, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, mapCardError(operation, err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, mapCardError(operation, err)
	}

	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var lastReviewed sql.NullTime
	var history []byte

	err := row.Scan(
		&card.ID,
		&card.StudentID,
		&card.TopicID,
		&card.Subject,
		&card.GradeLevel,
		&card.QuestionRef,
		&card.Difficulty,
		&card.EaseFactor,
		&card.Interval,
		&card.Repetitions,
		&card.Status,
		&card.CreatedAt,
		&lastReviewed,
		&card.NextReviewAt,
		&history,
		&card.TotalReviews,
		&card.SuccessfulReviews,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		card.LastReviewedAt = &t
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &card.ReviewHistory); err != nil {
			return nil, fmt.Errorf("unmarshal review history: %w", err)
		}
	}

	return &card, nil
}
