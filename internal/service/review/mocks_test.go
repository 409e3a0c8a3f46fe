package review

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/store"
)

// fakeCardStore is an in-memory CardStore for service tests. Error fields
// inject failures per operation.
type fakeCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card

	createErr  error
	getErr     error
	saveErr    error
	listErr    error
	summaryErr error
}

var _ store.CardStore = (*fakeCardStore)(nil)

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

func (f *fakeCardStore) put(card *domain.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.ID] = card.Clone()
}

func (f *fakeCardStore) Create(ctx context.Context, card *domain.Card) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.cards[card.ID]; exists {
		return store.ErrDuplicate
	}
	f.cards[card.ID] = card.Clone()
	return nil
}

func (f *fakeCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

func (f *fakeCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeCardStore) Save(ctx context.Context, card *domain.Card) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	f.cards[card.ID] = card.Clone()
	return nil
}

func (f *fakeCardStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
) ([]*domain.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Card
	for _, card := range f.cards {
		if card.StudentID != studentID {
			continue
		}
		if subject != "" && card.Subject != subject {
			continue
		}
		out = append(out, card.Clone())
	}
	return out, nil
}

func (f *fakeCardStore) ListDue(
	ctx context.Context,
	q store.DueQuery,
) ([]*domain.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Card
	for _, card := range f.cards {
		if card.StudentID != q.StudentID {
			continue
		}
		if q.Subject != "" && card.Subject != q.Subject {
			continue
		}
		if card.Status == domain.CardStatusRetired {
			continue
		}
		if card.NextReviewAt.After(q.Now) {
			continue
		}
		out = append(out, card.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextReviewAt.Before(out[j].NextReviewAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeCardStore) DueSummary(
	ctx context.Context,
	studentID uuid.UUID,
	subject string,
	now time.Time,
) (*store.DueSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &store.DueSummary{}
	for _, card := range f.cards {
		if card.StudentID != studentID || card.Status == domain.CardStatusRetired {
			continue
		}
		if subject != "" && card.Subject != subject {
			continue
		}
		if !card.NextReviewAt.After(now) {
			summary.DueCount++
		}
		next := card.NextReviewAt
		if summary.NextDueAt == nil || next.Before(*summary.NextDueAt) {
			t := next
			summary.NextDueAt = &t
		}
	}
	return summary, nil
}

func (f *fakeCardStore) ListRetireCandidates(
	ctx context.Context,
	reviewedBefore time.Time,
	minRepetitions int,
) ([]*domain.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Card
	for _, card := range f.cards {
		if card.Status != domain.CardStatusMastered {
			continue
		}
		if card.Repetitions < minRepetitions {
			continue
		}
		if card.LastReviewedAt == nil || !card.LastReviewedAt.Before(reviewedBefore) {
			continue
		}
		out = append(out, card.Clone())
	}
	return out, nil
}

func (f *fakeCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return f
}

// fakeSessionStore is an in-memory SessionStore without TTL behavior.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.ReviewSession

	saveErr error
	getErr  error
}

var _ store.SessionStore = (*fakeSessionStore)(nil)

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*domain.ReviewSession)}
}

func (f *fakeSessionStore) Save(ctx context.Context, session *domain.ReviewSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Get(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ReviewSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// fakeTxRunner runs the function against the store directly, without a
// real transaction.
type fakeTxRunner struct {
	cards store.CardStore
	err   error
}

var _ TxRunner = (*fakeTxRunner)(nil)

func (f *fakeTxRunner) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context, cards store.CardStore) error,
) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx, f.cards)
}
