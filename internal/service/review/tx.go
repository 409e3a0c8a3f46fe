package review

import (
	"context"
	"database/sql"

	"github.com/lernia/review-api/internal/store"
)

// TxRunner executes a function against a transactional view of the card
// store. The SQL-backed runner wraps a real database transaction; test
// fakes simply pass the store through.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, cards store.CardStore) error) error
}

// sqlTxRunner binds a card store to database transactions.
type sqlTxRunner struct {
	db    *sql.DB
	cards store.CardStore
}

// NewSQLTxRunner creates a TxRunner over a database connection and its
// card store.
func NewSQLTxRunner(db *sql.DB, cards store.CardStore) TxRunner {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}

	return &sqlTxRunner{db: db, cards: cards}
}

// RunInTx implements TxRunner by rebinding the card store to a transaction
// for the duration of fn.
func (r *sqlTxRunner) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context, cards store.CardStore) error,
) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, r.cards.WithTx(tx))
	})
}
