package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lernia/review-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapCardError(t *testing.T) {
	t.Parallel()

	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, mapCardError("get", nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := mapCardError("get", sql.ErrNoRows)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		err := mapCardError("create", &pgconn.PgError{Code: pgUniqueViolationCode})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("foreign key violation maps to invalid entity", func(t *testing.T) {
		err := mapCardError("create", &pgconn.PgError{Code: pgForeignKeyViolationCode})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("anything else maps to storage failure", func(t *testing.T) {
		err := mapCardError("list", errors.New("connection refused"))
		assert.ErrorIs(t, err, store.ErrStorage)

		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "card", storeErr.Entity)
		assert.Equal(t, "list", storeErr.Operation)
	})
}
