package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lernia/review-api/internal/store"
)

// PostgreSQL error codes we care about.
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// mapCardError translates low-level database errors into the store package's
// error taxonomy so callers never depend on driver details.
func mapCardError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrCardNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolationCode:
			return fmt.Errorf("%w: card", store.ErrDuplicate)
		case pgForeignKeyViolationCode:
			return fmt.Errorf("%w: referenced entity missing", store.ErrInvalidEntity)
		}
	}

	return store.NewStoreError("card", operation, "database error",
		fmt.Errorf("%w: %v", store.ErrStorage, err))
}

// IsUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}
