package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for duplicate keys
const uniqueViolation = "23505"

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func exists(ctx context.Context, q queryer, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// validID reports whether id can match a UUID primary key. Postgres fails
// other text with SQLSTATE 22P02 instead of returning no rows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
