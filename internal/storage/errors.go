package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrWrongOwner marks a catalog mutation that addressed rows owned by a
// different company than the caller's.
var ErrWrongOwner = errors.New("row owned by another company")

// Postgres error classifiers. The reservation repository translates these into
// the booking taxonomy; CRUD handlers use them directly.

// IsConflict reports an exclusion-constraint violation, i.e. an insert that
// lost the overlap race on an employee's time range.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// IsUniqueViolation reports a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports a reference to a row that does not exist.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
