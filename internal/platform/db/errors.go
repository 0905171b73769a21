package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by repositories. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record conflicts with an existing one")
	ErrProtected        = errors.New("record is still referenced by other records")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrInvalid          = errors.New("record violates a database constraint")
)

// PostgreSQL SQLSTATE codes we translate.
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
	codeStringTooLong       = "22001"
)

// Querier is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx used by repositories.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// MapReadError translates errors from single-row lookups.
func MapReadError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// MapWriteError translates errors raised by INSERT or UPDATE statements.
// A foreign key violation here means the row points at a record that does not exist.
func MapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, constraintOf(pgErr))
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrInvalidReference, constraintOf(pgErr))
	case codeCheckViolation, codeNotNullViolation, codeNumericOutOfRange, codeStringTooLong:
		return fmt.Errorf("%w: %s", ErrInvalid, constraintOf(pgErr))
	}
	return err
}

// MapDeleteError translates errors raised by DELETE statements.
// A foreign key violation here means an ON DELETE RESTRICT reference still exists.
func MapDeleteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrProtected, constraintOf(pgErr))
	}
	return err
}

// ExpectOne turns a command tag that touched no rows into ErrNotFound.
func ExpectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func constraintOf(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return pgErr.Message
}
