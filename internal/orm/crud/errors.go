package crud

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Common CRUD error types
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrInvalidOptions is returned when a statement cannot be built from its options
	ErrInvalidOptions = errors.New("invalid options")

	// ErrMissingID is returned when an entity has no value for the id field
	ErrMissingID = errors.New("entity has no id")

	// ErrUniqueViolation is returned when a unique constraint is violated
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrCheckViolation is returned when a check constraint is violated
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated
	ErrNotNullViolation = errors.New("not null constraint violation")
)

// PostgreSQL SQLSTATE codes for integrity violations
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// ConvertDBError converts database-specific errors to CRUD errors.
// Both pgx and lib/pq errors are recognized.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return convertCode(err, pgErr.Code, pgErr.Detail, pgErr.ColumnName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return convertCode(err, string(pqErr.Code), pqErr.Detail, pqErr.Column)
	}

	return err
}

func convertCode(err error, code, detail, column string) error {
	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, detail)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, detail)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", ErrCheckViolation, detail)
	case codeNotNullViolation:
		return fmt.Errorf("%w: column %s", ErrNotNullViolation, column)
	}
	return err
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsForeignKeyViolation returns true if the error is ErrForeignKeyViolation
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}

// IsConstraintViolation returns true for any integrity constraint error
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrForeignKeyViolation) ||
		errors.Is(err, ErrCheckViolation) ||
		errors.Is(err, ErrNotNullViolation)
}
