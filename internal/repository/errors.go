package repository

import (
	"errors"
	"fmt"

	"ecommerce-api/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	return hasCode(err, "23505")
}

// IsForeignKey - signals that the error references a missing row.
func IsForeignKey(err error) bool {
	return hasCode(err, "23503")
}

// IsCheck - signals that a CHECK constraint rejected the row.
func IsCheck(err error) bool {
	return hasCode(err, "23514")
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func hasCode(err error, code string) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == code
}

// mapWriteErr translates constraint violations into application errors.
func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case IsDuplicate(err):
		return fmt.Errorf("%w: %s", apperr.ErrConflict, err.Error())
	case IsForeignKey(err), IsCheck(err):
		return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	default:
		return err
	}
}
