// Package pgsql implements the remote gateway ports against the hosted
// Postgres store over pgx. Row-level security on the remote side decides
// what each query may see or touch; this package only translates rows and
// errors.
package pgsql

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finotbook/cashbook/internal/apperrors"
)

// BaseGateway provides the shared pool and error translation for all
// gateways.
type BaseGateway struct {
	Pool *pgxpool.Pool
}

// mapError folds a pgx error into the gateway error taxonomy. A Postgres
// error means the remote was reached and refused the operation; anything
// else is treated as the remote being unreachable.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, op)
		case "23503", "23514": // foreign_key_violation, check_violation
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, op, pgErr.Message)
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s", apperrors.ErrForbidden, op)
		case "P0001": // raise_exception from a procedure
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, op, pgErr.Message)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", apperrors.ErrUnavailable, op, err)
}
