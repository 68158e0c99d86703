package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirinyoku/cinebook/internal/repository"
)

// IsRetryable reports whether err is a serialization failure or deadlock
// that is safe to retry with a fresh transaction.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return true
		}
	}

	return false
}

// translateDBErr marks connection-level failures as repository.ErrUnavailable.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) && pgerrcode.IsConnectionException(pge.Code) {
		return errors.Join(repository.ErrUnavailable, err)
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return errors.Join(repository.ErrUnavailable, err)
	}

	return err
}
