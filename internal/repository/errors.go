package repository

import (
	"errors"
	"fmt"

	"invoicer/internal/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps driver and gorm errors onto the apperror taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", apperror.ErrNotFound, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", apperror.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
