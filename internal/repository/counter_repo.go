package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// CounterRepository allocates values from per-owner sequences.
type CounterRepository interface {
	// Increment atomically bumps the (userID, key) counter, creating it at 1 when
	// absent, and returns the post-increment value.
	Increment(ctx context.Context, userID, key string) (int64, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Single statement; concurrent callers for the same (user_id, key) serialize on the row.
const incrementCounterSQL = `
	INSERT INTO counters (user_id, "key", seq, created_at, updated_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT (user_id, "key")
	DO UPDATE SET seq = counters.seq + 1, updated_at = excluded.updated_at
	RETURNING seq
`

func (r *counterRepository) Increment(ctx context.Context, userID, key string) (int64, error) {
	now := time.Now().UTC()
	var seq int64
	result := GetDB(ctx, r.db).Raw(incrementCounterSQL, userID, key, now, now).Scan(&seq)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, translateError(gorm.ErrRecordNotFound)
	}
	return seq, nil
}
