package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore keeps one window row per (user, action). The row is locked
// for the duration of the decision so concurrent requests serialize.
type PGStore struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewPGStore(database *sql.DB) *PGStore {
	return &PGStore{DB: database, Now: time.Now}
}

func (s *PGStore) TryConsume(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := s.Now().UTC()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	const lockQuery = `
SELECT count, window_start
FROM rate_limit_windows
WHERE user_id = $1 AND action = $2
FOR UPDATE`
	var count int
	var windowStart time.Time
	err = tx.QueryRowContext(ctx, lockQuery, userID, action).Scan(&count, &windowStart)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		const insertQuery = `
INSERT INTO rate_limit_windows (user_id, action, count, window_start)
VALUES ($1, $2, 1, $3)
ON CONFLICT (user_id, action) DO UPDATE SET count = rate_limit_windows.count + 1`
		if _, err := tx.ExecContext(ctx, insertQuery, userID, action, now); err != nil {
			return false, err
		}
		return true, tx.Commit()
	case err != nil:
		return false, err
	}

	if now.Sub(windowStart) >= window {
		const resetQuery = `
UPDATE rate_limit_windows SET count = 1, window_start = $3
WHERE user_id = $1 AND action = $2`
		if _, err := tx.ExecContext(ctx, resetQuery, userID, action, now); err != nil {
			return false, err
		}
		return true, tx.Commit()
	}

	if count >= limit {
		return false, tx.Commit()
	}

	const bumpQuery = `
UPDATE rate_limit_windows SET count = count + 1
WHERE user_id = $1 AND action = $2`
	if _, err := tx.ExecContext(ctx, bumpQuery, userID, action); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
