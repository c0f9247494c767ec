package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, email, name, picture, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (email) DO UPDATE SET
  name = EXCLUDED.name,
  picture = EXCLUDED.picture
RETURNING id, email, name, picture, created_at`
	var stored User
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Picture,
	).Scan(
		&stored.ID,
		&stored.Email,
		&stored.Name,
		&stored.Picture,
		&stored.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return stored, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, name, picture, created_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Picture,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
