package plans

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, plan Plan) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertPlan = `
INSERT INTO plans (id, owner_id, title, content, content_hash, current_version, file_size_bytes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6, now(), now())`
	if _, err := tx.ExecContext(ctx, insertPlan,
		plan.ID,
		plan.OwnerID,
		plan.Title,
		plan.Content,
		plan.ContentHash,
		plan.FileSizeBytes,
	); err != nil {
		return err
	}

	const insertVersion = `
INSERT INTO plan_versions (id, plan_id, version_number, content, content_hash, source, created_by, created_at)
VALUES ($1, $2, 1, $3, $4, 'manual', $5, now())`
	if _, err := tx.ExecContext(ctx, insertVersion,
		uuid.NewString(),
		plan.ID,
		plan.Content,
		plan.ContentHash,
		plan.OwnerID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepo) GetByID(ctx context.Context, planID string) (Plan, error) {
	const query = `
SELECT id, owner_id, title, content, content_hash, current_version, file_size_bytes, created_at, updated_at
FROM plans
WHERE id = $1
LIMIT 1`
	var plan Plan
	err := r.DB.QueryRowContext(ctx, query, planID).Scan(
		&plan.ID,
		&plan.OwnerID,
		&plan.Title,
		&plan.Content,
		&plan.ContentHash,
		&plan.CurrentVersion,
		&plan.FileSizeBytes,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, err
	}
	return plan, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Plan, error) {
	const query = `
SELECT id, owner_id, title, content_hash, current_version, file_size_bytes, created_at, updated_at
FROM plans
WHERE owner_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var plan Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.OwnerID,
			&plan.Title,
			&plan.ContentHash,
			&plan.CurrentVersion,
			&plan.FileSizeBytes,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (r *PGRepo) Exists(ctx context.Context, planID string) (bool, error) {
	const query = `SELECT 1 FROM plans WHERE id = $1 LIMIT 1`
	var one int
	err := r.DB.QueryRowContext(ctx, query, planID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PGRepo) FindByHash(ctx context.Context, ownerID, contentHash string) (string, bool, error) {
	const query = `SELECT id FROM plans WHERE owner_id = $1 AND content_hash = $2 LIMIT 1`
	var id string
	err := r.DB.QueryRowContext(ctx, query, ownerID, contentHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}
