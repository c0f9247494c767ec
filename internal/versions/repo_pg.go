package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo reads version snapshots. Writes happen only inside the plan
// create and job commit transactions owned by those packages.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) ListByPlan(ctx context.Context, planID string) ([]Version, error) {
	const query = `
SELECT id, plan_id, version_number, content_hash, source, originating_comment_id, summary, created_by, created_at
FROM plan_versions
WHERE plan_id = $1
ORDER BY version_number DESC`
	rows, err := r.DB.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var rawSource string
		var commentID sql.NullString
		var summary sql.NullString
		if err := rows.Scan(
			&v.ID,
			&v.PlanID,
			&v.VersionNumber,
			&v.ContentHash,
			&rawSource,
			&commentID,
			&summary,
			&v.CreatedBy,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.Source, err = ParseSource(rawSource)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", v.ID, err)
		}
		if commentID.Valid {
			v.OriginatingCommentID = &commentID.String
		}
		if summary.Valid {
			v.Summary = &summary.String
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByNumber(ctx context.Context, planID string, number int) (Version, error) {
	const query = `
SELECT id, plan_id, version_number, content, content_hash, source, originating_comment_id, summary, created_by, created_at
FROM plan_versions
WHERE plan_id = $1 AND version_number = $2
LIMIT 1`
	var v Version
	var rawSource string
	var commentID sql.NullString
	var summary sql.NullString
	err := r.DB.QueryRowContext(ctx, query, planID, number).Scan(
		&v.ID,
		&v.PlanID,
		&v.VersionNumber,
		&v.Content,
		&v.ContentHash,
		&rawSource,
		&commentID,
		&summary,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	v.Source, err = ParseSource(rawSource)
	if err != nil {
		return Version{}, fmt.Errorf("version %s: %w", v.ID, err)
	}
	if commentID.Valid {
		v.OriginatingCommentID = &commentID.String
	}
	if summary.Valid {
		v.Summary = &summary.String
	}
	return v, nil
}
