package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"planreview-backend/internal/plans"
)

const pgUniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO integration_jobs (id, comment_id, plan_id, requester_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.CommentID,
		job.PlanID,
		job.RequesterID,
		string(job.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrLiveJobExists
		}
		return err
	}
	return nil
}

const jobColumns = `id, comment_id, plan_id, requester_id, status, error_code, error_message, created_at, started_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (Job, error) {
	var j Job
	var rawStatus string
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	err := row.Scan(
		&j.ID,
		&j.CommentID,
		&j.PlanID,
		&j.RequesterID,
		&rawStatus,
		&errorCode,
		&errorMessage,
		&j.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return Job{}, err
	}
	j.Status, err = ParseStatus(rawStatus)
	if err != nil {
		return Job{}, fmt.Errorf("job %s: %w", j.ID, err)
	}
	if errorCode.Valid {
		j.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		j.ErrorMessage = &errorMessage.String
	}
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	return j, nil
}

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM integration_jobs WHERE id = $1 LIMIT 1`
	j, err := scanJob(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

func (r *PGRepo) ClaimNextPending(ctx context.Context) (Job, bool, error) {
	// SKIP LOCKED lets concurrent workers claim distinct jobs without
	// blocking each other.
	query := `
UPDATE integration_jobs
SET status = 'processing', started_at = now()
WHERE id = (
    SELECT id FROM integration_jobs
    WHERE status = 'pending'
    ORDER BY created_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING ` + jobColumns
	j, err := scanJob(r.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, false, nil
		}
		return Job{}, false, err
	}
	return j, true, nil
}

func (r *PGRepo) MarkFailed(ctx context.Context, jobID, errorCode, errorMessage string, at time.Time) error {
	const query = `
UPDATE integration_jobs
SET status = 'failed', error_code = $2, error_message = $3, completed_at = $4
WHERE id = $1 AND status IN ('pending', 'processing')`
	_, err := r.DB.ExecContext(ctx, query, jobID, errorCode, errorMessage, at)
	return err
}

func (r *PGRepo) CommitIntegration(ctx context.Context, commit Commit) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the plan row for the whole commit so concurrent commits on
	// the same plan serialize.
	const lockPlan = `SELECT current_version FROM plans WHERE id = $1 FOR UPDATE`
	var currentVersion int
	if err := tx.QueryRowContext(ctx, lockPlan, commit.PlanID).Scan(&currentVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("plan %s vanished during integration", commit.PlanID)
		}
		return err
	}
	if currentVersion != commit.ExpectedVersion {
		return ErrVersionConflict
	}

	const nextNumber = `SELECT COALESCE(MAX(version_number), 0) + 1 FROM plan_versions WHERE plan_id = $1`
	var next int
	if err := tx.QueryRowContext(ctx, nextNumber, commit.PlanID).Scan(&next); err != nil {
		return err
	}

	contentHash := plans.HashContent(commit.NewContent)

	const updatePlan = `
UPDATE plans
SET content = $2, content_hash = $3, current_version = $4, file_size_bytes = $5, updated_at = $6
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updatePlan,
		commit.PlanID,
		commit.NewContent,
		contentHash,
		next,
		int64(len(commit.NewContent)),
		commit.Now,
	); err != nil {
		return err
	}

	const insertVersion = `
INSERT INTO plan_versions (id, plan_id, version_number, content, content_hash, source, originating_comment_id, summary, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, insertVersion,
		uuid.NewString(),
		commit.PlanID,
		next,
		commit.NewContent,
		contentHash,
		string(commit.Source),
		commit.CommentID,
		commit.Summary,
		commit.RequesterID,
		commit.Now,
	); err != nil {
		return err
	}

	const acceptComment = `
UPDATE plan_comments
SET status = 'accepted', resolved_at = $2, resolved_by = $3, updated_at = $2
WHERE id = $1 AND status IN ('pending', 'debating')`
	res, err := tx.ExecContext(ctx, acceptComment, commit.CommentID, commit.Now, commit.RequesterID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCommentResolved
	}

	const completeJob = `
UPDATE integration_jobs
SET status = 'completed', completed_at = $2
WHERE id = $1 AND status = 'processing'`
	if _, err := tx.ExecContext(ctx, completeJob, commit.JobID, commit.Now); err != nil {
		return err
	}

	return tx.Commit()
}
