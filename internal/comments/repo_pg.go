package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, comment Comment) error {
	const query = `
INSERT INTO plan_comments (id, plan_id, author_id, body, line_start, line_end, anchor_text, plan_version, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		comment.ID,
		comment.PlanID,
		comment.AuthorID,
		comment.Body,
		comment.LineStart,
		comment.LineEnd,
		comment.AnchorText,
		comment.PlanVersion,
		string(comment.Status),
	)
	return err
}

const commentColumns = `id, plan_id, author_id, body, line_start, line_end, anchor_text, plan_version, status, resolved_at, resolved_by, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var c Comment
	var rawStatus string
	var resolvedAt sql.NullTime
	var resolvedBy sql.NullString
	err := row.Scan(
		&c.ID,
		&c.PlanID,
		&c.AuthorID,
		&c.Body,
		&c.LineStart,
		&c.LineEnd,
		&c.AnchorText,
		&c.PlanVersion,
		&rawStatus,
		&resolvedAt,
		&resolvedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Comment{}, err
	}
	c.Status, err = ParseStatus(rawStatus)
	if err != nil {
		return Comment{}, fmt.Errorf("comment %s: %w", c.ID, err)
	}
	if resolvedAt.Valid {
		c.ResolvedAt = &resolvedAt.Time
	}
	if resolvedBy.Valid {
		c.ResolvedBy = &resolvedBy.String
	}
	return c, nil
}

func (r *PGRepo) GetByID(ctx context.Context, commentID string) (Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM plan_comments WHERE id = $1 LIMIT 1`
	c, err := scanComment(r.DB.QueryRowContext(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (r *PGRepo) ListByPlan(ctx context.Context, planID string) ([]Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM plan_comments WHERE plan_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Resolve(ctx context.Context, commentID string, status Status, resolvedBy string, at time.Time) error {
	// The status guard in the WHERE clause makes resolution atomic.
	const query = `
UPDATE plan_comments
SET status = $2, resolved_at = $3, resolved_by = $4, updated_at = now()
WHERE id = $1 AND status IN ('pending', 'debating')`
	res, err := r.DB.ExecContext(ctx, query, commentID, string(status), at, resolvedBy)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, commentID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrInvalidState
	}
	return nil
}

func (r *PGRepo) SetDebating(ctx context.Context, commentID string) error {
	const query = `
UPDATE plan_comments
SET status = 'debating', updated_at = now()
WHERE id = $1 AND status = 'pending'`
	_, err := r.DB.ExecContext(ctx, query, commentID)
	return err
}

func (r *PGRepo) AddMessage(ctx context.Context, msg DiscussionMessage) error {
	const query = `
INSERT INTO discussion_messages (id, comment_id, author_id, message, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := r.DB.ExecContext(ctx, query,
		msg.ID,
		msg.CommentID,
		msg.AuthorID,
		msg.Message,
	)
	return err
}

func (r *PGRepo) ListMessages(ctx context.Context, commentID string) ([]DiscussionMessage, error) {
	const query = `
SELECT id, comment_id, author_id, message, created_at
FROM discussion_messages
WHERE comment_id = $1
ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DiscussionMessage
	for rows.Next() {
		var msg DiscussionMessage
		if err := rows.Scan(&msg.ID, &msg.CommentID, &msg.AuthorID, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
