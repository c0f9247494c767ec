package jobs

import (
	"context"
	"time"

	"planreview-backend/internal/versions"
)

// Commit carries everything the one-transaction integration commit
// needs: the revised document plus the identifiers to update plan,
// version history, comment, and job together.
type Commit struct {
	JobID           string
	CommentID       string
	PlanID          string
	RequesterID     string
	NewContent      string
	Summary         string
	Source          versions.Source
	ExpectedVersion int
	Now             time.Time
}

type Repo interface {
	// Create inserts a pending job. Returns ErrLiveJobExists when the
	// comment already has a pending or processing job.
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	// ClaimNextPending atomically moves the oldest pending job to
	// processing and returns it. ok is false when nothing is pending.
	ClaimNextPending(ctx context.Context) (job Job, ok bool, err error)
	MarkFailed(ctx context.Context, jobID, errorCode, errorMessage string, at time.Time) error
	// CommitIntegration applies the revision in a single transaction:
	// plan content and version counter, new version row, comment
	// accepted, job completed. Returns ErrVersionConflict if the plan
	// moved past ExpectedVersion, ErrCommentResolved if the comment is
	// no longer resolvable.
	CommitIntegration(ctx context.Context, commit Commit) error
}
