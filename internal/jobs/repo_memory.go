package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planreview-backend/internal/comments"
	"planreview-backend/internal/plans"
	"planreview-backend/internal/versions"
)

// MemoryRepo mirrors the Postgres job semantics over the in-memory
// stores, including the one-live-job-per-comment rule and the atomic
// commit.
type MemoryRepo struct {
	mu       sync.Mutex
	jobs     map[string]Job
	Plans    *plans.MemoryRepo
	Comments *comments.MemoryRepo
	Versions *versions.MemoryRepo
}

func NewMemoryRepo(planRepo *plans.MemoryRepo, commentRepo *comments.MemoryRepo, versionRepo *versions.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{
		jobs:     make(map[string]Job),
		Plans:    planRepo,
		Comments: commentRepo,
		Versions: versionRepo,
	}
}

func (r *MemoryRepo) Create(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.jobs {
		if existing.CommentID == job.CommentID && !existing.Status.IsTerminal() {
			return ErrLiveJobExists
		}
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, jobID string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (r *MemoryRepo) ClaimNextPending(_ context.Context) (Job, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []Job
	for _, j := range r.jobs {
		if j.Status == StatusPending {
			pending = append(pending, j)
		}
	}
	if len(pending) == 0 {
		return Job{}, false, nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	claimed := pending[0]
	now := time.Now().UTC()
	claimed.Status = StatusProcessing
	claimed.StartedAt = &now
	r.jobs[claimed.ID] = claimed
	return claimed, true, nil
}

func (r *MemoryRepo) MarkFailed(_ context.Context, jobID, errorCode, errorMessage string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok || j.Status.IsTerminal() {
		return nil
	}
	j.Status = StatusFailed
	j.ErrorCode = &errorCode
	j.ErrorMessage = &errorMessage
	j.CompletedAt = &at
	r.jobs[jobID] = j
	return nil
}

func (r *MemoryRepo) CommitIntegration(ctx context.Context, commit Commit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, err := r.Plans.GetByID(ctx, commit.PlanID)
	if err != nil {
		return err
	}
	if plan.CurrentVersion != commit.ExpectedVersion {
		return ErrVersionConflict
	}

	comment, err := r.Comments.GetByID(ctx, commit.CommentID)
	if err != nil {
		return err
	}
	if !comment.Status.CanResolve() {
		return ErrCommentResolved
	}

	next := r.Versions.MaxNumber(commit.PlanID) + 1
	contentHash := plans.HashContent(commit.NewContent)

	plan.Content = commit.NewContent
	plan.ContentHash = contentHash
	plan.CurrentVersion = next
	plan.FileSizeBytes = int64(len(commit.NewContent))
	plan.UpdatedAt = commit.Now
	r.Plans.Update(plan)

	summary := commit.Summary
	commentID := commit.CommentID
	r.Versions.Append(versions.Version{
		ID:                   uuid.NewString(),
		PlanID:               commit.PlanID,
		VersionNumber:        next,
		Content:              commit.NewContent,
		ContentHash:          contentHash,
		Source:               commit.Source,
		OriginatingCommentID: &commentID,
		Summary:              &summary,
		CreatedBy:            commit.RequesterID,
		CreatedAt:            commit.Now,
	})

	if err := r.Comments.Resolve(ctx, commit.CommentID, comments.StatusAccepted, commit.RequesterID, commit.Now); err != nil {
		return err
	}

	j, ok := r.jobs[commit.JobID]
	if ok && j.Status == StatusProcessing {
		j.Status = StatusCompleted
		completedAt := commit.Now
		j.CompletedAt = &completedAt
		r.jobs[commit.JobID] = j
	}
	return nil
}
