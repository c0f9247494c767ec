package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planreview-backend/internal/comments"
	"planreview-backend/internal/integration"
	"planreview-backend/internal/notify"
	"planreview-backend/internal/plans"
	"planreview-backend/internal/ratelimit"
	"planreview-backend/internal/shared/metrics"
	"planreview-backend/internal/shared/telemetry"
	"planreview-backend/internal/versions"
)

const (
	acceptAction    = "accept_comment"
	summaryMaxChars = 100
)

// Coordinator owns the accept operation and drives claimed jobs
// through the integration pipeline.
type Coordinator struct {
	Jobs       Repo
	Comments   comments.Repo
	Plans      plans.Repo
	Limiter    ratelimit.Limiter
	Integrator *integration.Integrator
	Notifier   notify.Notifier

	AcceptLimit  int
	AcceptWindow time.Duration
	Now          func() time.Time

	wake chan struct{}
}

func NewCoordinator(jobRepo Repo, commentRepo comments.Repo, planRepo plans.Repo, limiter ratelimit.Limiter, integrator *integration.Integrator, notifier notify.Notifier, acceptLimit int, acceptWindow time.Duration) *Coordinator {
	return &Coordinator{
		Jobs:         jobRepo,
		Comments:     commentRepo,
		Plans:        planRepo,
		Limiter:      limiter,
		Integrator:   integrator,
		Notifier:     notifier,
		AcceptLimit:  acceptLimit,
		AcceptWindow: acceptWindow,
		Now:          time.Now,
		wake:         make(chan struct{}, 1),
	}
}

// Accept validates the request and enqueues an integration job. The
// comment itself is untouched here; it flips to accepted only when the
// job commits.
func (c *Coordinator) Accept(ctx context.Context, commentID, requesterID string) (Job, error) {
	comment, err := c.Comments.GetByID(ctx, commentID)
	if err != nil {
		return Job{}, err
	}
	plan, err := c.Plans.GetByID(ctx, comment.PlanID)
	if err != nil {
		return Job{}, err
	}
	if plan.OwnerID != requesterID {
		return Job{}, comments.ErrForbidden
	}
	if !comment.Status.CanResolve() {
		return Job{}, comments.ErrInvalidState
	}

	allowed, err := c.Limiter.TryConsume(ctx, requesterID, acceptAction, c.AcceptLimit, c.AcceptWindow)
	if err != nil {
		return Job{}, fmt.Errorf("rate limiter: %w", err)
	}
	if !allowed {
		return Job{}, ErrRateLimited
	}

	job := Job{
		ID:          uuid.NewString(),
		CommentID:   commentID,
		PlanID:      comment.PlanID,
		RequesterID: requesterID,
		Status:      StatusPending,
		CreatedAt:   c.Now().UTC(),
	}
	if err := c.Jobs.Create(ctx, job); err != nil {
		return Job{}, err
	}

	telemetry.Info("job.enqueued", map[string]any{
		"jobId":     job.ID,
		"commentId": commentID,
		"planId":    comment.PlanID,
	})
	c.Wake()
	return job, nil
}

// Wake nudges an idle worker without blocking the caller.
func (c *Coordinator) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// WakeSignal is the channel workers wait on between polls.
func (c *Coordinator) WakeSignal() <-chan struct{} {
	return c.wake
}

// ProcessNext claims and fully processes one pending job. ok is false
// when the queue was empty.
func (c *Coordinator) ProcessNext(ctx context.Context) (bool, error) {
	job, ok, err := c.Jobs.ClaimNextPending(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	c.ProcessJob(ctx, job)
	return true, nil
}

// ProcessJob runs a claimed job to a terminal status. It never returns
// an error: every failure path lands on the job row, where the
// requester polls for it.
func (c *Coordinator) ProcessJob(ctx context.Context, job Job) {
	metrics.IncJobStarted()
	started := time.Now()
	defer func() {
		metrics.ObserveJobDurationMs(float64(time.Since(started).Milliseconds()))
	}()

	comment, err := c.Comments.GetByID(ctx, job.CommentID)
	if err != nil {
		c.fail(ctx, job, ErrorCodeInternal, fmt.Sprintf("load comment: %v", err))
		return
	}
	plan, err := c.Plans.GetByID(ctx, job.PlanID)
	if err != nil {
		c.fail(ctx, job, ErrorCodeInternal, fmt.Sprintf("load plan: %v", err))
		return
	}
	transcript, err := c.Comments.ListMessages(ctx, job.CommentID)
	if err != nil {
		c.fail(ctx, job, ErrorCodeInternal, fmt.Sprintf("load discussion: %v", err))
		return
	}

	input := integration.Input{
		Document:  plan.Content,
		LineStart: comment.LineStart,
		LineEnd:   comment.LineEnd,
		Feedback:  comment.Body,
	}
	for _, msg := range transcript {
		input.Transcript = append(input.Transcript, msg.AuthorID+": "+msg.Message)
	}

	newContent, err := c.Integrator.Integrate(ctx, input)
	if err != nil {
		c.fail(ctx, job, ErrorCodeUpstream, err.Error())
		return
	}

	source := versions.SourceAIFromComment
	if len(transcript) > 0 {
		source = versions.SourceAIFromDiscussion
	}

	commit := Commit{
		JobID:           job.ID,
		CommentID:       job.CommentID,
		PlanID:          job.PlanID,
		RequesterID:     job.RequesterID,
		NewContent:      newContent,
		Summary:         buildSummary(comment.LineStart, comment.LineEnd, comment.Body),
		Source:          source,
		ExpectedVersion: plan.CurrentVersion,
		Now:             c.Now().UTC(),
	}
	if err := c.Jobs.CommitIntegration(ctx, commit); err != nil {
		switch {
		case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrCommentResolved):
			metrics.IncJobConflict()
			c.fail(ctx, job, ErrorCodeVersionConflict, err.Error())
		default:
			c.fail(ctx, job, ErrorCodeStorage, err.Error())
		}
		return
	}

	metrics.IncJobCompleted()
	telemetry.Info("job.completed", map[string]any{
		"jobId":     job.ID,
		"commentId": job.CommentID,
		"planId":    job.PlanID,
		"source":    string(source),
	})
	c.notify(ctx, job, "Comment integrated",
		fmt.Sprintf("Your accepted comment was integrated into the plan (lines %d-%d).", comment.LineStart, comment.LineEnd))
}

func (c *Coordinator) fail(ctx context.Context, job Job, code, message string) {
	metrics.IncJobFailed()
	telemetry.Error("job.failed", map[string]any{
		"jobId":     job.ID,
		"commentId": job.CommentID,
		"errorCode": code,
		"error":     message,
	})
	if err := c.Jobs.MarkFailed(ctx, job.ID, code, message, c.Now().UTC()); err != nil {
		telemetry.Error("job.mark_failed_error", map[string]any{
			"jobId": job.ID,
			"error": err.Error(),
		})
	}
	c.notify(ctx, job, "Integration failed",
		fmt.Sprintf("The integration job for your accepted comment failed (%s).", code))
}

func (c *Coordinator) notify(ctx context.Context, job Job, title, message string) {
	if c.Notifier == nil {
		return
	}
	link := "/plans/" + job.PlanID
	if err := c.Notifier.Notify(ctx, job.RequesterID, title, message, link); err != nil {
		telemetry.Warn("notify.failed", map[string]any{
			"jobId": job.ID,
			"error": err.Error(),
		})
	}
}

func buildSummary(lineStart, lineEnd int, feedback string) string {
	truncated := feedback
	if len(truncated) > summaryMaxChars {
		truncated = truncated[:summaryMaxChars]
	}
	return fmt.Sprintf("AI revision of lines %d-%d: %s", lineStart, lineEnd, truncated)
}
