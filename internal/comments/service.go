package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"planreview-backend/internal/plans"
	"planreview-backend/internal/shared/telemetry"
)

var ErrInvalidAnchor = errors.New("anchor lines out of range")

// PlanLoader provides the plan content comments anchor into.
type PlanLoader interface {
	GetByID(ctx context.Context, planID string) (plans.Plan, error)
}

type CreateRequest struct {
	Body      string `json:"body"`
	LineStart int    `json:"lineStart"`
	LineEnd   int    `json:"lineEnd"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.Length(1, 10000)),
		validation.Field(&r.LineStart, validation.Required, validation.Min(1)),
		validation.Field(&r.LineEnd, validation.Required, validation.Min(1)),
	)
}

type Service struct {
	Repo  Repo
	Plans PlanLoader
	Now   func() time.Time
}

func NewService(repo Repo, planLoader PlanLoader) *Service {
	return &Service{Repo: repo, Plans: planLoader, Now: time.Now}
}

// Create anchors a comment to a line range of the plan's current
// content. The anchored text is snapshotted so later revisions do not
// shift what the comment referred to.
func (s *Service) Create(ctx context.Context, planID, authorID string, req CreateRequest) (Comment, error) {
	if err := req.Validate(); err != nil {
		return Comment{}, fmt.Errorf("%w", err)
	}
	if req.LineEnd < req.LineStart {
		return Comment{}, fmt.Errorf("%w: lineEnd before lineStart", ErrInvalidAnchor)
	}

	plan, err := s.Plans.GetByID(ctx, planID)
	if err != nil {
		return Comment{}, err
	}

	lines := strings.Split(plan.Content, "\n")
	if req.LineStart > len(lines) || req.LineEnd > len(lines) {
		return Comment{}, fmt.Errorf("%w: plan has %d lines", ErrInvalidAnchor, len(lines))
	}

	comment := Comment{
		ID:          uuid.NewString(),
		PlanID:      planID,
		AuthorID:    authorID,
		Body:        req.Body,
		LineStart:   req.LineStart,
		LineEnd:     req.LineEnd,
		AnchorText:  strings.Join(lines[req.LineStart-1:req.LineEnd], "\n"),
		PlanVersion: plan.CurrentVersion,
		Status:      StatusPending,
	}
	if err := s.Repo.Create(ctx, comment); err != nil {
		return Comment{}, err
	}
	telemetry.Info("comment.created", map[string]any{
		"commentId": comment.ID,
		"planId":    planID,
		"lines":     fmt.Sprintf("%d-%d", req.LineStart, req.LineEnd),
	})
	return comment, nil
}

// Reject resolves a comment without touching the plan. Owner-only, and
// only from a non-terminal status.
func (s *Service) Reject(ctx context.Context, commentID, requesterID string) (Comment, error) {
	comment, err := s.Repo.GetByID(ctx, commentID)
	if err != nil {
		return Comment{}, err
	}
	plan, err := s.Plans.GetByID(ctx, comment.PlanID)
	if err != nil {
		return Comment{}, err
	}
	if plan.OwnerID != requesterID {
		return Comment{}, ErrForbidden
	}
	if !comment.Status.CanResolve() {
		return Comment{}, ErrInvalidState
	}
	if err := s.Repo.Resolve(ctx, commentID, StatusRejected, requesterID, s.Now().UTC()); err != nil {
		return Comment{}, err
	}
	return s.Repo.GetByID(ctx, commentID)
}

// Discuss appends a message to the comment's thread. The message is
// always stored, whatever the comment's status; a pending comment moves
// to debating on its first message.
func (s *Service) Discuss(ctx context.Context, commentID, authorID, message string) (DiscussionMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return DiscussionMessage{}, validation.NewError("validation_required", "message cannot be blank")
	}

	comment, err := s.Repo.GetByID(ctx, commentID)
	if err != nil {
		return DiscussionMessage{}, err
	}

	msg := DiscussionMessage{
		ID:        uuid.NewString(),
		CommentID: commentID,
		AuthorID:  authorID,
		Message:   message,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.Repo.AddMessage(ctx, msg); err != nil {
		return DiscussionMessage{}, err
	}
	if comment.Status == StatusPending {
		if err := s.Repo.SetDebating(ctx, commentID); err != nil {
			return DiscussionMessage{}, err
		}
	}
	return msg, nil
}

func (s *Service) Get(ctx context.Context, commentID string) (Comment, error) {
	return s.Repo.GetByID(ctx, commentID)
}

func (s *Service) ListByPlan(ctx context.Context, planID string) ([]Comment, error) {
	return s.Repo.ListByPlan(ctx, planID)
}

func (s *Service) Transcript(ctx context.Context, commentID string) ([]DiscussionMessage, error) {
	return s.Repo.ListMessages(ctx, commentID)
}
