package comments

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("comment not found")
	ErrForbidden    = errors.New("only the plan owner may resolve comments")
	ErrInvalidState = errors.New("comment is already resolved")
)

type Repo interface {
	Create(ctx context.Context, comment Comment) error
	GetByID(ctx context.Context, commentID string) (Comment, error)
	// ListByPlan returns all comments for a plan, oldest first.
	ListByPlan(ctx context.Context, planID string) ([]Comment, error)
	// Resolve sets a terminal status. It fails with ErrInvalidState if
	// the stored status is already terminal, so concurrent resolvers
	// cannot both win.
	Resolve(ctx context.Context, commentID string, status Status, resolvedBy string, at time.Time) error
	// SetDebating moves pending to debating. A no-op for any other
	// stored status.
	SetDebating(ctx context.Context, commentID string) error
	AddMessage(ctx context.Context, msg DiscussionMessage) error
	// ListMessages returns the discussion transcript, oldest first.
	ListMessages(ctx context.Context, commentID string) ([]DiscussionMessage, error)
}
