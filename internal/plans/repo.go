package plans

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("plan not found")
	ErrDuplicate = errors.New("plan with identical content already exists")
)

type Repo interface {
	// Create stores the plan and its initial version atomically.
	Create(ctx context.Context, plan Plan) error
	GetByID(ctx context.Context, planID string) (Plan, error)
	// ListByOwner returns plan metadata (no content), newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Plan, error)
	Exists(ctx context.Context, planID string) (bool, error)
	// FindByHash reports whether the owner already has a plan with this
	// content hash.
	FindByHash(ctx context.Context, ownerID, contentHash string) (string, bool, error)
}
