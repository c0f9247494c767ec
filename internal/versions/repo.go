package versions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("version not found")

type Repo interface {
	// ListByPlan returns version metadata (no content), newest first.
	ListByPlan(ctx context.Context, planID string) ([]Version, error)
	// GetByNumber returns a full snapshot including content.
	GetByNumber(ctx context.Context, planID string, number int) (Version, error)
}
