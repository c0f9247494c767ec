// Package ratelimit enforces per-user fixed-window quotas on named
// actions, independent of the request-level HTTP throttle.
package ratelimit

import (
	"context"
	"time"
)

// Limiter answers whether a user may perform an action now. A true
// result consumes one unit of the window's quota.
type Limiter interface {
	TryConsume(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error)
}
