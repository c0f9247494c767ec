// Package notify delivers best-effort notifications. Delivery failures
// are logged and swallowed; the review pipeline never depends on them.
package notify

import (
	"context"

	"planreview-backend/internal/shared/telemetry"
)

type Notifier interface {
	Notify(ctx context.Context, userID, title, message, link string) error
}

// LogNotifier writes notifications to the log stream. It stands in for
// a real delivery channel in development and tests.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID, title, message, link string) error {
	telemetry.Info("notify", map[string]any{
		"userId":  userID,
		"title":   title,
		"message": message,
		"link":    link,
	})
	return nil
}
