package jobs

import (
	"fmt"
	"time"
)

// Status is the integration job lifecycle state. pending -> processing
// -> completed or failed. Terminal states never change.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus rejects strings outside the closed set.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown job status %q", raw)
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Job struct {
	ID           string     `json:"id"`
	CommentID    string     `json:"commentId"`
	PlanID       string     `json:"planId"`
	RequesterID  string     `json:"requesterId"`
	Status       Status     `json:"status"`
	ErrorCode    *string    `json:"errorCode,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
