package comments

import (
	"fmt"
	"time"
)

// Status is the comment resolution state. Transitions:
// pending -> debating (first discussion message),
// pending/debating -> accepted or rejected. Accepted and rejected are
// terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusDebating Status = "debating"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ParseStatus rejects strings outside the closed set.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusDebating, StatusAccepted, StatusRejected:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown comment status %q", raw)
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanResolve reports whether the comment may still be accepted or rejected.
func (s Status) CanResolve() bool {
	return s == StatusPending || s == StatusDebating
}

type Comment struct {
	ID          string     `json:"id"`
	PlanID      string     `json:"planId"`
	AuthorID    string     `json:"authorId"`
	Body        string     `json:"body"`
	LineStart   int        `json:"lineStart"`
	LineEnd     int        `json:"lineEnd"`
	AnchorText  string     `json:"anchorText"`
	PlanVersion int        `json:"planVersion"`
	Status      Status     `json:"status"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  *string    `json:"resolvedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type DiscussionMessage struct {
	ID        string    `json:"id"`
	CommentID string    `json:"commentId"`
	AuthorID  string    `json:"authorId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
