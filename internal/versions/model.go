package versions

import (
	"fmt"
	"time"
)

// Source records how a version came to exist.
type Source string

const (
	SourceManual           Source = "manual"
	SourceAIFromComment    Source = "ai_from_comment"
	SourceAIFromDiscussion Source = "ai_from_discussion"
)

// ParseSource rejects strings outside the closed set.
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case SourceManual, SourceAIFromComment, SourceAIFromDiscussion:
		return Source(raw), nil
	}
	return "", fmt.Errorf("unknown version source %q", raw)
}

type Version struct {
	ID                   string    `json:"id"`
	PlanID               string    `json:"planId"`
	VersionNumber        int       `json:"versionNumber"`
	Content              string    `json:"content,omitempty"`
	ContentHash          string    `json:"contentHash"`
	Source               Source    `json:"source"`
	OriginatingCommentID *string   `json:"originatingCommentId,omitempty"`
	Summary              *string   `json:"summary,omitempty"`
	CreatedBy            string    `json:"createdBy"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Meta strips the content payload for listing responses.
func (v Version) Meta() Version {
	v.Content = ""
	return v
}
