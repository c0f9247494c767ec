package plans

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	MaxContentBytes = 1 << 20 // 1 MiB
	MaxTitleLength  = 500
)

type Plan struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Title          string    `json:"title"`
	Content        string    `json:"content,omitempty"`
	ContentHash    string    `json:"contentHash"`
	CurrentVersion int       `json:"currentVersion"`
	FileSizeBytes  int64     `json:"fileSizeBytes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Meta strips the content payload for listing responses.
func (p Plan) Meta() Plan {
	p.Content = ""
	return p
}

// HashContent returns the canonical sha256 hex digest used for
// duplicate detection and version integrity.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
