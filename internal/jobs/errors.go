package jobs

import "errors"

var (
	ErrNotFound = errors.New("job not found")
	// ErrLiveJobExists means the comment already has a pending or
	// processing job.
	ErrLiveJobExists = errors.New("a live integration job already exists for this comment")
	ErrRateLimited   = errors.New("accept rate limit exceeded")
	// ErrVersionConflict means the plan advanced between the worker
	// loading it and committing the revision.
	ErrVersionConflict = errors.New("plan version changed during integration")
	// ErrCommentResolved means the comment reached a terminal status
	// while its job was processing.
	ErrCommentResolved = errors.New("comment resolved during integration")
)

// Error codes recorded on failed job rows.
const (
	ErrorCodeUpstream        = "UPSTREAM_FAILURE"
	ErrorCodeVersionConflict = "VERSION_CONFLICT"
	ErrorCodeStorage         = "STORAGE_FAILURE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)
