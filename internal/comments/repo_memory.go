package comments

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	comments map[string]Comment
	messages map[string][]DiscussionMessage
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		comments: make(map[string]Comment),
		messages: make(map[string][]DiscussionMessage),
	}
}

func (r *MemoryRepo) Create(_ context.Context, comment Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = comment.CreatedAt
	r.comments[comment.ID] = comment
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, commentID string) (Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[commentID]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByPlan(_ context.Context, planID string) ([]Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Comment
	for _, c := range r.comments {
		if c.PlanID == planID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Resolve(_ context.Context, commentID string, status Status, resolvedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return ErrNotFound
	}
	if !c.Status.CanResolve() {
		return ErrInvalidState
	}
	c.Status = status
	c.ResolvedAt = &at
	c.ResolvedBy = &resolvedBy
	c.UpdatedAt = at
	r.comments[commentID] = c
	return nil
}

func (r *MemoryRepo) SetDebating(_ context.Context, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil
	}
	if c.Status == StatusPending {
		c.Status = StatusDebating
		c.UpdatedAt = time.Now().UTC()
		r.comments[commentID] = c
	}
	return nil
}

func (r *MemoryRepo) AddMessage(_ context.Context, msg DiscussionMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.messages[msg.CommentID] = append(r.messages[msg.CommentID], msg)
	return nil
}

func (r *MemoryRepo) ListMessages(_ context.Context, commentID string) ([]DiscussionMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.messages[commentID]
	out := make([]DiscussionMessage, len(stored))
	copy(out, stored)
	return out, nil
}
