package versions

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	byPlan map[string][]Version
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byPlan: make(map[string][]Version)}
}

// Append records a snapshot. Callers own version numbering; the plan
// create and job commit paths call this while holding their own locks.
func (r *MemoryRepo) Append(v Version) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlan[v.PlanID] = append(r.byPlan[v.PlanID], v)
}

func (r *MemoryRepo) ListByPlan(_ context.Context, planID string) ([]Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byPlan[planID]
	out := make([]Version, 0, len(stored))
	for _, v := range stored {
		out = append(out, v.Meta())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

func (r *MemoryRepo) GetByNumber(_ context.Context, planID string, number int) (Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.byPlan[planID] {
		if v.VersionNumber == number {
			return v, nil
		}
	}
	return Version{}, ErrNotFound
}

// MaxNumber returns the highest version number stored for a plan.
func (r *MemoryRepo) MaxNumber(planID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, v := range r.byPlan[planID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max
}
