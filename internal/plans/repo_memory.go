package plans

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planreview-backend/internal/versions"
)

// MemoryRepo keeps plans in memory. When a versions.MemoryRepo is
// attached, Create appends the initial snapshot there, mirroring the
// Postgres transaction.
type MemoryRepo struct {
	mu       sync.RWMutex
	plans    map[string]Plan
	Versions *versions.MemoryRepo
}

func NewMemoryRepo(versionRepo *versions.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{
		plans:    make(map[string]Plan),
		Versions: versionRepo,
	}
}

func (r *MemoryRepo) Create(_ context.Context, plan Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = plan.CreatedAt
	plan.CurrentVersion = 1
	r.plans[plan.ID] = plan
	if r.Versions != nil {
		r.Versions.Append(versions.Version{
			ID:            uuid.NewString(),
			PlanID:        plan.ID,
			VersionNumber: 1,
			Content:       plan.Content,
			ContentHash:   plan.ContentHash,
			Source:        versions.SourceManual,
			CreatedBy:     plan.OwnerID,
			CreatedAt:     plan.CreatedAt,
		})
	}
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, planID string) (Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[planID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return plan, nil
}

func (r *MemoryRepo) ListByOwner(_ context.Context, ownerID string) ([]Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Plan
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID {
			out = append(out, plan.Meta())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Exists(_ context.Context, planID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plans[planID]
	return ok, nil
}

func (r *MemoryRepo) FindByHash(_ context.Context, ownerID, contentHash string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID && plan.ContentHash == contentHash {
			return plan.ID, true, nil
		}
	}
	return "", false, nil
}

// Update overwrites a stored plan. Used by the job commit path in
// memory mode while it holds the commit lock.
func (r *MemoryRepo) Update(plan Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = plan
}
