package visits

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores visits in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	visits []Visit
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create stores the visit.
func (r *MemoryRepo) Create(ctx context.Context, visit Visit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, visit)
	return nil
}

// List returns visits newest-first, optionally filtered by kind.
func (r *MemoryRepo) List(ctx context.Context, kind string) ([]Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Visit
	for _, v := range r.visits {
		if kind != "" && v.Kind != kind {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
