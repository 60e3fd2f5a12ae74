package recruiters

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores recruiters in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Recruiter
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Recruiter)}
}

// Create stores the recruiter.
func (r *MemoryRepo) Create(ctx context.Context, rec Recruiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

// GetByID returns a recruiter by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, recruiterID string) (Recruiter, error) {
	if err := ctx.Err(); err != nil {
		return Recruiter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[recruiterID]
	if !ok {
		return Recruiter{}, ErrNotFound
	}
	return rec, nil
}

// List returns all recruiters ordered by creation time, then name.
func (r *MemoryRepo) List(ctx context.Context) ([]Recruiter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Recruiter, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus flips the availability status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, recruiterID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[recruiterID]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	r.byID[recruiterID] = rec
	return nil
}

// Count returns the number of stored recruiters.
func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

var _ Repo = (*MemoryRepo)(nil)
