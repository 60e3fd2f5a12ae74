package exclusions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores the exclusion list in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string]Entry
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byName: make(map[string]Entry)}
}

// ReplaceAll swaps the whole list in one step.
func (r *MemoryRepo) ReplaceAll(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	byName := make(map[string]Entry, len(entries))
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	for _, e := range copied {
		byName[NormalizeName(e.Name)] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = copied
	r.byName = byName
	return nil
}

// List returns the list sorted by name.
func (r *MemoryRepo) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindByName looks up an entry by normalized full name.
func (r *MemoryRepo) FindByName(ctx context.Context, normalizedName string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byName[normalizedName]
	return entry, ok, nil
}

// Clear removes every entry.
func (r *MemoryRepo) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.byName = make(map[string]Entry)
	return nil
}

// Count returns the number of entries.
func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

var _ Repo = (*MemoryRepo)(nil)
