package templates

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores templates in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Template
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Template)}
}

// Create stores the template.
func (r *MemoryRepo) Create(ctx context.Context, tmpl Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[tmpl.ID] = cloneTemplate(tmpl)
	return nil
}

// GetByID returns a template by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, templateID string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.byID[templateID]
	if !ok {
		return Template{}, ErrNotFound
	}
	return cloneTemplate(tmpl), nil
}

// List returns templates ordered newest-first, optionally filtered to active ones.
func (r *MemoryRepo) List(ctx context.Context, activeOnly bool) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.byID))
	for _, tmpl := range r.byID {
		if activeOnly && !tmpl.IsActive {
			continue
		}
		out = append(out, cloneTemplate(tmpl))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces an existing template.
func (r *MemoryRepo) Update(ctx context.Context, tmpl Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[tmpl.ID]; !ok {
		return ErrNotFound
	}
	r.byID[tmpl.ID] = cloneTemplate(tmpl)
	return nil
}

// Delete removes a template.
func (r *MemoryRepo) Delete(ctx context.Context, templateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[templateID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, templateID)
	return nil
}

func cloneTemplate(tmpl Template) Template {
	out := tmpl
	out.Columns = make([]Column, len(tmpl.Columns))
	copy(out.Columns, tmpl.Columns)
	for i, col := range out.Columns {
		if col.Options != nil {
			opts := make([]string, len(col.Options))
			copy(opts, col.Options)
			out.Columns[i].Options = opts
		}
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
