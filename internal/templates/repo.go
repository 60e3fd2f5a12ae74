package templates

import "context"

// Repo defines persistence operations for row templates.
type Repo interface {
	Create(ctx context.Context, tmpl Template) error
	GetByID(ctx context.Context, templateID string) (Template, error)
	List(ctx context.Context, activeOnly bool) ([]Template, error)
	Update(ctx context.Context, tmpl Template) error
	Delete(ctx context.Context, templateID string) error
}
