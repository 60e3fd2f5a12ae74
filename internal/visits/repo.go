package visits

import "context"

// Repo defines persistence operations for walk-in visits.
type Repo interface {
	Create(ctx context.Context, visit Visit) error
	List(ctx context.Context, kind string) ([]Visit, error)
}
