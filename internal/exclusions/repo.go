package exclusions

import "context"

// Repo defines persistence operations for the exclusion list. Uploads replace
// the whole list; screening reads it by normalized name.
type Repo interface {
	ReplaceAll(ctx context.Context, entries []Entry) error
	List(ctx context.Context) ([]Entry, error)
	FindByName(ctx context.Context, normalizedName string) (Entry, bool, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
