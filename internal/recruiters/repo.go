package recruiters

import "context"

// Repo defines persistence operations for recruiters.
type Repo interface {
	Create(ctx context.Context, rec Recruiter) error
	GetByID(ctx context.Context, recruiterID string) (Recruiter, error)
	List(ctx context.Context) ([]Recruiter, error)
	UpdateStatus(ctx context.Context, recruiterID, status string) error
	Count(ctx context.Context) (int, error)
}
