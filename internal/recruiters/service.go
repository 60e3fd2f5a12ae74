package recruiters

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssignmentCounter reports how many sessions are already assigned to a
// recruiter. Implemented by the sessions store and wired in at bootstrap.
type AssignmentCounter interface {
	CountAssignedForSlot(ctx context.Context, recruiterID, timeSlot string, day time.Time) (int, error)
	CountAssignedForDay(ctx context.Context, recruiterID string, day time.Time) (int, error)
}

// Service contains business logic for recruiters, including equitable
// session assignment.
type Service struct {
	Repo        Repo
	Assignments AssignmentCounter
}

// NewService constructs a Service.
func NewService(repo Repo, assignments AssignmentCounter) *Service {
	return &Service{Repo: repo, Assignments: assignments}
}

var defaultRecruiters = []Recruiter{
	{Name: "Nicolette Rose", Email: "nicolette.rose@example.com"},
	{Name: "Rodrigo Bermudez", Email: "rodrigo.bermudez@example.com"},
	{Name: "Miccael Val", Email: "miccael.val@example.com"},
	{Name: "Demetrius Lee", Email: "demetrius.lee@example.com"},
	{Name: "Jorge Silva", Email: "jorge.silva@example.com"},
}

// SeedDefaults creates the default recruiter roster when the store is empty.
func (s *Service) SeedDefaults(ctx context.Context) error {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, rec := range defaultRecruiters {
		rec.ID = uuid.NewString()
		rec.IsActive = true
		rec.Status = StatusAvailable
		rec.CreatedAt = now
		if err := s.Repo.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a recruiter by ID.
func (s *Service) Get(ctx context.Context, recruiterID string) (Recruiter, error) {
	if recruiterID == "" {
		return Recruiter{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, recruiterID)
}

// List returns all recruiters.
func (s *Service) List(ctx context.Context) ([]Recruiter, error) {
	return s.Repo.List(ctx)
}

// SetStatus toggles a recruiter's availability. Pure field flip, no derived
// effects.
func (s *Service) SetStatus(ctx context.Context, recruiterID, status string) error {
	if recruiterID == "" {
		return ErrInvalidInput
	}
	if status != StatusAvailable && status != StatusBusy {
		return ErrInvalidInput
	}
	return s.Repo.UpdateStatus(ctx, recruiterID, status)
}

// NextAvailable picks the recruiter to assign for a registration: among
// active, available recruiters, the one with the fewest assignments for the
// time slot today; ties broken by fewest total assignments today, then by
// roster order. Returns false when nobody is available.
func (s *Service) NextAvailable(ctx context.Context, timeSlot string, day time.Time) (Recruiter, bool, error) {
	all, err := s.Repo.List(ctx)
	if err != nil {
		return Recruiter{}, false, err
	}

	var available []Recruiter
	for _, rec := range all {
		if rec.IsActive && rec.Status == StatusAvailable {
			available = append(available, rec)
		}
	}
	if len(available) == 0 {
		return Recruiter{}, false, nil
	}

	slotCounts := make(map[string]int, len(available))
	minSlot := -1
	for _, rec := range available {
		count, err := s.Assignments.CountAssignedForSlot(ctx, rec.ID, timeSlot, day)
		if err != nil {
			return Recruiter{}, false, err
		}
		slotCounts[rec.ID] = count
		if minSlot < 0 || count < minSlot {
			minSlot = count
		}
	}

	var candidates []Recruiter
	for _, rec := range available {
		if slotCounts[rec.ID] == minSlot {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true, nil
	}

	totalCounts := make(map[string]int, len(candidates))
	minTotal := -1
	for _, rec := range candidates {
		count, err := s.Assignments.CountAssignedForDay(ctx, rec.ID, day)
		if err != nil {
			return Recruiter{}, false, err
		}
		totalCounts[rec.ID] = count
		if minTotal < 0 || count < minTotal {
			minTotal = count
		}
	}
	for _, rec := range candidates {
		if totalCounts[rec.ID] == minTotal {
			return rec, true, nil
		}
	}
	return candidates[0], true, nil
}
