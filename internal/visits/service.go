package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service owns walk-in visit check-ins.
type Service struct {
	Repo Repo

	// Clock is overridable in tests. Defaults to time.Now UTC.
	Clock func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// CheckInInput is the front-desk check-in payload.
type CheckInInput struct {
	Kind            string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	TimeSlot        string
	FingerprintType string
	Notes           string
}

// CheckIn records a walk-in visit.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (Visit, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if !ValidKind(in.Kind) {
		return Visit{}, fmt.Errorf("%w: unknown visit kind %q", ErrInvalidInput, in.Kind)
	}
	if in.FirstName == "" || in.LastName == "" {
		return Visit{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if in.FingerprintType != "" && in.Kind != KindFingerprint {
		return Visit{}, fmt.Errorf("%w: fingerprint type only applies to fingerprint visits", ErrInvalidInput)
	}

	visit := Visit{
		ID:              uuid.NewString(),
		Kind:            in.Kind,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		TimeSlot:        strings.TrimSpace(in.TimeSlot),
		FingerprintType: strings.TrimSpace(in.FingerprintType),
		Status:          StatusRegistered,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, visit); err != nil {
		return Visit{}, fmt.Errorf("create visit: %w", err)
	}
	return visit, nil
}

// List returns visits newest-first, optionally filtered by kind.
func (s *Service) List(ctx context.Context, kind string) ([]Visit, error) {
	if kind != "" && !ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown visit kind %q", ErrInvalidInput, kind)
	}
	return s.Repo.List(ctx, kind)
}
