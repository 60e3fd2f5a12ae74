package sessions

import (
	"context"
	"time"
)

// Repo defines persistence operations for applicant sessions. Every lifecycle
// mutation is conditioned on the session's current status atomically with the
// write, so two racing transitions resolve to one winner and one ErrWrongState.
type Repo interface {
	Create(ctx context.Context, sess Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	ListByStatus(ctx context.Context, statuses ...string) ([]Session, error)
	ListByRecruiter(ctx context.Context, recruiterID, status string) ([]Session, error)
	List(ctx context.Context, status string, skip, limit int) ([]Session, error)

	// Start moves assigned -> in-progress for the owning recruiter, recording
	// started_at and the initial generated row in the same write.
	Start(ctx context.Context, recruiterID, sessionID string, startedAt time.Time, generatedRow string) error

	// Complete moves in-progress -> completed for the owning recruiter,
	// recording completed_at, the computed duration and the final ledger.
	Complete(ctx context.Context, recruiterID, sessionID string, completedAt time.Time, durationMinutes *int, ledger Ledger) error

	// UpdateDocuments persists the ledger (and optionally a regenerated row)
	// while the session is not completed. No status or timestamp effects.
	UpdateDocuments(ctx context.Context, recruiterID, sessionID string, ledger Ledger, generatedRow *string) error

	// UpdateSteps persists the checklist (and optionally a late recruiter
	// assignment) while the session is not completed. Steps are kiosk-side,
	// so there is no ownership key.
	UpdateSteps(ctx context.Context, sessionID string, steps []Step, recruiterID *string) error

	// Assignment counts back the equitable recruiter distribution.
	CountAssignedForSlot(ctx context.Context, recruiterID, timeSlot string, day time.Time) (int, error)
	CountAssignedForDay(ctx context.Context, recruiterID string, day time.Time) (int, error)
}
