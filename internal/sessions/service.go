package sessions

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"intake-backend/internal/rowgen"
	"intake-backend/internal/shared/metrics"
	"intake-backend/internal/templates"
)

// Screener answers whether an applicant appears on the exclusion list.
type Screener interface {
	Check(ctx context.Context, firstName, lastName string) (*ExclusionMatch, error)
}

// AssignedRecruiter is the slice of recruiter state the lifecycle needs.
type AssignedRecruiter struct {
	ID   string
	Name string
}

// RecruiterDirectory picks recruiters for new sessions and resolves names
// for row generation.
type RecruiterDirectory interface {
	NextAvailable(ctx context.Context, timeSlot string, day time.Time) (AssignedRecruiter, bool, error)
	NameFor(ctx context.Context, recruiterID string) (string, error)
}

// TemplateSource supplies the active row template. ok is false when no
// active template is configured.
type TemplateSource interface {
	FirstActive(ctx context.Context) (templates.Template, bool, error)
}

// Service owns the session lifecycle: registration with exclusion screening
// and recruiter assignment, the start/complete transitions, and the document
// ledger.
type Service struct {
	Repo       Repo
	Screener   Screener
	Recruiters RecruiterDirectory
	Templates  TemplateSource

	// Clock is overridable in tests. Defaults to time.Now UTC.
	Clock func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// RegisterInput is the applicant-facing registration payload.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	ZipCode     string
	SessionType string
	TimeSlot    string
}

// Register creates a session for an applicant: screens the exclusion list,
// picks the least-loaded available recruiter for the slot, and stores the
// session as assigned. Registration never fails because of an exclusion hit;
// the hit is recorded on the session for recruiters to act on.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	if in.SessionType == "" {
		in.SessionType = TypeNewHire
	}

	if in.FirstName == "" || in.LastName == "" {
		return Session{}, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if in.Email == "" {
		return Session{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if in.Phone == "" {
		return Session{}, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if in.TimeSlot == "" {
		return Session{}, fmt.Errorf("%w: time slot is required", ErrInvalidInput)
	}
	if in.SessionType != TypeNewHire && in.SessionType != TypeReactivation {
		return Session{}, fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, in.SessionType)
	}

	now := s.now()

	match, err := s.Screener.Check(ctx, in.FirstName, in.LastName)
	if err != nil {
		return Session{}, fmt.Errorf("screen exclusion list: %w", err)
	}

	sess := Session{
		ID:                uuid.NewString(),
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             in.Email,
		Phone:             in.Phone,
		ZipCode:           strings.TrimSpace(in.ZipCode),
		SessionType:       in.SessionType,
		TimeSlot:          in.TimeSlot,
		Status:            StatusAssigned,
		IsInExclusionList: match != nil,
		ExclusionMatch:    match,
		Steps:             DefaultSteps(),
		CreatedAt:         now,
	}

	recruiter, ok, err := s.Recruiters.NextAvailable(ctx, in.TimeSlot, now)
	if err != nil {
		return Session{}, fmt.Errorf("assign recruiter: %w", err)
	}
	if ok {
		sess.AssignedRecruiterID = recruiter.ID
	}

	if err := s.Repo.Create(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	metrics.IncSessionRegistered()
	if sess.IsInExclusionList {
		metrics.IncExclusionHit()
	}
	return sess, nil
}

// Get returns a session by ID.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, sessionID)
}

// List returns sessions newest-first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, skip, limit int) ([]Session, error) {
	if status != "" && status != StatusAssigned && status != StatusInProgress && status != StatusCompleted {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.List(ctx, status, skip, limit)
}

// Live returns sessions that still need recruiter attention.
func (s *Service) Live(ctx context.Context) ([]Session, error) {
	return s.Repo.ListByStatus(ctx, StatusAssigned, StatusInProgress)
}

// Completed returns finished sessions.
func (s *Service) Completed(ctx context.Context) ([]Session, error) {
	return s.Repo.ListByStatus(ctx, StatusCompleted)
}

// AssignedTo returns a recruiter's sessions, optionally filtered by status.
func (s *Service) AssignedTo(ctx context.Context, recruiterID, status string) ([]Session, error) {
	if recruiterID == "" {
		return nil, fmt.Errorf("%w: recruiter id is required", ErrInvalidInput)
	}
	return s.Repo.ListByRecruiter(ctx, recruiterID, status)
}

// Start transitions a session from assigned to in-progress for its owning
// recruiter and generates the spreadsheet row from the active template. The
// transition is atomic against concurrent starts: exactly one caller wins.
func (s *Service) Start(ctx context.Context, recruiterID, sessionID string) (Session, error) {
	if recruiterID == "" || sessionID == "" {
		return Session{}, fmt.Errorf("%w: recruiter id and session id are required", ErrInvalidInput)
	}

	sess, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}

	row, err := s.generateRow(ctx, sess, recruiterID, nil)
	if err != nil {
		return Session{}, err
	}

	startedAt := s.now()
	if err := s.Repo.Start(ctx, recruiterID, sessionID, startedAt, row); err != nil {
		return Session{}, err
	}

	metrics.IncSessionStarted()
	sess.Status = StatusInProgress
	sess.StartedAt = &startedAt
	sess.GeneratedRow = row
	return sess, nil
}

// CompleteInput carries the final ledger for a completing session.
type CompleteInput struct {
	Ledger Ledger
}

// Complete transitions a session from in-progress to completed, stamping the
// completion time and the whole-minute duration since the session started.
func (s *Service) Complete(ctx context.Context, recruiterID, sessionID string, in CompleteInput) (Session, error) {
	if recruiterID == "" || sessionID == "" {
		return Session{}, fmt.Errorf("%w: recruiter id and session id are required", ErrInvalidInput)
	}

	sess, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}

	completedAt := s.now()
	var duration *int
	if sess.StartedAt != nil {
		minutes := int(math.Round(completedAt.Sub(*sess.StartedAt).Minutes()))
		if minutes < 0 {
			minutes = 0
		}
		duration = &minutes
	}

	if err := s.Repo.Complete(ctx, recruiterID, sessionID, completedAt, duration, in.Ledger); err != nil {
		return Session{}, err
	}

	metrics.IncSessionCompleted()
	if duration != nil {
		metrics.ObserveSessionDurationMinutes(float64(*duration))
	}
	sess.Status = StatusCompleted
	sess.CompletedAt = &completedAt
	sess.DurationMinutes = duration
	sess.Ledger = in.Ledger
	return sess, nil
}

// CompleteStep marks one checklist step complete on a session that has not
// finished yet. The kiosk drives this, so it is keyed by session alone. When
// the last step completes and the session still has no recruiter, the next
// available recruiter for the slot is assigned.
func (s *Service) CompleteStep(ctx context.Context, sessionID, stepName string) (Session, error) {
	if sessionID == "" || stepName == "" {
		return Session{}, fmt.Errorf("%w: session id and step name are required", ErrInvalidInput)
	}

	sess, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.Status == StatusCompleted {
		return Session{}, fmt.Errorf("%w: session already completed", ErrWrongState)
	}

	now := s.now()
	steps := make([]Step, len(sess.Steps))
	copy(steps, sess.Steps)

	found := false
	allDone := true
	for i := range steps {
		if steps[i].Name == stepName {
			found = true
			steps[i].Completed = true
			steps[i].CompletedAt = &now
		}
		if !steps[i].Completed {
			allDone = false
		}
	}
	if !found {
		return Session{}, fmt.Errorf("%w: unknown step %q", ErrNotFound, stepName)
	}

	var recruiterID *string
	if allDone && sess.AssignedRecruiterID == "" {
		recruiter, ok, err := s.Recruiters.NextAvailable(ctx, sess.TimeSlot, now)
		if err != nil {
			return Session{}, fmt.Errorf("assign recruiter: %w", err)
		}
		if ok {
			recruiterID = &recruiter.ID
		}
	}

	if err := s.Repo.UpdateSteps(ctx, sessionID, steps, recruiterID); err != nil {
		return Session{}, err
	}

	sess.Steps = steps
	if recruiterID != nil {
		sess.AssignedRecruiterID = *recruiterID
	}
	return sess, nil
}

// UpdateInput carries ledger edits for an active session. When RegenerateRow
// is set or RowData carries caller-edited fields, the spreadsheet row is
// rebuilt from the current active template: caller values survive where the
// binding rules allow, forced rules (fingerprint expiration, date) override.
type UpdateInput struct {
	Ledger        Ledger
	RowData       map[string]string
	RegenerateRow bool
}

// Update persists ledger changes on a session that has not completed yet.
// Row regeneration is only allowed while the session is in progress; Start
// owns the initial generation.
func (s *Service) Update(ctx context.Context, recruiterID, sessionID string, in UpdateInput) (Session, error) {
	if recruiterID == "" || sessionID == "" {
		return Session{}, fmt.Errorf("%w: recruiter id and session id are required", ErrInvalidInput)
	}

	sess, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}

	var row *string
	if in.RegenerateRow || len(in.RowData) > 0 {
		if sess.Status != StatusInProgress {
			return Session{}, fmt.Errorf("%w: row can only be regenerated while in progress", ErrWrongState)
		}
		generated, err := s.generateRow(ctx, sess, recruiterID, in.RowData)
		if err != nil {
			return Session{}, err
		}
		row = &generated
	}

	if err := s.Repo.UpdateDocuments(ctx, recruiterID, sessionID, in.Ledger, row); err != nil {
		return Session{}, err
	}

	sess.Ledger = in.Ledger
	if row != nil {
		sess.GeneratedRow = *row
	}
	return sess, nil
}

// generateRow builds the tab-delimited tracking row for a session from the
// first active template. With no active template the row is empty; the
// session still proceeds.
func (s *Service) generateRow(ctx context.Context, sess Session, recruiterID string, data map[string]string) (string, error) {
	tmpl, ok, err := s.Templates.FirstActive(ctx)
	if err != nil {
		return "", fmt.Errorf("load active template: %w", err)
	}
	if !ok {
		return "", nil
	}

	recruiterName, err := s.Recruiters.NameFor(ctx, recruiterID)
	if err != nil {
		return "", fmt.Errorf("resolve recruiter: %w", err)
	}

	row, _, err := rowgen.Generate(tmpl, data, rowgen.Context{
		Applicant: rowgen.Applicant{
			FirstName: sess.FirstName,
			LastName:  sess.LastName,
			Email:     sess.Email,
			Phone:     sess.Phone,
		},
		RecruiterName: recruiterName,
		Now:           s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("generate row: %w", err)
	}
	return row, nil
}
