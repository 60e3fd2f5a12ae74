package sessions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use. All
// lifecycle checks happen under one lock, giving the same atomicity as the
// conditional UPDATE in the Postgres implementation.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Session
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Session)}
}

// Create stores the session.
func (r *MemoryRepo) Create(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sess.ID] = sess
	return nil
}

// GetByID returns a session by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byID[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// ListByStatus returns sessions in any of the given statuses, newest first.
func (r *MemoryRepo) ListByStatus(ctx context.Context, statuses ...string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Session
	for _, sess := range r.byID {
		if _, ok := wanted[sess.Status]; ok {
			out = append(out, sess)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByRecruiter returns a recruiter's sessions, optionally filtered by status.
func (r *MemoryRepo) ListByRecruiter(ctx context.Context, recruiterID, status string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Session
	for _, sess := range r.byID {
		if sess.AssignedRecruiterID != recruiterID {
			continue
		}
		if status != "" && sess.Status != status {
			continue
		}
		out = append(out, sess)
	}
	sortNewestFirst(out)
	return out, nil
}

// List returns sessions newest-first with skip/limit, optionally filtered by status.
func (r *MemoryRepo) List(ctx context.Context, status string, skip, limit int) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	var all []Session
	for _, sess := range r.byID {
		if status != "" && sess.Status != status {
			continue
		}
		all = append(all, sess)
	}
	r.mu.RUnlock()

	sortNewestFirst(all)
	if skip >= len(all) {
		return []Session{}, nil
	}
	end := len(all)
	if skip+limit < end {
		end = skip + limit
	}
	return all[skip:end], nil
}

// Start moves assigned -> in-progress, guarded on current status and ownership.
func (r *MemoryRepo) Start(ctx context.Context, recruiterID, sessionID string, startedAt time.Time, generatedRow string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.AssignedRecruiterID != recruiterID || sess.Status != StatusAssigned {
		return ErrWrongState
	}

	sess.Status = StatusInProgress
	sess.StartedAt = &startedAt
	sess.GeneratedRow = generatedRow
	r.byID[sessionID] = sess
	return nil
}

// Complete moves in-progress -> completed, guarded on current status and ownership.
func (r *MemoryRepo) Complete(ctx context.Context, recruiterID, sessionID string, completedAt time.Time, durationMinutes *int, ledger Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.AssignedRecruiterID != recruiterID || sess.Status != StatusInProgress {
		return ErrWrongState
	}

	sess.Status = StatusCompleted
	sess.CompletedAt = &completedAt
	sess.DurationMinutes = durationMinutes
	sess.Ledger = ledger
	r.byID[sessionID] = sess
	return nil
}

// UpdateDocuments persists the ledger while the session is not completed.
func (r *MemoryRepo) UpdateDocuments(ctx context.Context, recruiterID, sessionID string, ledger Ledger, generatedRow *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.AssignedRecruiterID != recruiterID || sess.Status == StatusCompleted {
		return ErrWrongState
	}

	sess.Ledger = ledger
	if generatedRow != nil {
		sess.GeneratedRow = *generatedRow
	}
	r.byID[sessionID] = sess
	return nil
}

// UpdateSteps persists the checklist while the session is not completed.
func (r *MemoryRepo) UpdateSteps(ctx context.Context, sessionID string, steps []Step, recruiterID *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.Status == StatusCompleted {
		return ErrWrongState
	}

	sess.Steps = make([]Step, len(steps))
	copy(sess.Steps, steps)
	if recruiterID != nil {
		sess.AssignedRecruiterID = *recruiterID
	}
	r.byID[sessionID] = sess
	return nil
}

// CountAssignedForSlot counts a recruiter's sessions created on the given day
// for one time slot.
func (r *MemoryRepo) CountAssignedForSlot(ctx context.Context, recruiterID, timeSlot string, day time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, sess := range r.byID {
		if sess.AssignedRecruiterID == recruiterID && sess.TimeSlot == timeSlot && sameDay(sess.CreatedAt, day) {
			count++
		}
	}
	return count, nil
}

// CountAssignedForDay counts a recruiter's sessions created on the given day.
func (r *MemoryRepo) CountAssignedForDay(ctx context.Context, recruiterID string, day time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, sess := range r.byID {
		if sess.AssignedRecruiterID == recruiterID && sameDay(sess.CreatedAt, day) {
			count++
		}
	}
	return count, nil
}

func sortNewestFirst(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

var _ Repo = (*MemoryRepo)(nil)
