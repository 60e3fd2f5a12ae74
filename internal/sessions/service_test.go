package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intake-backend/internal/templates"
)

type stubScreener struct {
	match *ExclusionMatch
	err   error
}

func (s *stubScreener) Check(ctx context.Context, firstName, lastName string) (*ExclusionMatch, error) {
	return s.match, s.err
}

type stubDirectory struct {
	recruiter AssignedRecruiter
	ok        bool
	name      string
}

func (s *stubDirectory) NextAvailable(ctx context.Context, timeSlot string, day time.Time) (AssignedRecruiter, bool, error) {
	return s.recruiter, s.ok, nil
}

func (s *stubDirectory) NameFor(ctx context.Context, recruiterID string) (string, error) {
	if s.name == "" {
		return s.recruiter.Name, nil
	}
	return s.name, nil
}

type stubTemplates struct {
	tmpl templates.Template
	ok   bool
}

func (s *stubTemplates) FirstActive(ctx context.Context) (templates.Template, bool, error) {
	return s.tmpl, s.ok, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testTemplate() templates.Template {
	return templates.Template{
		ID:       "tmpl-1",
		Name:     "Daily Tracker",
		IsActive: true,
		Columns: []templates.Column{
			{ID: "c1", Order: 0, Name: "Applicant Name", Type: templates.ColumnTypeText},
			{ID: "c2", Order: 1, Name: "R", Type: templates.ColumnTypeText},
			{ID: "c3", Order: 2, Name: "Date", Type: templates.ColumnTypeDate},
		},
	}
}

func newTestService(repo Repo, dir *stubDirectory, clock func() time.Time) *Service {
	return &Service{
		Repo:       repo,
		Screener:   &stubScreener{},
		Recruiters: dir,
		Templates:  &stubTemplates{tmpl: testTemplate(), ok: true},
		Clock:      clock,
	}
}

func TestRegisterAssignsRecruiterAndScreens(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "Nicolette Rose"}, ok: true}
	svc := newTestService(repo, dir, fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	svc.Screener = &stubScreener{match: &ExclusionMatch{Name: "Ana Diaz", Code: "EX-17"}}

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana",
		LastName:  "Diaz",
		Email:     "ana@example.com",
		Phone:     "555-0100",
		TimeSlot:  "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if sess.Status != StatusAssigned {
		t.Errorf("status = %q, want %q", sess.Status, StatusAssigned)
	}
	if sess.AssignedRecruiterID != "rec-1" {
		t.Errorf("assigned recruiter = %q, want rec-1", sess.AssignedRecruiterID)
	}
	if sess.SessionType != TypeNewHire {
		t.Errorf("session type = %q, want default %q", sess.SessionType, TypeNewHire)
	}
	if !sess.IsInExclusionList || sess.ExclusionMatch == nil || sess.ExclusionMatch.Code != "EX-17" {
		t.Errorf("exclusion hit not recorded: %+v", sess)
	}

	stored, err := repo.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AssignedRecruiterID != "rec-1" {
		t.Errorf("stored recruiter = %q, want rec-1", stored.AssignedRecruiterID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), &stubDirectory{}, nil)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM"}},
		{"missing email", RegisterInput{FirstName: "A", LastName: "B", Phone: "1", TimeSlot: "9:00 AM"}},
		{"missing phone", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", TimeSlot: "9:00 AM"}},
		{"missing slot", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "1"}},
		{"bad type", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM", SessionType: "walk-in"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterWithoutAvailableRecruiter(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), &stubDirectory{ok: false}, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.AssignedRecruiterID != "" {
		t.Errorf("recruiter = %q, want unassigned", sess.AssignedRecruiterID)
	}
	if sess.Status != StatusAssigned {
		t.Errorf("status = %q, want %q", sess.Status, StatusAssigned)
	}
}

func TestRegisterAttachesDefaultSteps(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), &stubDirectory{}, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if len(sess.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(sess.Steps))
	}
	wantNames := []string{"english_communication", "education_proof", "two_government_ids"}
	for i, name := range wantNames {
		if sess.Steps[i].Name != name {
			t.Errorf("steps[%d].Name = %q, want %q", i, sess.Steps[i].Name, name)
		}
		if sess.Steps[i].Completed || sess.Steps[i].CompletedAt != nil {
			t.Errorf("steps[%d] should start incomplete: %+v", i, sess.Steps[i])
		}
	}
}

func TestCompleteStepMarksStep(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	svc := newTestService(repo, &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1"}, ok: true}, fixedClock(now))

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.CompleteStep(context.Background(), sess.ID, "education_proof")
	if err != nil {
		t.Fatalf("CompleteStep: %v", err)
	}

	var step *Step
	for i := range updated.Steps {
		if updated.Steps[i].Name == "education_proof" {
			step = &updated.Steps[i]
		}
	}
	if step == nil || !step.Completed || step.CompletedAt == nil || !step.CompletedAt.Equal(now) {
		t.Fatalf("step not marked complete: %+v", updated.Steps)
	}
	if updated.Status != StatusAssigned {
		t.Errorf("status = %q, step completion should not advance it", updated.Status)
	}

	stored, err := repo.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	done := 0
	for _, s := range stored.Steps {
		if s.Completed {
			done++
		}
	}
	if done != 1 {
		t.Errorf("stored completed steps = %d, want 1", done)
	}
}

func TestCompleteStepAssignsRecruiterWhenChecklistDone(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{}
	svc := newTestService(repo, dir, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.AssignedRecruiterID != "" {
		t.Fatalf("expected unassigned session, got %q", sess.AssignedRecruiterID)
	}

	// A recruiter frees up while the applicant works the checklist.
	dir.recruiter = AssignedRecruiter{ID: "rec-9", Name: "Nicolette Rose"}
	dir.ok = true

	for _, name := range []string{"english_communication", "education_proof"} {
		updated, err := svc.CompleteStep(context.Background(), sess.ID, name)
		if err != nil {
			t.Fatalf("CompleteStep(%s): %v", name, err)
		}
		if updated.AssignedRecruiterID != "" {
			t.Fatalf("recruiter assigned before checklist finished: %q", updated.AssignedRecruiterID)
		}
	}

	final, err := svc.CompleteStep(context.Background(), sess.ID, "two_government_ids")
	if err != nil {
		t.Fatalf("CompleteStep: %v", err)
	}
	if final.AssignedRecruiterID != "rec-9" {
		t.Errorf("recruiter = %q, want rec-9 after final step", final.AssignedRecruiterID)
	}

	stored, err := repo.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AssignedRecruiterID != "rec-9" {
		t.Errorf("stored recruiter = %q, want rec-9", stored.AssignedRecruiterID)
	}
}

func TestCompleteStepErrors(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.CompleteStep(context.Background(), sess.ID, "no_such_step"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown step: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.CompleteStep(context.Background(), "no-such-session", "education_proof"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.CompleteStep(context.Background(), sess.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty step: err = %v, want ErrInvalidInput", err)
	}

	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Complete(context.Background(), "rec-1", sess.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := svc.CompleteStep(context.Background(), sess.ID, "education_proof"); !errors.Is(err, ErrWrongState) {
		t.Errorf("step on completed session: err = %v, want ErrWrongState", err)
	}
}

func TestStartGeneratesRowAndTransitions(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	svc := newTestService(repo, dir, fixedClock(start))

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com", Phone: "555-0100", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	started, err := svc.Start(context.Background(), "rec-1", sess.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if started.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", started.Status, StatusInProgress)
	}
	if started.StartedAt == nil || !started.StartedAt.Equal(start) {
		t.Errorf("startedAt = %v, want %v", started.StartedAt, start)
	}
	want := "Ana Diaz\tJS\t2024-03-01"
	if started.GeneratedRow != want {
		t.Errorf("generated row = %q, want %q", started.GeneratedRow, want)
	}
}

func TestStartWrongRecruiterAndWrongState(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Start(context.Background(), "rec-2", sess.ID); !errors.Is(err, ErrWrongState) {
		t.Errorf("start by non-owner: err = %v, want ErrWrongState", err)
	}

	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); !errors.Is(err, ErrWrongState) {
		t.Errorf("second start: err = %v, want ErrWrongState", err)
	}

	if _, err := svc.Start(context.Background(), "rec-1", "no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session: err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentStartHasOneWinner(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Start(context.Background(), "rec-1", sess.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrWrongState):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestCompleteComputesDuration(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, dir, fixedClock(start))

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.Clock = fixedClock(start.Add(125 * time.Minute))
	ledger := Ledger{OB365Sent: true, DrugScreen: true}
	done, err := svc.Complete(context.Background(), "rec-1", sess.ID, CompleteInput{Ledger: ledger})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if done.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", done.Status, StatusCompleted)
	}
	if done.DurationMinutes == nil || *done.DurationMinutes != 125 {
		t.Errorf("duration = %v, want 125", done.DurationMinutes)
	}
	if done.Ledger != ledger {
		t.Errorf("ledger = %+v, want %+v", done.Ledger, ledger)
	}

	if _, err := svc.Complete(context.Background(), "rec-1", sess.ID, CompleteInput{}); !errors.Is(err, ErrWrongState) {
		t.Errorf("second complete: err = %v, want ErrWrongState", err)
	}
}

func TestCompleteFromAssignedIsRejected(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, nil)

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Complete(context.Background(), "rec-1", sess.ID, CompleteInput{}); !errors.Is(err, ErrWrongState) {
		t.Errorf("complete before start: err = %v, want ErrWrongState", err)
	}
}

func TestUpdateDocuments(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	updated, err := svc.Update(context.Background(), "rec-1", sess.ID, UpdateInput{
		Ledger: Ledger{I9Sent: true, Questions: true},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Ledger.I9Sent || !updated.Ledger.Questions {
		t.Errorf("ledger not applied: %+v", updated.Ledger)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("status changed by document update: %q", updated.Status)
	}

	if _, err := svc.Complete(context.Background(), "rec-1", sess.ID, CompleteInput{Ledger: updated.Ledger}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := svc.Update(context.Background(), "rec-1", sess.ID, UpdateInput{}); !errors.Is(err, ErrWrongState) {
		t.Errorf("update after completion: err = %v, want ErrWrongState", err)
	}
}

func TestUpdateRegeneratesRowWithCallerData(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	svc := newTestService(repo, dir, fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	sess, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Update(context.Background(), "rec-1", sess.ID, UpdateInput{RegenerateRow: true}); !errors.Is(err, ErrWrongState) {
		t.Fatalf("regenerate before start: err = %v, want ErrWrongState", err)
	}

	if _, err := svc.Start(context.Background(), "rec-1", sess.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	updated, err := svc.Update(context.Background(), "rec-1", sess.ID, UpdateInput{
		RowData: map[string]string{"Applicant Name": "Ana D. Diaz", "Date": "1999-01-01"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Caller's name edit survives; the date rule always stamps the
	// generation moment.
	if updated.GeneratedRow != "Ana D. Diaz\tJS\t2024-03-01" {
		t.Errorf("regenerated row = %q", updated.GeneratedRow)
	}
}

func TestLiveAndCompletedListings(t *testing.T) {
	repo := NewMemoryRepo()
	dir := &stubDirectory{recruiter: AssignedRecruiter{ID: "rec-1", Name: "John Smith"}, ok: true}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, dir, fixedClock(base))

	var ids []string
	for i, name := range []string{"Ana", "Ben", "Cara"} {
		svc.Clock = fixedClock(base.Add(time.Duration(i) * time.Minute))
		sess, err := svc.Register(context.Background(), RegisterInput{
			FirstName: name, LastName: "Diaz", Email: "a@b.com", Phone: "1", TimeSlot: "9:00 AM",
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		ids = append(ids, sess.ID)
	}

	if _, err := svc.Start(context.Background(), "rec-1", ids[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Complete(context.Background(), "rec-1", ids[0], CompleteInput{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	live, err := svc.Live(context.Background())
	if err != nil {
		t.Fatalf("Live: %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("live = %d sessions, want 2", len(live))
	}
	if live[0].FirstName != "Cara" {
		t.Errorf("live[0] = %q, want newest first (Cara)", live[0].FirstName)
	}

	completed, err := svc.Completed(context.Background())
	if err != nil {
		t.Fatalf("Completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != ids[0] {
		t.Errorf("completed = %+v, want just %s", completed, ids[0])
	}

	mine, err := svc.AssignedTo(context.Background(), "rec-1", StatusAssigned)
	if err != nil {
		t.Fatalf("AssignedTo: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("assigned = %d sessions, want 2", len(mine))
	}
}
