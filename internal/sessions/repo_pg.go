package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres. Lifecycle transitions are single
// conditional UPDATEs keyed on (id, assigned_recruiter_id, status), so a lost
// race surfaces as zero affected rows rather than a second write.
type PGRepo struct {
	DB *sql.DB
}

const sessionColumns = `
id, first_name, last_name, email, phone, zip_code, session_type, time_slot,
status, is_in_exclusion_list, exclusion_match,
ob365_sent, i9_sent, existing_i9, ineligible, rejected, drug_screen, questions,
steps, assigned_recruiter_id, generated_row, started_at, completed_at, duration_minutes, created_at`

// Create inserts a session.
func (r *PGRepo) Create(ctx context.Context, sess Session) error {
	const query = `
INSERT INTO info_sessions (` + sessionColumns + `
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	match, err := marshalMatch(sess.ExclusionMatch)
	if err != nil {
		return err
	}
	steps, err := marshalSteps(sess.Steps)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		sess.ID,
		sess.FirstName,
		sess.LastName,
		sess.Email,
		sess.Phone,
		sess.ZipCode,
		sess.SessionType,
		sess.TimeSlot,
		sess.Status,
		sess.IsInExclusionList,
		match,
		sess.Ledger.OB365Sent,
		sess.Ledger.I9Sent,
		sess.Ledger.ExistingI9,
		sess.Ledger.Ineligible,
		sess.Ledger.Rejected,
		sess.Ledger.DrugScreen,
		sess.Ledger.Questions,
		steps,
		nullIfEmpty(sess.AssignedRecruiterID),
		nullIfEmpty(sess.GeneratedRow),
		sess.StartedAt,
		sess.CompletedAt,
		sess.DurationMinutes,
		sess.CreatedAt,
	)
	return err
}

// GetByID returns a session by ID.
func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	query := `SELECT ` + sessionColumns + `
FROM info_sessions
WHERE id = $1
LIMIT 1`
	sess, err := scanSession(r.DB.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

// ListByStatus returns sessions in any of the given statuses, newest first.
func (r *PGRepo) ListByStatus(ctx context.Context, statuses ...string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + `
FROM info_sessions
WHERE status = ANY($1)
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, pgTextArray(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListByRecruiter returns a recruiter's sessions, optionally filtered by status.
func (r *PGRepo) ListByRecruiter(ctx context.Context, recruiterID, status string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + `
FROM info_sessions
WHERE assigned_recruiter_id = $1`
	args := []any{recruiterID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += `
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// List returns sessions newest-first with skip/limit, optionally filtered by status.
func (r *PGRepo) List(ctx context.Context, status string, skip, limit int) ([]Session, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + sessionColumns + `
FROM info_sessions`
	args := []any{}
	if status != "" {
		query += `
WHERE status = $1`
		args = append(args, status)
	}
	query += `
ORDER BY created_at DESC`
	query += limitOffsetClause(len(args))
	args = append(args, limit, skip)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Start moves assigned -> in-progress with a conditional UPDATE.
func (r *PGRepo) Start(ctx context.Context, recruiterID, sessionID string, startedAt time.Time, generatedRow string) error {
	const query = `
UPDATE info_sessions
SET status = $4, started_at = $5, generated_row = $6
WHERE id = $1 AND assigned_recruiter_id = $2 AND status = $3`
	res, err := r.DB.ExecContext(ctx, query,
		sessionID,
		recruiterID,
		StatusAssigned,
		StatusInProgress,
		startedAt,
		nullIfEmpty(generatedRow),
	)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, sessionID)
}

// Complete moves in-progress -> completed with a conditional UPDATE.
func (r *PGRepo) Complete(ctx context.Context, recruiterID, sessionID string, completedAt time.Time, durationMinutes *int, ledger Ledger) error {
	const query = `
UPDATE info_sessions
SET status = $4, completed_at = $5, duration_minutes = $6,
    ob365_sent = $7, i9_sent = $8, existing_i9 = $9, ineligible = $10,
    rejected = $11, drug_screen = $12, questions = $13
WHERE id = $1 AND assigned_recruiter_id = $2 AND status = $3`
	res, err := r.DB.ExecContext(ctx, query,
		sessionID,
		recruiterID,
		StatusInProgress,
		StatusCompleted,
		completedAt,
		durationMinutes,
		ledger.OB365Sent,
		ledger.I9Sent,
		ledger.ExistingI9,
		ledger.Ineligible,
		ledger.Rejected,
		ledger.DrugScreen,
		ledger.Questions,
	)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, sessionID)
}

// UpdateDocuments persists the ledger while the session is not completed.
func (r *PGRepo) UpdateDocuments(ctx context.Context, recruiterID, sessionID string, ledger Ledger, generatedRow *string) error {
	const query = `
UPDATE info_sessions
SET ob365_sent = $4, i9_sent = $5, existing_i9 = $6, ineligible = $7,
    rejected = $8, drug_screen = $9, questions = $10,
    generated_row = COALESCE($11, generated_row)
WHERE id = $1 AND assigned_recruiter_id = $2 AND status <> $3`
	res, err := r.DB.ExecContext(ctx, query,
		sessionID,
		recruiterID,
		StatusCompleted,
		ledger.OB365Sent,
		ledger.I9Sent,
		ledger.ExistingI9,
		ledger.Ineligible,
		ledger.Rejected,
		ledger.DrugScreen,
		ledger.Questions,
		generatedRow,
	)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, sessionID)
}

// UpdateSteps persists the checklist, and a late recruiter assignment when
// one was made, while the session is not completed.
func (r *PGRepo) UpdateSteps(ctx context.Context, sessionID string, steps []Step, recruiterID *string) error {
	const query = `
UPDATE info_sessions
SET steps = $3, assigned_recruiter_id = COALESCE($4, assigned_recruiter_id)
WHERE id = $1 AND status <> $2`
	payload, err := marshalSteps(steps)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		sessionID,
		StatusCompleted,
		payload,
		recruiterID,
	)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, sessionID)
}

// CountAssignedForSlot counts a recruiter's sessions created on the given day
// for one time slot.
func (r *PGRepo) CountAssignedForSlot(ctx context.Context, recruiterID, timeSlot string, day time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM info_sessions
WHERE assigned_recruiter_id = $1 AND time_slot = $2 AND created_at::date = $3::date`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, recruiterID, timeSlot, day).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountAssignedForDay counts a recruiter's sessions created on the given day.
func (r *PGRepo) CountAssignedForDay(ctx context.Context, recruiterID string, day time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM info_sessions
WHERE assigned_recruiter_id = $1 AND created_at::date = $2::date`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, recruiterID, day).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// checkAffected maps a zero-row conditional UPDATE to the right error: the
// session either does not exist at all, or exists in a state (or under an
// owner) that forbids the transition.
func (r *PGRepo) checkAffected(ctx context.Context, res sql.Result, sessionID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM info_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrWrongState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var zipCode, recruiterID, generatedRow, match, steps sql.NullString
	var startedAt, completedAt sql.NullTime
	var duration sql.NullInt64

	err := row.Scan(
		&sess.ID,
		&sess.FirstName,
		&sess.LastName,
		&sess.Email,
		&sess.Phone,
		&zipCode,
		&sess.SessionType,
		&sess.TimeSlot,
		&sess.Status,
		&sess.IsInExclusionList,
		&match,
		&sess.Ledger.OB365Sent,
		&sess.Ledger.I9Sent,
		&sess.Ledger.ExistingI9,
		&sess.Ledger.Ineligible,
		&sess.Ledger.Rejected,
		&sess.Ledger.DrugScreen,
		&sess.Ledger.Questions,
		&steps,
		&recruiterID,
		&generatedRow,
		&startedAt,
		&completedAt,
		&duration,
		&sess.CreatedAt,
	)
	if err != nil {
		return Session{}, err
	}

	sess.ZipCode = zipCode.String
	sess.AssignedRecruiterID = recruiterID.String
	sess.GeneratedRow = generatedRow.String
	if startedAt.Valid {
		t := startedAt.Time
		sess.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		sess.CompletedAt = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		sess.DurationMinutes = &d
	}
	if match.Valid && match.String != "" {
		var decoded ExclusionMatch
		if err := json.Unmarshal([]byte(match.String), &decoded); err != nil {
			return Session{}, err
		}
		sess.ExclusionMatch = &decoded
	}
	if steps.Valid && steps.String != "" {
		if err := json.Unmarshal([]byte(steps.String), &sess.Steps); err != nil {
			return Session{}, err
		}
	}
	return sess, nil
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func marshalMatch(match *ExclusionMatch) (any, error) {
	if match == nil {
		return nil, nil
	}
	payload, err := json.Marshal(match)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func marshalSteps(steps []Step) (any, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func limitOffsetClause(existingArgs int) string {
	if existingArgs == 1 {
		return `
LIMIT $2 OFFSET $3`
	}
	return `
LIMIT $1 OFFSET $2`
}

var _ Repo = (*PGRepo)(nil)

// pgTextArray renders values as a Postgres array literal. Every element is
// quoted so commas, braces and quotes inside a value stay part of the value.
func pgTextArray(values []string) string {
	var b strings.Builder
	b.WriteString("{")
	for i, v := range values {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"`)
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		b.WriteString(v)
		b.WriteString(`"`)
	}
	b.WriteString("}")
	return b.String()
}
