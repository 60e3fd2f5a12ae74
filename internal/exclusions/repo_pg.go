package exclusions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ReplaceAll swaps the whole list inside one transaction.
func (r *PGRepo) ReplaceAll(ctx context.Context, entries []Entry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exclusion_entries`); err != nil {
		return err
	}

	const insert = `
INSERT INTO exclusion_entries (id, name, normalized_name, code, ssn, dob, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, insert,
			e.ID, e.Name, NormalizeName(e.Name), e.Code, e.SSN, e.DOB, e.Notes, e.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns the list sorted by name.
func (r *PGRepo) List(ctx context.Context) ([]Entry, error) {
	const query = `
SELECT id, name, code, ssn, dob, notes, created_at
FROM exclusion_entries
ORDER BY name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Code, &e.SSN, &e.DOB, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByName looks up an entry by normalized full name.
func (r *PGRepo) FindByName(ctx context.Context, normalizedName string) (Entry, bool, error) {
	const query = `
SELECT id, name, code, ssn, dob, notes, created_at
FROM exclusion_entries
WHERE normalized_name = $1
LIMIT 1`
	var e Entry
	err := r.DB.QueryRowContext(ctx, query, normalizedName).
		Scan(&e.ID, &e.Name, &e.Code, &e.SSN, &e.DOB, &e.Notes, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

// Clear removes every entry.
func (r *PGRepo) Clear(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM exclusion_entries`)
	return err
}

// Count returns the number of entries.
func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM exclusion_entries`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repo = (*PGRepo)(nil)
