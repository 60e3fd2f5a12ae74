package recruiters

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a recruiter.
func (r *PGRepo) Create(ctx context.Context, rec Recruiter) error {
	const query = `
INSERT INTO recruiters (id, name, email, is_active, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Email,
		rec.IsActive,
		rec.Status,
		rec.CreatedAt,
	)
	return err
}

// GetByID returns a recruiter by ID.
func (r *PGRepo) GetByID(ctx context.Context, recruiterID string) (Recruiter, error) {
	const query = `
SELECT id, name, email, is_active, status, created_at
FROM recruiters
WHERE id = $1
LIMIT 1`
	var rec Recruiter
	err := r.DB.QueryRowContext(ctx, query, recruiterID).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.IsActive,
		&rec.Status,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recruiter{}, ErrNotFound
		}
		return Recruiter{}, err
	}
	return rec, nil
}

// List returns all recruiters in creation order.
func (r *PGRepo) List(ctx context.Context) ([]Recruiter, error) {
	const query = `
SELECT id, name, email, is_active, status, created_at
FROM recruiters
ORDER BY created_at, name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recruiter
	for rows.Next() {
		var rec Recruiter
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Email,
			&rec.IsActive,
			&rec.Status,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateStatus flips the availability status.
func (r *PGRepo) UpdateStatus(ctx context.Context, recruiterID, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE recruiters SET status = $2 WHERE id = $1`, recruiterID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of recruiters.
func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recruiters`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repo = (*PGRepo)(nil)
