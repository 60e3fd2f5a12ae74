package visits

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a visit.
func (r *PGRepo) Create(ctx context.Context, visit Visit) error {
	const query = `
INSERT INTO visits (id, kind, first_name, last_name, email, phone, time_slot, fingerprint_type, status, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		visit.ID, visit.Kind, visit.FirstName, visit.LastName,
		visit.Email, visit.Phone, visit.TimeSlot, visit.FingerprintType,
		visit.Status, visit.Notes, visit.CreatedAt,
	)
	return err
}

// List returns visits newest-first, optionally filtered by kind.
func (r *PGRepo) List(ctx context.Context, kind string) ([]Visit, error) {
	query := `
SELECT id, kind, first_name, last_name, email, phone, time_slot, fingerprint_type, status, notes, created_at
FROM visits`
	args := []any{}
	if kind != "" {
		query += `
WHERE kind = $1`
		args = append(args, kind)
	}
	query += `
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.Kind, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.TimeSlot, &v.FingerprintType, &v.Status, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
