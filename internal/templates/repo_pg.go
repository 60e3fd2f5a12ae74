package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres. Columns live in a child table keyed
// by template id; their options arrays are stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a template with its columns in one transaction.
func (r *PGRepo) Create(ctx context.Context, tmpl Template) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO row_templates (id, name, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query,
		tmpl.ID,
		tmpl.Name,
		tmpl.Description,
		tmpl.IsActive,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	); err != nil {
		return err
	}

	if err := insertColumns(ctx, tx, tmpl.ID, tmpl.Columns); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a template with its columns.
func (r *PGRepo) GetByID(ctx context.Context, templateID string) (Template, error) {
	const query = `
SELECT id, name, description, is_active, created_at, updated_at
FROM row_templates
WHERE id = $1
LIMIT 1`
	var tmpl Template
	var description sql.NullString
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, templateID).Scan(
		&tmpl.ID,
		&tmpl.Name,
		&description,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	tmpl.Description = description.String
	if updatedAt.Valid {
		t := updatedAt.Time
		tmpl.UpdatedAt = &t
	}

	cols, err := r.loadColumns(ctx, tmpl.ID)
	if err != nil {
		return Template{}, err
	}
	tmpl.Columns = cols
	return tmpl, nil
}

// List returns templates newest-first, optionally only active ones.
func (r *PGRepo) List(ctx context.Context, activeOnly bool) ([]Template, error) {
	query := `
SELECT id, name, description, is_active, created_at, updated_at
FROM row_templates`
	if activeOnly {
		query += `
WHERE is_active = TRUE`
	}
	query += `
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var tmpl Template
		var description sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&tmpl.ID,
			&tmpl.Name,
			&description,
			&tmpl.IsActive,
			&tmpl.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}
		tmpl.Description = description.String
		if updatedAt.Valid {
			t := updatedAt.Time
			tmpl.UpdatedAt = &t
		}
		out = append(out, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		cols, err := r.loadColumns(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Columns = cols
	}
	return out, nil
}

// Update replaces a template and rewrites its column set.
func (r *PGRepo) Update(ctx context.Context, tmpl Template) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
UPDATE row_templates
SET name = $2, description = $3, is_active = $4, updated_at = $5
WHERE id = $1`
	res, err := tx.ExecContext(ctx, query,
		tmpl.ID,
		tmpl.Name,
		tmpl.Description,
		tmpl.IsActive,
		tmpl.UpdatedAt,
	)
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM row_template_columns WHERE template_id = $1`, tmpl.ID); err != nil {
		return err
	}
	if err := insertColumns(ctx, tx, tmpl.ID, tmpl.Columns); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a template and its columns.
func (r *PGRepo) Delete(ctx context.Context, templateID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM row_templates WHERE id = $1`, templateID)
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

func (r *PGRepo) loadColumns(ctx context.Context, templateID string) ([]Column, error) {
	const query = `
SELECT id, template_id, col_order, name, column_type, placeholder, options, is_required, default_value, notes
FROM row_template_columns
WHERE template_id = $1
ORDER BY col_order, position`
	rows, err := r.DB.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var col Column
		var placeholder, defaultValue, notes sql.NullString
		var options sql.NullString
		if err := rows.Scan(
			&col.ID,
			&col.TemplateID,
			&col.Order,
			&col.Name,
			&col.Type,
			&placeholder,
			&options,
			&col.IsRequired,
			&defaultValue,
			&notes,
		); err != nil {
			return nil, err
		}
		col.Placeholder = placeholder.String
		col.DefaultValue = defaultValue.String
		col.Notes = notes.String
		if options.Valid && options.String != "" {
			if err := json.Unmarshal([]byte(options.String), &col.Options); err != nil {
				return nil, err
			}
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func insertColumns(ctx context.Context, tx *sql.Tx, templateID string, cols []Column) error {
	const query = `
INSERT INTO row_template_columns (
	id, template_id, col_order, position, name, column_type, placeholder, options, is_required, default_value, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i, col := range cols {
		var options any
		if len(col.Options) > 0 {
			payload, err := json.Marshal(col.Options)
			if err != nil {
				return err
			}
			options = string(payload)
		}
		if _, err := tx.ExecContext(ctx, query,
			col.ID,
			templateID,
			col.Order,
			i,
			col.Name,
			col.Type,
			col.Placeholder,
			options,
			col.IsRequired,
			col.DefaultValue,
			col.Notes,
		); err != nil {
			return err
		}
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
