package templates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validColumnTypes = map[string]struct{}{
	ColumnTypeText:     {},
	ColumnTypeDropdown: {},
	ColumnTypeNote:     {},
	ColumnTypeDate:     {},
	ColumnTypeNumber:   {},
}

// Service contains business logic for row templates.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create validates and stores a new template.
func (s *Service) Create(ctx context.Context, name, description string, isActive bool, cols []Column) (Template, error) {
	if strings.TrimSpace(name) == "" {
		return Template{}, ErrInvalidInput
	}
	if err := validateColumns(cols); err != nil {
		return Template{}, err
	}

	tmpl := Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    isActive,
		Columns:     assignColumnIDs(cols),
		CreatedAt:   time.Now().UTC(),
	}
	for i := range tmpl.Columns {
		tmpl.Columns[i].TemplateID = tmpl.ID
	}

	if err := s.Repo.Create(ctx, tmpl); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

// Get returns a template by ID.
func (s *Service) Get(ctx context.Context, templateID string) (Template, error) {
	if templateID == "" {
		return Template{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, templateID)
}

// List returns templates, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Template, error) {
	return s.Repo.List(ctx, activeOnly)
}

// FirstActive returns the newest active template, or ErrNotFound when none exist.
func (s *Service) FirstActive(ctx context.Context) (Template, error) {
	active, err := s.Repo.List(ctx, true)
	if err != nil {
		return Template{}, err
	}
	if len(active) == 0 {
		return Template{}, ErrNotFound
	}
	return active[0], nil
}

// UpdateInput carries the mutable template fields; nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	IsActive    *bool
	Columns     []Column
}

// Update applies the provided changes to an existing template.
func (s *Service) Update(ctx context.Context, templateID string, in UpdateInput) (Template, error) {
	if templateID == "" {
		return Template{}, ErrInvalidInput
	}
	tmpl, err := s.Repo.GetByID(ctx, templateID)
	if err != nil {
		return Template{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Template{}, ErrInvalidInput
		}
		tmpl.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		tmpl.Description = *in.Description
	}
	if in.IsActive != nil {
		tmpl.IsActive = *in.IsActive
	}
	if in.Columns != nil {
		if err := validateColumns(in.Columns); err != nil {
			return Template{}, err
		}
		tmpl.Columns = assignColumnIDs(in.Columns)
		for i := range tmpl.Columns {
			tmpl.Columns[i].TemplateID = tmpl.ID
		}
	}
	now := time.Now().UTC()
	tmpl.UpdatedAt = &now

	if err := s.Repo.Update(ctx, tmpl); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

// Delete removes a template.
func (s *Service) Delete(ctx context.Context, templateID string) error {
	if templateID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, templateID)
}

func validateColumns(cols []Column) error {
	for _, col := range cols {
		if strings.TrimSpace(col.Name) == "" {
			return ErrInvalidInput
		}
		if _, ok := validColumnTypes[col.Type]; !ok {
			return ErrInvalidInput
		}
	}
	return nil
}

func assignColumnIDs(cols []Column) []Column {
	out := make([]Column, len(cols))
	copy(out, cols)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
