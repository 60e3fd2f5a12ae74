package templates

import (
	"sort"
	"time"
)

// Column types supported by the tracker export form.
const (
	ColumnTypeText     = "text"
	ColumnTypeDropdown = "dropdown"
	ColumnTypeNote     = "note"
	ColumnTypeDate     = "date"
	ColumnTypeNumber   = "number"
)

// Column is one named, typed field within a row template.
type Column struct {
	ID           string   `json:"id,omitempty"`
	TemplateID   string   `json:"templateId,omitempty"`
	Order        int      `json:"order"`
	Name         string   `json:"name"`
	Type         string   `json:"columnType"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Options      []string `json:"options,omitempty"`
	IsRequired   bool     `json:"isRequired"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Template is an ordered column schema describing one exportable tracker row.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	Columns     []Column   `json:"columns"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// SortedColumns returns the columns in ascending Order. The sort is stable,
// so columns sharing an Order value keep their insertion sequence.
func (t Template) SortedColumns() []Column {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Order < cols[j].Order
	})
	return cols
}

// ColumnByName builds a name-keyed lookup. Duplicate names resolve
// last-write-wins in column order.
func (t Template) ColumnByName() map[string]Column {
	out := make(map[string]Column, len(t.Columns))
	for _, col := range t.SortedColumns() {
		out[col.Name] = col
	}
	return out
}
