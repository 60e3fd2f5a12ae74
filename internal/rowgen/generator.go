package rowgen

import (
	"errors"
	"strings"
	"time"

	"intake-backend/internal/templates"
)

// ErrEmptyTemplate indicates a template with zero columns was supplied.
var ErrEmptyTemplate = errors.New("template has no columns")

// Generate fills gaps in data using the binding rules and serializes the
// values tab-joined in ascending column order. The row is positional: the
// i-th tab-separated value belongs to the i-th column of the template's
// sorted column list at generation time.
func Generate(tmpl templates.Template, data map[string]string, ctx Context) (string, []string, error) {
	cols := tmpl.SortedColumns()
	if len(cols) == 0 {
		return "", nil, ErrEmptyTemplate
	}
	if ctx.Now.IsZero() {
		ctx.Now = time.Now().UTC()
	}

	rules := DefaultRules()
	values := make([]string, len(cols))
	for i, col := range cols {
		values[i] = resolve(col, data[col.Name], rules, ctx)
	}
	return strings.Join(values, "\t"), values, nil
}

// Parse splits a previously generated row on tabs and zips it positionally
// against the template's sorted columns. Columns beyond the value count get
// their configured default; trailing extra values are dropped. A template
// edited since generation silently misaligns values.
func Parse(rowText string, tmpl templates.Template) map[string]string {
	cols := tmpl.SortedColumns()
	values := strings.Split(rowText, "\t")

	out := make(map[string]string, len(cols))
	for i, col := range cols {
		if i < len(values) {
			out[col.Name] = values[i]
		} else {
			out[col.Name] = col.DefaultValue
		}
	}
	return out
}

func resolve(col templates.Column, supplied string, rules []Rule, ctx Context) string {
	for _, rule := range rules {
		if !rule.Match(col) {
			continue
		}
		if rule.Force || strings.TrimSpace(supplied) == "" {
			return rule.Resolve(col, ctx)
		}
		return supplied
	}
	return supplied
}
