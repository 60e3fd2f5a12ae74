package rowgen

import (
	"strings"
	"time"

	"intake-backend/internal/templates"
)

// Applicant carries the session identity fields the binding rules draw from.
type Applicant struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Context is everything the binding rules may consult. Now is the generation
// instant; date-typed columns always resolve against it.
type Context struct {
	Applicant     Applicant
	RecruiterName string
	Now           time.Time
}

// Rule binds a column-name pattern to a value resolver. Rules are evaluated
// top-to-bottom, first match wins. A Force rule overrides caller-supplied
// values; a non-Force rule only fills fields the caller left empty.
type Rule struct {
	Name    string
	Match   func(col templates.Column) bool
	Resolve func(col templates.Column, ctx Context) string
	Force   bool
}

// DefaultRules returns the binding rule set in priority order. The catch-all
// default-value rule is last, so appending new heuristics before it never
// disturbs the existing ones.
func DefaultRules() []Rule {
	return []Rule{
		{
			// Fingerprint expiration is filled in later by compliance; the
			// exported row must always leave it blank.
			Name: "fp-expiration-blank",
			Match: func(col templates.Column) bool {
				name := strings.ToLower(col.Name)
				return strings.Contains(name, "fp") && strings.Contains(name, "expiration")
			},
			Resolve: func(templates.Column, Context) string { return "" },
			Force:   true,
		},
		{
			Name: "applicant-name",
			Match: func(col templates.Column) bool {
				name := strings.ToLower(col.Name)
				return strings.Contains(name, "applicant") && strings.Contains(name, "name")
			},
			Resolve: func(_ templates.Column, ctx Context) string {
				return ctx.Applicant.FirstName + " " + ctx.Applicant.LastName
			},
		},
		{
			Name: "phone",
			Match: func(col templates.Column) bool {
				name := strings.ToLower(col.Name)
				if strings.Contains(name, "numero") {
					return true
				}
				return strings.Contains(name, "talent") && strings.Contains(name, "phone")
			},
			Resolve: func(_ templates.Column, ctx Context) string { return ctx.Applicant.Phone },
		},
		{
			Name: "email",
			Match: func(col templates.Column) bool {
				return strings.Contains(strings.ToLower(col.Name), "email")
			},
			Resolve: func(_ templates.Column, ctx Context) string { return ctx.Applicant.Email },
		},
		{
			// The external tracker uses single-letter "R" and "O" columns for
			// the handling recruiter's initials.
			Name: "recruiter-initials",
			Match: func(col templates.Column) bool {
				name := strings.ToUpper(strings.TrimSpace(col.Name))
				return name == "R" || name == "O"
			},
			Resolve: func(_ templates.Column, ctx Context) string {
				return Initials(ctx.RecruiterName)
			},
		},
		{
			Name: "generation-date",
			Match: func(col templates.Column) bool {
				return col.Type == templates.ColumnTypeDate
			},
			Resolve: func(_ templates.Column, ctx Context) string {
				return ctx.Now.Format("2006-01-02")
			},
			Force: true,
		},
		{
			Name:    "configured-default",
			Match:   func(templates.Column) bool { return true },
			Resolve: func(col templates.Column, _ Context) string { return col.DefaultValue },
		},
	}
}

// Initials derives recruiter initials from a full name: first letter of the
// first and last space-separated parts, uppercased. A single-part name yields
// one letter; an empty name yields an empty string.
func Initials(fullName string) string {
	parts := strings.Fields(fullName)
	switch {
	case len(parts) >= 2:
		return strings.ToUpper(firstLetter(parts[0]) + firstLetter(parts[len(parts)-1]))
	case len(parts) == 1:
		return strings.ToUpper(firstLetter(parts[0]))
	default:
		return ""
	}
}

func firstLetter(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
