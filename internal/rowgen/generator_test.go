package rowgen

import (
	"strings"
	"testing"
	"time"

	"intake-backend/internal/templates"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse("2006-01-02", "2024-03-01")
	if err != nil {
		t.Fatalf("parse fixed date: %v", err)
	}
	return now
}

func trackerTemplate() templates.Template {
	return templates.Template{
		ID:   "tmpl-1",
		Name: "Daily Tracker",
		Columns: []templates.Column{
			{Order: 0, Name: "Applicant Name", Type: templates.ColumnTypeText},
			{Order: 1, Name: "R", Type: templates.ColumnTypeText},
			{Order: 2, Name: "Date", Type: templates.ColumnTypeDate},
			{Order: 3, Name: "FP Expiration", Type: templates.ColumnTypeDate},
		},
	}
}

func TestGenerateHeuristicScenario(t *testing.T) {
	ctx := Context{
		Applicant:     Applicant{FirstName: "Ana", LastName: "Diaz"},
		RecruiterName: "John Smith",
		Now:           fixedNow(t),
	}

	rowText, rowArray, err := Generate(trackerTemplate(), nil, ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rowText != "Ana Diaz\tJS\t2024-03-01\t" {
		t.Fatalf("unexpected row text: %q", rowText)
	}
	if len(rowArray) != 4 {
		t.Fatalf("expected 4 values, got %d", len(rowArray))
	}
}

func TestGenerateValueCountMatchesColumns(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 2, Name: "Zip"},
			{Order: 0, Name: "Email"},
			{Order: 1, Name: "Notes", DefaultValue: "n/a"},
		},
	}
	_, rowArray, err := Generate(tmpl, map[string]string{}, Context{Now: fixedNow(t)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rowArray) != len(tmpl.Columns) {
		t.Fatalf("expected %d values, got %d", len(tmpl.Columns), len(rowArray))
	}
}

func TestGenerateEmptyTemplate(t *testing.T) {
	_, _, err := Generate(templates.Template{}, nil, Context{})
	if err != ErrEmptyTemplate {
		t.Fatalf("expected ErrEmptyTemplate, got %v", err)
	}
}

func TestFPExpirationAlwaysBlank(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 0, Name: "FP Expiration Date", Type: templates.ColumnTypeDate},
		},
	}
	data := map[string]string{"FP Expiration Date": "2030-12-31"}

	rowText, _, err := Generate(tmpl, data, Context{Now: fixedNow(t)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rowText != "" {
		t.Fatalf("expected blank fp expiration, got %q", rowText)
	}
}

func TestDateColumnAlwaysGenerationDate(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 0, Name: "Session Date", Type: templates.ColumnTypeDate},
		},
	}
	data := map[string]string{"Session Date": "1999-01-01"}

	rowText, _, err := Generate(tmpl, data, Context{Now: fixedNow(t)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rowText != "2024-03-01" {
		t.Fatalf("expected generation date, got %q", rowText)
	}
}

func TestCallerValuesSurviveFallbackRules(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 0, Name: "Applicant Name", Type: templates.ColumnTypeText},
			{Order: 1, Name: "Email", Type: templates.ColumnTypeText},
		},
	}
	ctx := Context{
		Applicant: Applicant{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com"},
		Now:       fixedNow(t),
	}
	data := map[string]string{"Applicant Name": "Ana M. Diaz"}

	rowText, _, err := Generate(tmpl, data, ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Edited name preserved, empty email filled from the session.
	if rowText != "Ana M. Diaz\tana@example.com" {
		t.Fatalf("unexpected row: %q", rowText)
	}
}

func TestPhoneRuleMatchesNumeroAndTalentPhone(t *testing.T) {
	ctx := Context{Applicant: Applicant{Phone: "305-555-0100"}, Now: fixedNow(t)}
	for _, name := range []string{"Numero de Telefono", "Talent Phone"} {
		tmpl := templates.Template{Columns: []templates.Column{{Order: 0, Name: name}}}
		rowText, _, err := Generate(tmpl, nil, ctx)
		if err != nil {
			t.Fatalf("Generate(%s): %v", name, err)
		}
		if rowText != "305-555-0100" {
			t.Fatalf("column %q: expected phone, got %q", name, rowText)
		}
	}
}

func TestGenerateDeterministicAtFixedInstant(t *testing.T) {
	ctx := Context{
		Applicant:     Applicant{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com", Phone: "305-555-0100"},
		RecruiterName: "John Smith",
		Now:           fixedNow(t),
	}
	tmpl := trackerTemplate()

	first, _, err := Generate(tmpl, nil, ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	parsed := Parse(first, tmpl)
	second, _, err := Generate(tmpl, parsed, ctx)
	if err != nil {
		t.Fatalf("Generate again: %v", err)
	}
	if first != second {
		t.Fatalf("regeneration not idempotent: %q vs %q", first, second)
	}
}

func TestParsePadsMissingAndDropsExtra(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 0, Name: "Name"},
			{Order: 1, Name: "Status", DefaultValue: "pending"},
		},
	}

	short := Parse("Ana Diaz", tmpl)
	if short["Name"] != "Ana Diaz" || short["Status"] != "pending" {
		t.Fatalf("unexpected short parse: %#v", short)
	}

	long := Parse("Ana Diaz\tactive\textra\tvalues", tmpl)
	if len(long) != 2 || long["Status"] != "active" {
		t.Fatalf("unexpected long parse: %#v", long)
	}
}

func TestSortedColumnsStableOnTies(t *testing.T) {
	tmpl := templates.Template{
		Columns: []templates.Column{
			{Order: 1, Name: "B"},
			{Order: 0, Name: "A"},
			{Order: 1, Name: "C"},
		},
	}
	cols := tmpl.SortedColumns()
	got := make([]string, len(cols))
	for i, col := range cols {
		got[i] = col.Name
	}
	if strings.Join(got, ",") != "A,B,C" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"John Smith", "JS"},
		{"Nicolette Rose", "NR"},
		{"maria del carmen lopez", "ML"},
		{"Cher", "C"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Initials(tc.name); got != tc.want {
			t.Errorf("Initials(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
