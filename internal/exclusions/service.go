package exclusions

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"intake-backend/internal/shared/storage/object"
)

// NormalizeName lowercases a full name and collapses runs of whitespace, so
// screening is insensitive to case and spacing. A single-comma "Last, First"
// form is flipped to "first last" so both spellings land on the same key.
func NormalizeName(name string) string {
	if last, first, ok := strings.Cut(name, ","); ok && !strings.Contains(first, ",") {
		name = first + " " + last
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ImportResult summarizes an exclusion-list upload.
type ImportResult struct {
	Entries    int    `json:"entries"`
	FileName   string `json:"fileName"`
	StorageKey string `json:"storageKey,omitempty"`
}

// Service owns the exclusion list: replacing it from uploaded CSV or PDF
// files and screening applicants against it.
type Service struct {
	Repo  Repo
	Store object.ObjectStore

	// Clock is overridable in tests. Defaults to time.Now UTC.
	Clock func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// Check screens an applicant by first and last name. A miss is (zero, false, nil).
func (s *Service) Check(ctx context.Context, firstName, lastName string) (Entry, bool, error) {
	full := NormalizeName(firstName + " " + lastName)
	if full == "" {
		return Entry{}, false, nil
	}
	return s.Repo.FindByName(ctx, full)
}

// List returns the current exclusion list.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.Repo.List(ctx)
}

// Count returns the number of entries on the list.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// Clear removes the whole list.
func (s *Service) Clear(ctx context.Context) error {
	return s.Repo.Clear(ctx)
}

// Import replaces the list from an uploaded file, dispatching on extension.
// The raw upload is retained in the object store for audit.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader) (ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return ImportResult{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	var entries []Entry
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		entries, err = s.parseCSV(raw)
	case ".pdf":
		entries, err = s.parsePDF(raw)
	default:
		return ImportResult{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, filepath.Ext(fileName))
	}
	if err != nil {
		return ImportResult{}, err
	}
	if len(entries) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no entries found in %s", ErrInvalidInput, fileName)
	}

	result := ImportResult{Entries: len(entries), FileName: fileName}
	if s.Store != nil {
		key, _, _, err := s.Store.Save(ctx, "exclusion-list", fileName, bytes.NewReader(raw))
		if err != nil {
			return ImportResult{}, fmt.Errorf("retain upload: %w", err)
		}
		result.StorageKey = key
	}

	if err := s.Repo.ReplaceAll(ctx, entries); err != nil {
		return ImportResult{}, fmt.Errorf("replace exclusion list: %w", err)
	}
	return result, nil
}

// parseCSV reads entries from a CSV upload. A header row naming a "name"
// column maps columns by header; otherwise columns are positional:
// name, code, ssn, dob, notes.
func (s *Service) parseCSV(raw []byte) ([]Entry, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed csv: %v", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx := map[string]int{"name": 0, "code": 1, "ssn": 2, "dob": 3, "notes": 4}
	rows := records
	if header := headerIndex(records[0]); header != nil {
		idx = header
		rows = records[1:]
	}

	now := s.now()
	var entries []Entry
	for _, row := range rows {
		name := field(row, idx["name"])
		if name == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Name:      name,
			Code:      field(row, idx["code"]),
			SSN:       field(row, idx["ssn"]),
			DOB:       field(row, idx["dob"]),
			Notes:     field(row, idx["notes"]),
			CreatedAt: now,
		})
	}
	return entries, nil
}

// parsePDF extracts the text layer and treats every non-empty line as a name.
func (s *Service) parsePDF(raw []byte) ([]Entry, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable pdf: %v", ErrInvalidInput, err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: pdf has no text layer: %v", ErrInvalidInput, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, err
	}

	now := s.now()
	var entries []Entry
	for _, line := range strings.Split(buf.String(), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: now,
		})
	}
	return entries, nil
}

func headerIndex(row []string) map[string]int {
	idx := make(map[string]int)
	for i, cell := range row {
		idx[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil
	}
	// Missing optional columns point past any row and read as empty.
	for _, key := range []string{"code", "ssn", "dob", "notes"} {
		if _, ok := idx[key]; !ok {
			idx[key] = -1
		}
	}
	return idx
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
