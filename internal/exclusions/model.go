package exclusions

import "time"

// Entry is one person on the do-not-process exclusion list.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	SSN       string    `json:"ssn,omitempty"`
	DOB       string    `json:"dob,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
