package sessions

import "time"

// Lifecycle states. A session only ever moves forward:
// assigned -> in-progress -> completed.
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Session types offered at registration.
const (
	TypeNewHire      = "new-hire"
	TypeReactivation = "reactivation"
)

// ExclusionMatch carries the matched exclusion-list entry recorded at
// registration time.
type ExclusionMatch struct {
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
	SSN   string `json:"ssn,omitempty"`
	DOB   string `json:"dob,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Ledger is the document/status checklist attached to a session. The flags
// are independent; any combination is valid.
type Ledger struct {
	OB365Sent  bool `json:"ob365Sent"`
	I9Sent     bool `json:"i9Sent"`
	ExistingI9 bool `json:"existingI9"`
	Ineligible bool `json:"ineligible"`
	Rejected   bool `json:"rejected"`
	DrugScreen bool `json:"drugScreen"`
	Questions  bool `json:"questions"`
}

// Step is one item on the pre-session checklist the applicant works through
// in the lobby. Every session gets the default set at registration.
type Step struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// DefaultSteps returns the checklist attached to every new session.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:        "english_communication",
			Description: "For our process you must be able to communicate in English",
		},
		{
			Name:        "education_proof",
			Description: "Have your education proof; credentials from outside the U.S. need an equivalence",
		},
		{
			Name:        "two_government_ids",
			Description: "Two forms of government ID, physical originals and not expired",
		},
	}
}

// Session is an applicant's tracked journey through the intake stages.
type Session struct {
	ID                  string          `json:"id"`
	FirstName           string          `json:"firstName"`
	LastName            string          `json:"lastName"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	ZipCode             string          `json:"zipCode"`
	SessionType         string          `json:"sessionType"`
	TimeSlot            string          `json:"timeSlot"`
	Status              string          `json:"status"`
	IsInExclusionList   bool            `json:"isInExclusionList"`
	ExclusionMatch      *ExclusionMatch `json:"exclusionMatch,omitempty"`
	Ledger              Ledger          `json:"ledger"`
	Steps               []Step          `json:"steps"`
	AssignedRecruiterID string          `json:"assignedRecruiterId,omitempty"`
	GeneratedRow        string          `json:"generatedRow,omitempty"`
	StartedAt           *time.Time      `json:"startedAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
	DurationMinutes     *int            `json:"durationMinutes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}
