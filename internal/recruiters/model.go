package recruiters

import "time"

// Availability states a recruiter toggles between.
const (
	StatusAvailable = "available"
	StatusBusy      = "busy"
)

// Recruiter represents a front-desk recruiter who handles applicant sessions.
type Recruiter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
