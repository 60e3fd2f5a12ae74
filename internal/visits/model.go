package visits

import "time"

// Visit kinds. Walk-in traffic that is not an intake session: orientation
// attendance, badge pickup, and fingerprinting appointments.
const (
	KindOrientation = "orientation"
	KindBadge       = "badge"
	KindFingerprint = "fingerprint"
)

// StatusRegistered is the only visit status today; visits are append-only
// check-in records.
const StatusRegistered = "registered"

// Visit is one walk-in check-in at the front desk.
type Visit struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	TimeSlot        string    `json:"timeSlot,omitempty"`
	FingerprintType string    `json:"fingerprintType,omitempty"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ValidKind reports whether kind names a known visit kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindOrientation, KindBadge, KindFingerprint:
		return true
	}
	return false
}
