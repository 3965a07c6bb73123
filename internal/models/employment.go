package models

import "time"

// EventType classifies an employment event.
type EventType string

const (
	EventSignOn  EventType = "Sign On"
	EventSignOff EventType = "Sign Off"
)

// Valid reports whether the event type is a known variant.
func (t EventType) Valid() bool {
	return t == EventSignOn || t == EventSignOff
}

// RecordSource identifies who reported an employment event.
type RecordSource string

const (
	SourceSeafarer   RecordSource = "Seafarer"
	SourceShipowner  RecordSource = "Shipowner"
	SourcePortOffice RecordSource = "Port Office"
)

// Valid reports whether the source is a known variant.
func (s RecordSource) Valid() bool {
	switch s {
	case SourceSeafarer, SourceShipowner, SourcePortOffice:
		return true
	}
	return false
}

// VerificationStatus captures the ledger entry lifecycle. Pending is the only
// non-terminal state; Verified and Flagged are terminal and immutable.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "Pending"
	VerificationVerified VerificationStatus = "Verified"
	VerificationFlagged  VerificationStatus = "Flagged"
)

// Terminal reports whether the status admits no further transition.
func (s VerificationStatus) Terminal() bool {
	return s == VerificationVerified || s == VerificationFlagged
}

// EmploymentRecord is a reported sign-on or sign-off event awaiting review.
type EmploymentRecord struct {
	ID                 string             `db:"id" json:"id"`
	SeafarerID         string             `db:"seafarer_id" json:"seafarer_id"`
	EventType          EventType          `db:"event_type" json:"event_type"`
	VesselName         string             `db:"vessel_name" json:"vessel_name"`
	Port               string             `db:"port" json:"port"`
	EventDate          time.Time          `db:"event_date" json:"event_date"`
	Source             RecordSource       `db:"source" json:"source"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
}

// EmploymentFilter constrains ledger listing queries.
type EmploymentFilter struct {
	SeafarerID string
	Status     VerificationStatus
	Limit      int
	Offset     int
}
