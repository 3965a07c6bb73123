package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionProfileRegister  = "PROFILE_REGISTER"
	AuditActionAvailabilitySet  = "AVAILABILITY_SET"
	AuditActionRecordSubmit     = "RECORD_SUBMIT"
	AuditActionRecordDecide     = "RECORD_DECIDE"
	AuditActionContactRequested = "CONTACT_REQUESTED"
	AuditActionContactReviewed  = "CONTACT_REVIEWED"
)

// AuditPayload wraps a JSON snippet for storage in an audit row.
func AuditPayload(s string) *string {
	return &s
}

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  *string   `db:"old_values" json:"old_values,omitempty"`
	NewValues  *string   `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
