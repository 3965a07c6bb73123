package models

import "time"

// RequestStatus captures the contact request lifecycle.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether the status admits no further transition.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ContactRequest is an agent's ask to obtain a seafarer's contact details.
type ContactRequest struct {
	ID          string        `db:"id" json:"id"`
	RequesterID string        `db:"requester_id" json:"requester_id"`
	SeafarerID  string        `db:"seafarer_id" json:"seafarer_id"`
	Status      RequestStatus `db:"status" json:"status"`
	ReviewedBy  *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	ReviewedAt  *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// ContactFilter constrains contact request listing queries.
type ContactFilter struct {
	RequesterID string
	SeafarerID  string
	Status      RequestStatus
}
