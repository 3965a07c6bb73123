package dto

import "github.com/crewlink/crewlink-api/internal/models"

// SubmitEmploymentRequest is the payload for reporting a sign-on/sign-off event.
type SubmitEmploymentRequest struct {
	SeafarerID string              `json:"seafarer_id" binding:"required"`
	EventType  models.EventType    `json:"event_type" binding:"required"`
	VesselName string              `json:"vessel_name" binding:"required"`
	Port       string              `json:"port" binding:"required"`
	EventDate  string              `json:"event_date" binding:"required"`
	Source     models.RecordSource `json:"source" binding:"required"`
}

// DecideEmploymentRequest captures the admin decision on a pending record.
type DecideEmploymentRequest struct {
	Outcome models.VerificationStatus `json:"outcome" binding:"required"`
	Reason  string                    `json:"reason"`
}

// EmploymentQuery mirrors supported ledger listing filters.
type EmploymentQuery struct {
	SeafarerID string
	Limit      int
	Offset     int
}
