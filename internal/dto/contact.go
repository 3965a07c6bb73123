package dto

import "github.com/crewlink/crewlink-api/internal/models"

// CreateContactRequest is the payload for an agent contact request.
type CreateContactRequest struct {
	SeafarerID string `json:"seafarer_id" binding:"required"`
}

// ReviewContactRequest captures the admin decision on a pending request.
type ReviewContactRequest struct {
	Outcome models.RequestStatus `json:"outcome" binding:"required"`
}
