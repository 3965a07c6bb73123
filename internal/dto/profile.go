package dto

import "github.com/crewlink/crewlink-api/internal/models"

// RegisterProfileRequest is the self-registration payload.
type RegisterProfileRequest struct {
	Role     models.UserRole `json:"role" binding:"required"`
	FullName string          `json:"full_name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`

	Rank               *string  `json:"rank"`
	COC                *string  `json:"coc"`
	ICPassport         *string  `json:"ic_passport"`
	SID                *string  `json:"sid"`
	Phone              *string  `json:"phone"`
	Nationality        *string  `json:"nationality"`
	YearsOfExperience  *int     `json:"years_of_experience"`
	ShipTypeExperience []string `json:"ship_type_experience"`

	CertBasicTrainingExpiry   *string `json:"cert_basic_training_expiry"`
	CertAdvFireFightingExpiry *string `json:"cert_adv_fire_fighting_expiry"`
	CertSurvivalCraftExpiry   *string `json:"cert_survival_craft_expiry"`
}

// SetAvailabilityRequest toggles a seafarer's availability status.
type SetAvailabilityRequest struct {
	AvailabilityStatus models.AvailabilityStatus `json:"availability_status" binding:"required"`
}

// ProfileQuery mirrors supported profile listing filters.
type ProfileQuery struct {
	Role     string
	Page     int
	PageSize int
}
