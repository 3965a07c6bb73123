package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole is the closed set of roles known to the directory.
type UserRole string

const (
	RoleSeafarer    UserRole = "seafarer"
	RoleAgent       UserRole = "agent"
	RoleAdmin       UserRole = "admin"
	RolePortOfficer UserRole = "port_officer"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSeafarer, RoleAgent, RoleAdmin, RolePortOfficer:
		return true
	}
	return false
}

// EmploymentStatus tracks whether a seafarer is currently serving on a vessel.
type EmploymentStatus string

const (
	EmploymentOnboard   EmploymentStatus = "Onboard"
	EmploymentSignedOff EmploymentStatus = "Signed_off"
	EmploymentInactive  EmploymentStatus = "Inactive"
)

// AvailabilityStatus tracks whether a seafarer can take new assignments.
type AvailabilityStatus string

const (
	AvailabilityAvailable    AvailabilityStatus = "Available"
	AvailabilityNotAvailable AvailabilityStatus = "Not Available"
)

// Profile represents a directory member. Status fields of seafarers are owned
// by the verification workflow once a record reaches a terminal state.
type Profile struct {
	ID       string   `db:"id" json:"id"`
	Role     UserRole `db:"role" json:"role"`
	FullName string   `db:"full_name" json:"full_name"`
	Email    string   `db:"email" json:"email"`

	PasswordHash string `db:"password_hash" json:"-"`

	Rank               *string        `db:"rank" json:"rank,omitempty"`
	COC                *string        `db:"coc" json:"coc,omitempty"`
	ICPassport         *string        `db:"ic_passport" json:"ic_passport,omitempty"`
	SID                *string        `db:"sid" json:"sid,omitempty"`
	Phone              *string        `db:"phone" json:"phone,omitempty"`
	Nationality        *string        `db:"nationality" json:"nationality,omitempty"`
	YearsOfExperience  *int           `db:"years_of_experience" json:"years_of_experience,omitempty"`
	ShipTypeExperience pq.StringArray `db:"ship_type_experience" json:"ship_type_experience,omitempty"`

	CertBasicTrainingExpiry   *time.Time `db:"cert_basic_training_expiry" json:"cert_basic_training_expiry,omitempty"`
	CertAdvFireFightingExpiry *time.Time `db:"cert_adv_fire_fighting_expiry" json:"cert_adv_fire_fighting_expiry,omitempty"`
	CertSurvivalCraftExpiry   *time.Time `db:"cert_survival_craft_expiry" json:"cert_survival_craft_expiry,omitempty"`

	EmploymentStatus   *EmploymentStatus   `db:"employment_status" json:"employment_status,omitempty"`
	AvailabilityStatus *AvailabilityStatus `db:"availability_status" json:"availability_status,omitempty"`
	LastSignOffDate    *time.Time          `db:"last_sign_off_date" json:"last_sign_off_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsSeafarer reports whether the profile belongs to a seafarer.
func (p *Profile) IsSeafarer() bool {
	return p != nil && p.Role == RoleSeafarer
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role     *UserRole
	Page     int
	PageSize int
}

// ProfileStatusUpdate groups the status fields the verification engine owns.
type ProfileStatusUpdate struct {
	EmploymentStatus   EmploymentStatus
	AvailabilityStatus AvailabilityStatus
	LastSignOffDate    *time.Time
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
