package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crewlink/crewlink-api/internal/models"
)

const profileColumns = `id, role, full_name, email, password_hash, rank, coc, ic_passport, sid, phone,
       nationality, years_of_experience, ship_type_experience,
       cert_basic_training_expiry, cert_adv_fire_fighting_expiry, cert_survival_craft_expiry,
       employment_status, availability_status, last_sign_off_date, created_at, updated_at`

// ProfileRepository provides database access for directory profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO profiles
	(id, role, full_name, email, password_hash, rank, coc, ic_passport, sid, phone,
	 nationality, years_of_experience, ship_type_experience,
	 cert_basic_training_expiry, cert_adv_fire_fighting_expiry, cert_survival_craft_expiry,
	 employment_status, availability_status, last_sign_off_date, created_at, updated_at)
	VALUES (:id, :role, :full_name, :email, :password_hash, :rank, :coc, :ic_passport, :sid, :phone,
	 :nationality, :years_of_experience, :ship_type_experience,
	 :cert_basic_training_expiry, :cert_adv_fire_fighting_expiry, :cert_survival_craft_expiry,
	 :employment_status, :availability_status, :last_sign_off_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// FindByEmail returns a profile by email address.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	return &profile, nil
}

// List returns profiles based on filters with total count.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	where := ""
	var args []interface{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		where = " WHERE role = $1"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM profiles"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s FROM profiles%s ORDER BY created_at ASC LIMIT %d OFFSET %d",
		profileColumns, where, pageSize, offset)

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, total, nil
}

// UpdateAvailability toggles the availability status for a seafarer that is not
// currently onboard. Zero rows affected signals the guard rejected the update.
func (r *ProfileRepository) UpdateAvailability(ctx context.Context, id string, status models.AvailabilityStatus) error {
	const query = `UPDATE profiles SET availability_status = $2, updated_at = $3
	WHERE id = $1 AND role = $4 AND (employment_status IS NULL OR employment_status <> $5)`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC(), models.RoleSeafarer, models.EmploymentOnboard)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check availability update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
