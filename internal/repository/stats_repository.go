package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crewlink/crewlink-api/internal/models"
)

// StatsRepository computes dashboard counters straight from the stores so the
// projection is consistent with the tables at the instant of the read.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Snapshot returns the current counters in a single query.
func (r *StatsRepository) Snapshot(ctx context.Context) (*models.SystemStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM profiles WHERE role = $1)                                    AS total_seafarers,
	(SELECT COUNT(*) FROM profiles WHERE role = $1 AND employment_status = $2)         AS seafarers_onboard,
	(SELECT COUNT(*) FROM profiles WHERE role = $3)                                    AS total_agents,
	(SELECT COUNT(*) FROM employment_records WHERE verification_status = $4)           AS pending_verifications,
	(SELECT COUNT(*) FROM contact_requests WHERE status = $5)                          AS pending_requests`

	var row struct {
		TotalSeafarers       int `db:"total_seafarers"`
		SeafarersOnboard     int `db:"seafarers_onboard"`
		TotalAgents          int `db:"total_agents"`
		PendingVerifications int `db:"pending_verifications"`
		PendingRequests      int `db:"pending_requests"`
	}
	if err := r.db.GetContext(ctx, &row, query,
		models.RoleSeafarer, models.EmploymentOnboard, models.RoleAgent,
		models.VerificationPending, models.RequestPending); err != nil {
		return nil, fmt.Errorf("snapshot stats: %w", err)
	}

	return &models.SystemStats{
		TotalSeafarers:       row.TotalSeafarers,
		SeafarersOnboard:     row.SeafarersOnboard,
		TotalAgents:          row.TotalAgents,
		PendingVerifications: row.PendingVerifications,
		PendingRequests:      row.PendingRequests,
	}, nil
}
