package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

const employmentColumns = `id, seafarer_id, event_type, vessel_name, port, event_date, source, verification_status, created_at`

// EmploymentRepository persists the employment record ledger.
type EmploymentRepository struct {
	db *sqlx.DB
}

// NewEmploymentRepository constructs the repository.
func NewEmploymentRepository(db *sqlx.DB) *EmploymentRepository {
	return &EmploymentRepository{db: db}
}

// Create appends a new ledger entry.
func (r *EmploymentRepository) Create(ctx context.Context, record *models.EmploymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.VerificationStatus == "" {
		record.VerificationStatus = models.VerificationPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO employment_records
	(id, seafarer_id, event_type, vessel_name, port, event_date, source, verification_status, created_at)
	VALUES (:id, :seafarer_id, :event_type, :vessel_name, :port, :event_date, :source, :verification_status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create employment record: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by identifier.
func (r *EmploymentRepository) GetByID(ctx context.Context, id string) (*models.EmploymentRecord, error) {
	query := `SELECT ` + employmentColumns + ` FROM employment_records WHERE id = $1 LIMIT 1`
	var record models.EmploymentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employment record: %w", err)
	}
	return &record, nil
}

// List returns ledger entries matching the filter in insertion order.
func (r *EmploymentRepository) List(ctx context.Context, filter models.EmploymentFilter) ([]models.EmploymentRecord, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 2)
	builder.WriteString(`SELECT ` + employmentColumns + ` FROM employment_records`)

	conditions := make([]string, 0, 2)
	if filter.SeafarerID != "" {
		args = append(args, filter.SeafarerID)
		conditions = append(conditions, fmt.Sprintf("seafarer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("verification_status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC, id ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.EmploymentRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list employment records: %w", err)
	}
	return records, nil
}

// DecideParams groups the inputs of the verification decision.
type DecideParams struct {
	RecordID   string
	Outcome    models.VerificationStatus
	FlagReason string
}

// Decide applies the admin decision as one atomic unit: the ledger transition
// is a compare-and-swap guarded by the Pending status, and the dependent
// profile mutation (or flag insert) runs in the same transaction. Concurrent
// calls on the same record serialise on the row lock; the loser of the race
// observes a terminal status and gets ErrAlreadyDecided.
func (r *EmploymentRepository) Decide(ctx context.Context, params DecideParams) (*models.EmploymentRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin decide tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var record models.EmploymentRecord
	casQuery := `UPDATE employment_records SET verification_status = $2
	WHERE id = $1 AND verification_status = $3
	RETURNING ` + employmentColumns
	if err := tx.GetContext(ctx, &record, casQuery, params.RecordID, params.Outcome, models.VerificationPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var status models.VerificationStatus
			err := tx.GetContext(ctx, &status, `SELECT verification_status FROM employment_records WHERE id = $1`, params.RecordID)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrNotFound
			}
			if err != nil {
				return nil, fmt.Errorf("load record status: %w", err)
			}
			return nil, appErrors.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("transition employment record: %w", err)
	}

	switch params.Outcome {
	case models.VerificationVerified:
		if err := applyProfileSideEffect(ctx, tx, &record); err != nil {
			return nil, err
		}
	case models.VerificationFlagged:
		reason := params.FlagReason
		if reason == "" {
			reason = "Flagged during admin verification"
		}
		const flagQuery = `INSERT INTO system_flags (id, record_id, reason, created_at) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, flagQuery, uuid.NewString(), record.ID, reason, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("insert system flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decide tx: %w", err)
	}
	return &record, nil
}

func applyProfileSideEffect(ctx context.Context, tx *sqlx.Tx, record *models.EmploymentRecord) error {
	now := time.Now().UTC()
	var result sql.Result
	var err error
	switch record.EventType {
	case models.EventSignOn:
		const query = `UPDATE profiles SET employment_status = $2, availability_status = $3, updated_at = $4
		WHERE id = $1 AND role = $5`
		result, err = tx.ExecContext(ctx, query, record.SeafarerID,
			models.EmploymentOnboard, models.AvailabilityNotAvailable, now, models.RoleSeafarer)
	case models.EventSignOff:
		const query = `UPDATE profiles SET employment_status = $2, availability_status = $3, last_sign_off_date = $4, updated_at = $5
		WHERE id = $1 AND role = $6`
		result, err = tx.ExecContext(ctx, query, record.SeafarerID,
			models.EmploymentSignedOff, models.AvailabilityAvailable, record.EventDate, now, models.RoleSeafarer)
	default:
		return fmt.Errorf("unknown event type %q", record.EventType)
	}
	if err != nil {
		return fmt.Errorf("apply profile mutation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check profile mutation rows: %w", err)
	}
	if rows == 0 {
		// The tx rolls back: a Verified record must never point at an
		// unmutated or missing profile.
		return appErrors.ErrInconsistentState
	}
	return nil
}
