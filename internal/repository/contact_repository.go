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
	"github.com/lib/pq"

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

const contactColumns = `id, requester_id, seafarer_id, status, reviewed_by, created_at, reviewed_at`

// pqUniqueViolation is the Postgres error code for unique constraint breaches.
const pqUniqueViolation = "23505"

// ContactRepository persists agent contact requests.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository constructs the repository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new pending request. A partial unique index on
// (requester_id, seafarer_id) WHERE status = 'pending' closes the race between
// concurrent duplicate submissions; the violation maps to ErrDuplicateRequest.
func (r *ContactRepository) Create(ctx context.Context, request *models.ContactRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO contact_requests (id, requester_id, seafarer_id, status, reviewed_by, created_at, reviewed_at)
	VALUES (:id, :requester_id, :seafarer_id, :status, :reviewed_by, :created_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrDuplicateRequest
		}
		return fmt.Errorf("create contact request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.ContactRequest, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_requests WHERE id = $1 LIMIT 1`
	var request models.ContactRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contact request: %w", err)
	}
	return &request, nil
}

// ExistsPending reports whether a pending request exists for the pair.
func (r *ContactRepository) ExistsPending(ctx context.Context, requesterID, seafarerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM contact_requests WHERE requester_id = $1 AND seafarer_id = $2 AND status = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, requesterID, seafarerID, models.RequestPending); err != nil {
		return false, fmt.Errorf("check pending contact request: %w", err)
	}
	return exists, nil
}

// List returns requests matching the filter, newest first.
func (r *ContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT ` + contactColumns + ` FROM contact_requests`)

	conditions := make([]string, 0, 3)
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", len(args)))
	}
	if filter.SeafarerID != "" {
		args = append(args, filter.SeafarerID)
		conditions = append(conditions, fmt.Sprintf("seafarer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	var requests []models.ContactRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list contact requests: %w", err)
	}
	return requests, nil
}

// ReviewParams groups the reviewer decision inputs.
type ReviewParams struct {
	RequestID  string
	Outcome    models.RequestStatus
	ReviewedBy string
	ReviewedAt time.Time
}

// Review applies the decision guarded by the pending status. The request is
// returned in its post-transition state; ErrNotFound / ErrAlreadyDecided are
// reported when the id is unknown or the request is already terminal.
func (r *ContactRepository) Review(ctx context.Context, params ReviewParams) (*models.ContactRequest, error) {
	casQuery := `UPDATE contact_requests SET status = $2, reviewed_by = $3, reviewed_at = $4
	WHERE id = $1 AND status = $5
	RETURNING ` + contactColumns
	var request models.ContactRequest
	if err := r.db.GetContext(ctx, &request, casQuery, params.RequestID, params.Outcome,
		params.ReviewedBy, params.ReviewedAt, models.RequestPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var status models.RequestStatus
			err := r.db.GetContext(ctx, &status, `SELECT status FROM contact_requests WHERE id = $1`, params.RequestID)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrNotFound
			}
			if err != nil {
				return nil, fmt.Errorf("load contact request status: %w", err)
			}
			return nil, appErrors.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("review contact request: %w", err)
	}
	return &request, nil
}
