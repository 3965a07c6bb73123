package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
	"github.com/crewlink/crewlink-api/pkg/export"
)

type employmentStore interface {
	Create(ctx context.Context, record *models.EmploymentRecord) error
	List(ctx context.Context, filter models.EmploymentFilter) ([]models.EmploymentRecord, error)
}

type seafarerResolver interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// ExportArchiver receives a copy of every rendered ledger export. Archiving is
// best effort and must never block or fail the download.
type ExportArchiver interface {
	ArchiveExport(filename string, payload []byte)
}

// EmploymentService maintains the employment record ledger: submissions land
// as Pending entries; decisions belong to the VerificationService.
type EmploymentService struct {
	repo      employmentStore
	profiles  seafarerResolver
	audit     auditLogger
	stats     statsInvalidator
	exporter  *export.CSVExporter
	archiver  ExportArchiver
	logger    *zap.Logger
	listLimit int
}

// EmploymentOption customises optional service collaborators.
type EmploymentOption func(*EmploymentService)

// WithExportArchiver attaches an archiver for rendered exports.
func WithExportArchiver(archiver ExportArchiver) EmploymentOption {
	return func(s *EmploymentService) {
		s.archiver = archiver
	}
}

// NewEmploymentService constructs the service.
func NewEmploymentService(repo employmentStore, profiles seafarerResolver, audit auditLogger, stats statsInvalidator, logger *zap.Logger, listLimit int, opts ...EmploymentOption) *EmploymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listLimit <= 0 {
		listLimit = 100
	}
	svc := &EmploymentService{
		repo:      repo,
		profiles:  profiles,
		audit:     audit,
		stats:     stats,
		exporter:  export.NewCSVExporter(),
		logger:    logger,
		listLimit: listLimit,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit appends a new Pending ledger entry. Multiple pending records per
// seafarer are accepted; ordering is resolved at verification time.
func (s *EmploymentService) Submit(ctx context.Context, req dto.SubmitEmploymentRequest, actor *models.JWTClaims) (*models.EmploymentRecord, error) {
	if !req.EventType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event_type must be Sign On or Sign Off")
	}
	if !req.Source.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown record source")
	}
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event_date must be YYYY-MM-DD")
	}

	seafarer, err := s.profiles.FindByID(ctx, req.SeafarerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seafarer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to resolve seafarer")
	}
	if !seafarer.IsSeafarer() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "seafarer not found")
	}

	record := &models.EmploymentRecord{
		SeafarerID:         req.SeafarerID,
		EventType:          req.EventType,
		VesselName:         req.VesselName,
		Port:               req.Port,
		EventDate:          eventDate,
		Source:             req.Source,
		VerificationStatus: models.VerificationPending,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to store employment record")
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	if actor != nil {
		s.emitAudit(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionRecordSubmit,
			Resource:   "employment_record",
			ResourceID: &record.ID,
		})
	}
	return record, nil
}

// List returns ledger entries, optionally filtered by seafarer, in insertion order.
func (s *EmploymentService) List(ctx context.Context, query dto.EmploymentQuery) ([]models.EmploymentRecord, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = s.listLimit
	}
	records, err := s.repo.List(ctx, models.EmploymentFilter{
		SeafarerID: query.SeafarerID,
		Limit:      limit,
		Offset:     query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list employment records")
	}
	return records, nil
}

// ListPending returns the admin verification queue.
func (s *EmploymentService) ListPending(ctx context.Context) ([]models.EmploymentRecord, error) {
	records, err := s.repo.List(ctx, models.EmploymentFilter{
		Status: models.VerificationPending,
		Limit:  s.listLimit,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list pending records")
	}
	return records, nil
}

// ExportCSV renders the full ledger as CSV for the admin export endpoint.
func (s *EmploymentService) ExportCSV(ctx context.Context, query dto.EmploymentQuery) ([]byte, error) {
	records, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"id", "seafarer_id", "event_type", "vessel_name", "port", "event_date", "source", "verification_status"},
		Rows:    make([]map[string]string, 0, len(records)),
	}
	for _, record := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":                  record.ID,
			"seafarer_id":         record.SeafarerID,
			"event_type":          string(record.EventType),
			"vessel_name":         record.VesselName,
			"port":                record.Port,
			"event_date":          record.EventDate.Format("2006-01-02"),
			"source":              string(record.Source),
			"verification_status": string(record.VerificationStatus),
		})
	}
	payload, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ledger export")
	}
	if s.archiver != nil {
		filename := fmt.Sprintf("employment-records-%s.csv", time.Now().UTC().Format("20060102-150405"))
		s.archiver.ArchiveExport(filename, payload)
	}
	return payload, nil
}

func (s *EmploymentService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "employment-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
