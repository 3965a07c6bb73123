package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crewlink/crewlink-api/internal/models"
	"github.com/crewlink/crewlink-api/internal/repository"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type decisionStore interface {
	Decide(ctx context.Context, params repository.DecideParams) (*models.EmploymentRecord, error)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

// VerificationService applies admin decisions to pending ledger entries. The
// transition and its profile side effect are one atomic unit inside the store;
// verification order is state-mutation order. The engine does not reorder
// by event_date, it trusts whichever record the admin decides.
type VerificationService struct {
	store   decisionStore
	audit   auditLogger
	metrics *MetricsService
	stats   statsInvalidator
	logger  *zap.Logger
}

// NewVerificationService constructs the service.
func NewVerificationService(store decisionStore, audit auditLogger, metrics *MetricsService, stats statsInvalidator, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{store: store, audit: audit, metrics: metrics, stats: stats, logger: logger}
}

// Decide transitions a Pending record to Verified or Flagged exactly once.
// A second call on the same record fails with ALREADY_DECIDED and leaves both
// the record and the seafarer profile untouched.
func (s *VerificationService) Decide(ctx context.Context, recordID string, outcome models.VerificationStatus, reason string, actor *models.JWTClaims) (*models.EmploymentRecord, error) {
	if !outcome.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outcome must be Verified or Flagged")
	}

	record, err := s.store.Decide(ctx, repository.DecideParams{
		RecordID:   recordID,
		Outcome:    outcome,
		FlagReason: reason,
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) ||
			appErrors.Is(err, appErrors.ErrAlreadyDecided) ||
			appErrors.Is(err, appErrors.ErrInconsistentState) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to apply decision")
	}

	s.metrics.RecordDecision(string(outcome))
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	if actor != nil {
		s.emitAudit(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionRecordDecide,
			Resource:   "employment_record",
			ResourceID: &record.ID,
			NewValues:  models.AuditPayload(fmt.Sprintf(`{"outcome":%q,"event_type":%q}`, outcome, record.EventType)),
		})
	}

	s.logger.Info("employment record decided",
		zap.String("record_id", record.ID),
		zap.String("seafarer_id", record.SeafarerID),
		zap.String("outcome", string(outcome)),
	)
	return record, nil
}

func (s *VerificationService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "verification-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
