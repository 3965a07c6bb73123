package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crewlink/crewlink-api/internal/models"
	"github.com/crewlink/crewlink-api/internal/repository"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type contactStore interface {
	Create(ctx context.Context, request *models.ContactRequest) error
	List(ctx context.Context, filter models.ContactFilter) ([]models.ContactRequest, error)
	ExistsPending(ctx context.Context, requesterID, seafarerID string) (bool, error)
	Review(ctx context.Context, params repository.ReviewParams) (*models.ContactRequest, error)
}

// ContactService brokers agent requests for seafarer contact details. The
// state machine mirrors the verification engine but carries no side effects.
type ContactService struct {
	repo     contactStore
	profiles seafarerResolver
	audit    auditLogger
	metrics  *MetricsService
	stats    statsInvalidator
	logger   *zap.Logger
	now      func() time.Time
}

// NewContactService constructs the service.
func NewContactService(repo contactStore, profiles seafarerResolver, audit auditLogger, metrics *MetricsService, stats statsInvalidator, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		repo:     repo,
		profiles: profiles,
		audit:    audit,
		metrics:  metrics,
		stats:    stats,
		logger:   logger,
		now:      time.Now,
	}
}

// Request creates a pending contact request. A pending request for the same
// (requester, seafarer) pair rejects the call with DUPLICATE_REQUEST; once
// the first is reviewed, a fresh request for the pair is accepted again.
func (s *ContactService) Request(ctx context.Context, requesterID, seafarerID string, actor *models.JWTClaims) (*models.ContactRequest, error) {
	requester, err := s.resolve(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Role != models.RoleAgent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "requester is not an agent")
	}
	seafarer, err := s.resolve(ctx, seafarerID)
	if err != nil {
		return nil, err
	}
	if !seafarer.IsSeafarer() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "seafarer not found")
	}

	exists, err := s.repo.ExistsPending(ctx, requesterID, seafarerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check pending requests")
	}
	if exists {
		return nil, appErrors.ErrDuplicateRequest
	}

	request := &models.ContactRequest{
		RequesterID: requesterID,
		SeafarerID:  seafarerID,
		Status:      models.RequestPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		// The partial unique index closes the check-then-create race.
		if appErrors.Is(err, appErrors.ErrDuplicateRequest) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create contact request")
	}

	if actor != nil {
		s.emitAudit(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionContactRequested,
			Resource:   "contact_request",
			ResourceID: &request.ID,
		})
	}
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	return request, nil
}

// Review applies the admin decision to a pending request exactly once.
func (s *ContactService) Review(ctx context.Context, requestID string, outcome models.RequestStatus, actor *models.JWTClaims) (*models.ContactRequest, error) {
	if !outcome.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outcome must be approved or rejected")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	request, err := s.repo.Review(ctx, repository.ReviewParams{
		RequestID:  requestID,
		Outcome:    outcome,
		ReviewedBy: actor.UserID,
		ReviewedAt: s.now().UTC(),
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) || appErrors.Is(err, appErrors.ErrAlreadyDecided) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to review contact request")
	}

	s.metrics.RecordContactReview(string(outcome))
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionContactReviewed,
		Resource:   "contact_request",
		ResourceID: &request.ID,
		NewValues:  models.AuditPayload(fmt.Sprintf(`{"outcome":%q}`, outcome)),
	})
	return request, nil
}

// List returns requests scoped by the actor's role: admins see everything,
// agents their own asks, seafarers the requests targeting them.
func (s *ContactService) List(ctx context.Context, actor *models.JWTClaims) ([]models.ContactRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ContactFilter{}
	switch actor.Role {
	case models.RoleAdmin, models.RolePortOfficer:
		// full visibility
	case models.RoleAgent:
		filter.RequesterID = actor.UserID
	case models.RoleSeafarer:
		filter.SeafarerID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list contact requests")
	}
	return requests, nil
}

func (s *ContactService) resolve(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to resolve profile")
	}
	return profile, nil
}

func (s *ContactService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "contact-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
