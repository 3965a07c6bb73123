package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type profileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	UpdateAvailability(ctx context.Context, id string, status models.AvailabilityStatus) error
}

// ProfileService manages directory profiles. Employment and availability
// status of seafarers is owned by the verification workflow; the only status
// write allowed here is the seafarer's own availability toggle.
type ProfileService struct {
	repo   profileStore
	audit  auditLogger
	stats  statsInvalidator
	logger *zap.Logger
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// NewProfileService constructs the service.
func NewProfileService(repo profileStore, audit auditLogger, stats statsInvalidator, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, audit: audit, stats: stats, logger: logger}
}

// Register creates a new profile. Seafarers and agents self-register; admin
// and port officer accounts require an admin actor.
func (s *ProfileService) Register(ctx context.Context, req dto.RegisterProfileRequest, actor *models.JWTClaims) (*models.Profile, error) {
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	switch req.Role {
	case models.RoleSeafarer, models.RoleAgent:
		// open registration
	case models.RoleAdmin, models.RolePortOfficer:
		if actor == nil || actor.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may create privileged accounts")
		}
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check existing email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	profile := &models.Profile{
		Role:               req.Role,
		FullName:           req.FullName,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Rank:               req.Rank,
		COC:                req.COC,
		ICPassport:         req.ICPassport,
		SID:                req.SID,
		Phone:              req.Phone,
		Nationality:        req.Nationality,
		YearsOfExperience:  req.YearsOfExperience,
		ShipTypeExperience: req.ShipTypeExperience,
	}

	for _, cert := range []struct {
		raw  *string
		dest **time.Time
	}{
		{req.CertBasicTrainingExpiry, &profile.CertBasicTrainingExpiry},
		{req.CertAdvFireFightingExpiry, &profile.CertAdvFireFightingExpiry},
		{req.CertSurvivalCraftExpiry, &profile.CertSurvivalCraftExpiry},
	} {
		if cert.raw == nil || *cert.raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", *cert.raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid certificate date %q", *cert.raw))
		}
		*cert.dest = &parsed
	}

	if req.Role == models.RoleSeafarer {
		employment := models.EmploymentInactive
		availability := models.AvailabilityAvailable
		profile.EmploymentStatus = &employment
		profile.AvailabilityStatus = &availability
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create profile")
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &profile.ID,
		Action:     models.AuditActionProfileRegister,
		Resource:   "profile",
		ResourceID: &profile.ID,
		NewValues:  models.AuditPayload(fmt.Sprintf(`{"role":%q}`, profile.Role)),
	})
	return profile, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load profile")
	}
	return profile, nil
}

// List returns profiles matching the query.
func (s *ProfileService) List(ctx context.Context, query dto.ProfileQuery) ([]models.Profile, *models.Pagination, error) {
	filter := models.ProfileFilter{Page: query.Page, PageSize: query.PageSize}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		if !role.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
		}
		filter.Role = &role
	}
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list profiles")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return profiles, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// SetAvailability toggles a seafarer's availability. Only the seafarer (or an
// admin) may do so, and never while the profile is Onboard.
func (s *ProfileService) SetAvailability(ctx context.Context, id string, status models.AvailabilityStatus, actor *models.JWTClaims) (*models.Profile, error) {
	if status != models.AvailabilityAvailable && status != models.AvailabilityNotAvailable {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown availability status")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "availability can only be changed by the seafarer")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load profile")
	}
	if !profile.IsSeafarer() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "availability applies to seafarers only")
	}
	if profile.EmploymentStatus != nil && *profile.EmploymentStatus == models.EmploymentOnboard {
		return nil, appErrors.Clone(appErrors.ErrConflict, "availability is locked while onboard")
	}

	if err := s.repo.UpdateAvailability(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with a concurrent verified sign-on.
			return nil, appErrors.Clone(appErrors.ErrConflict, "availability is locked while onboard")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to update availability")
	}

	profile.AvailabilityStatus = &status
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionAvailabilitySet,
		Resource:   "profile",
		ResourceID: &id,
		NewValues:  models.AuditPayload(fmt.Sprintf(`{"availability_status":%q}`, status)),
	})
	return profile, nil
}

func (s *ProfileService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "profile-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
