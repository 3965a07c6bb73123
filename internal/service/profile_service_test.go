package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type profileStoreStub struct {
	profiles        map[string]*models.Profile
	availabilityErr error
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{profiles: make(map[string]*models.Profile)}
}

func (s *profileStoreStub) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = "prof-stub"
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *profileStoreStub) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if profile, ok := s.profiles[id]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func (s *profileStoreStub) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, profile := range s.profiles {
		if profile.Email == email {
			return profile, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *profileStoreStub) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	result := make([]models.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		if filter.Role != nil && profile.Role != *filter.Role {
			continue
		}
		result = append(result, *profile)
	}
	return result, len(result), nil
}

func (s *profileStoreStub) UpdateAvailability(ctx context.Context, id string, status models.AvailabilityStatus) error {
	if s.availabilityErr != nil {
		return s.availabilityErr
	}
	profile, ok := s.profiles[id]
	if !ok {
		return sql.ErrNoRows
	}
	profile.AvailabilityStatus = &status
	return nil
}

func registerRequest(role models.UserRole) dto.RegisterProfileRequest {
	return dto.RegisterProfileRequest{
		Role:     role,
		FullName: "Arif Rahman",
		Email:    "arif@example.com",
		Password: "secret123",
	}
}

func TestProfileServiceRegisterSeafarerDefaults(t *testing.T) {
	store := newProfileStoreStub()
	audit := &auditStub{}
	stats := &statsStub{}
	svc := NewProfileService(store, audit, stats, nil)

	profile, err := svc.Register(context.Background(), registerRequest(models.RoleSeafarer), nil)
	require.NoError(t, err)
	require.Equal(t, models.EmploymentInactive, *profile.EmploymentStatus)
	require.Equal(t, models.AvailabilityAvailable, *profile.AvailabilityStatus)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte("secret123")))
	require.Equal(t, 1, audit.count())
	require.Equal(t, 1, stats.invalidated)
}

func TestProfileServiceRegisterAgentHasNoSeafarerStatus(t *testing.T) {
	svc := NewProfileService(newProfileStoreStub(), nil, nil, nil)

	profile, err := svc.Register(context.Background(), registerRequest(models.RoleAgent), nil)
	require.NoError(t, err)
	require.Nil(t, profile.EmploymentStatus)
	require.Nil(t, profile.AvailabilityStatus)
}

func TestProfileServiceRegisterDuplicateEmail(t *testing.T) {
	store := newProfileStoreStub()
	svc := NewProfileService(store, nil, nil, nil)

	_, err := svc.Register(context.Background(), registerRequest(models.RoleSeafarer), nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequest(models.RoleAgent), nil)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestProfileServiceRegisterPrivilegedRolesNeedAdmin(t *testing.T) {
	svc := NewProfileService(newProfileStoreStub(), nil, nil, nil)

	_, err := svc.Register(context.Background(), registerRequest(models.RoleAdmin), nil)
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Register(context.Background(), registerRequest(models.RolePortOfficer), agentActor())
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Register(context.Background(), registerRequest(models.RolePortOfficer), adminClaims())
	require.NoError(t, err)
}

func TestProfileServiceRegisterParsesCertificateDates(t *testing.T) {
	store := newProfileStoreStub()
	svc := NewProfileService(store, nil, nil, nil)

	expiry := "2027-08-15"
	req := registerRequest(models.RoleSeafarer)
	req.CertBasicTrainingExpiry = &expiry
	profile, err := svc.Register(context.Background(), req, nil)
	require.NoError(t, err)
	require.NotNil(t, profile.CertBasicTrainingExpiry)
	require.Equal(t, 2027, profile.CertBasicTrainingExpiry.Year())

	bad := "15/08/2027"
	req = registerRequest(models.RoleSeafarer)
	req.Email = "other@example.com"
	req.CertBasicTrainingExpiry = &bad
	_, err = svc.Register(context.Background(), req, nil)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProfileServiceSetAvailability(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["seafarer-1"] = seafarerProfile("seafarer-1")
	svc := NewProfileService(store, &auditStub{}, nil, nil)

	actor := &models.JWTClaims{UserID: "seafarer-1", Role: models.RoleSeafarer}
	profile, err := svc.SetAvailability(context.Background(), "seafarer-1", models.AvailabilityNotAvailable, actor)
	require.NoError(t, err)
	require.Equal(t, models.AvailabilityNotAvailable, *profile.AvailabilityStatus)
}

func TestProfileServiceSetAvailabilityLockedWhileOnboard(t *testing.T) {
	store := newProfileStoreStub()
	profile := seafarerProfile("seafarer-1")
	onboard := models.EmploymentOnboard
	profile.EmploymentStatus = &onboard
	store.profiles["seafarer-1"] = profile
	svc := NewProfileService(store, nil, nil, nil)

	actor := &models.JWTClaims{UserID: "seafarer-1", Role: models.RoleSeafarer}
	_, err := svc.SetAvailability(context.Background(), "seafarer-1", models.AvailabilityAvailable, actor)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestProfileServiceSetAvailabilityLostRace(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["seafarer-1"] = seafarerProfile("seafarer-1")
	store.availabilityErr = sql.ErrNoRows
	svc := NewProfileService(store, nil, nil, nil)

	// The guarded update reports zero rows when a concurrent verified
	// sign-on flipped the profile to Onboard after our read.
	actor := &models.JWTClaims{UserID: "seafarer-1", Role: models.RoleSeafarer}
	_, err := svc.SetAvailability(context.Background(), "seafarer-1", models.AvailabilityAvailable, actor)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestProfileServiceSetAvailabilityForbiddenForOthers(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["seafarer-1"] = seafarerProfile("seafarer-1")
	svc := NewProfileService(store, nil, nil, nil)

	actor := &models.JWTClaims{UserID: "seafarer-2", Role: models.RoleSeafarer}
	_, err := svc.SetAvailability(context.Background(), "seafarer-1", models.AvailabilityAvailable, actor)
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.SetAvailability(context.Background(), "seafarer-1", models.AvailabilityAvailable, adminClaims())
	require.NoError(t, err)
}

func TestProfileServiceListRejectsUnknownRole(t *testing.T) {
	svc := NewProfileService(newProfileStoreStub(), nil, nil, nil)

	_, _, err := svc.List(context.Background(), dto.ProfileQuery{Role: "captain"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
