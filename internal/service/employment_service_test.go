package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type ledgerStoreStub struct {
	records []models.EmploymentRecord
	filter  models.EmploymentFilter
}

func (s *ledgerStoreStub) Create(ctx context.Context, record *models.EmploymentRecord) error {
	if record.ID == "" {
		record.ID = "rec-stub"
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *ledgerStoreStub) List(ctx context.Context, filter models.EmploymentFilter) ([]models.EmploymentRecord, error) {
	s.filter = filter
	result := make([]models.EmploymentRecord, 0, len(s.records))
	for _, record := range s.records {
		if filter.SeafarerID != "" && record.SeafarerID != filter.SeafarerID {
			continue
		}
		if filter.Status != "" && record.VerificationStatus != filter.Status {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

type resolverStub struct {
	profiles map[string]*models.Profile
}

func (s *resolverStub) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if profile, ok := s.profiles[id]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func validSubmitRequest() dto.SubmitEmploymentRequest {
	return dto.SubmitEmploymentRequest{
		SeafarerID: "seafarer-1",
		EventType:  models.EventSignOn,
		VesselName: "MV Ocean Star",
		Port:       "Singapore",
		EventDate:  "2025-03-10",
		Source:     models.SourceSeafarer,
	}
}

func TestEmploymentServiceSubmitCreatesPending(t *testing.T) {
	store := &ledgerStoreStub{}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	audit := &auditStub{}
	stats := &statsStub{}
	svc := NewEmploymentService(store, resolver, audit, stats, nil, 100)

	record, err := svc.Submit(context.Background(), validSubmitRequest(), adminClaims())
	require.NoError(t, err)
	require.Equal(t, models.VerificationPending, record.VerificationStatus)
	require.Equal(t, "seafarer-1", record.SeafarerID)
	require.Equal(t, 1, audit.count())
	require.Equal(t, 1, stats.invalidated)
}

func TestEmploymentServiceSubmitAllowsMultiplePending(t *testing.T) {
	store := &ledgerStoreStub{}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	svc := NewEmploymentService(store, resolver, nil, nil, nil, 100)

	_, err := svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.NoError(t, err)
	require.Len(t, store.records, 2)
}

func TestEmploymentServiceSubmitUnknownSeafarer(t *testing.T) {
	svc := NewEmploymentService(&ledgerStoreStub{}, &resolverStub{profiles: map[string]*models.Profile{}}, nil, nil, nil, 100)

	_, err := svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEmploymentServiceSubmitNonSeafarerTarget(t *testing.T) {
	agent := &models.Profile{ID: "agent-1", Role: models.RoleAgent}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"agent-1": agent}}
	svc := NewEmploymentService(&ledgerStoreStub{}, resolver, nil, nil, nil, 100)

	req := validSubmitRequest()
	req.SeafarerID = "agent-1"
	_, err := svc.Submit(context.Background(), req, nil)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEmploymentServiceSubmitValidation(t *testing.T) {
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	svc := NewEmploymentService(&ledgerStoreStub{}, resolver, nil, nil, nil, 100)

	req := validSubmitRequest()
	req.EventType = "Transfer"
	_, err := svc.Submit(context.Background(), req, nil)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = validSubmitRequest()
	req.EventDate = "10/03/2025"
	_, err = svc.Submit(context.Background(), req, nil)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = validSubmitRequest()
	req.Source = "Harbour Master"
	_, err = svc.Submit(context.Background(), req, nil)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEmploymentServiceListPendingFiltersStatus(t *testing.T) {
	store := &ledgerStoreStub{}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	svc := NewEmploymentService(store, resolver, nil, nil, nil, 50)

	_, err := svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.NoError(t, err)

	records, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.VerificationPending, store.filter.Status)
	require.Equal(t, 50, store.filter.Limit)
}

type archiverStub struct {
	filenames []string
	payloads  [][]byte
}

func (a *archiverStub) ArchiveExport(filename string, payload []byte) {
	a.filenames = append(a.filenames, filename)
	a.payloads = append(a.payloads, payload)
}

func TestEmploymentServiceExportArchivesCopy(t *testing.T) {
	store := &ledgerStoreStub{}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	archiver := &archiverStub{}
	svc := NewEmploymentService(store, resolver, nil, nil, nil, 100, WithExportArchiver(archiver))

	_, err := svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.NoError(t, err)

	payload, err := svc.ExportCSV(context.Background(), dto.EmploymentQuery{})
	require.NoError(t, err)
	require.Len(t, archiver.filenames, 1)
	require.Contains(t, archiver.filenames[0], "employment-records-")
	require.Equal(t, payload, archiver.payloads[0])
}

func TestEmploymentServiceExportCSV(t *testing.T) {
	store := &ledgerStoreStub{}
	resolver := &resolverStub{profiles: map[string]*models.Profile{"seafarer-1": seafarerProfile("seafarer-1")}}
	svc := NewEmploymentService(store, resolver, nil, nil, nil, 100)

	_, err := svc.Submit(context.Background(), validSubmitRequest(), nil)
	require.NoError(t, err)

	payload, err := svc.ExportCSV(context.Background(), dto.EmploymentQuery{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "seafarer_id")
	require.Contains(t, lines[1], "MV Ocean Star")
	require.Contains(t, lines[1], "Sign On")
}
