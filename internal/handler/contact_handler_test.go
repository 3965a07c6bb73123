package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/middleware"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type fakeContactSrv struct {
	request       *models.ContactRequest
	requests      []models.ContactRequest
	err           error
	lastRequester string
	lastSeafarer  string
	lastOutcome   models.RequestStatus
}

func (f *fakeContactSrv) Request(_ context.Context, requesterID, seafarerID string, _ *models.JWTClaims) (*models.ContactRequest, error) {
	f.lastRequester = requesterID
	f.lastSeafarer = seafarerID
	return f.request, f.err
}

func (f *fakeContactSrv) Review(_ context.Context, _ string, outcome models.RequestStatus, _ *models.JWTClaims) (*models.ContactRequest, error) {
	f.lastOutcome = outcome
	return f.request, f.err
}

func (f *fakeContactSrv) List(context.Context, *models.JWTClaims) ([]models.ContactRequest, error) {
	return f.requests, f.err
}

func newContactContext(t *testing.T, body interface{}, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(http.MethodPost, "/contact-requests", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestContactHandlerCreateUsesActorAsRequester(t *testing.T) {
	srv := &fakeContactSrv{request: &models.ContactRequest{ID: "req-1", Status: models.RequestPending}}
	handler := NewContactHandler(srv)

	claims := &models.JWTClaims{UserID: "agent-1", Role: models.RoleAgent}
	c, rec := newContactContext(t, dto.CreateContactRequest{SeafarerID: "seafarer-1"}, claims)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "agent-1", srv.lastRequester)
	assert.Equal(t, "seafarer-1", srv.lastSeafarer)
}

func TestContactHandlerCreateWithoutActor(t *testing.T) {
	handler := NewContactHandler(&fakeContactSrv{})

	c, rec := newContactContext(t, dto.CreateContactRequest{SeafarerID: "seafarer-1"}, nil)
	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactHandlerCreateDuplicate(t *testing.T) {
	srv := &fakeContactSrv{err: appErrors.ErrDuplicateRequest}
	handler := NewContactHandler(srv)

	claims := &models.JWTClaims{UserID: "agent-1", Role: models.RoleAgent}
	c, rec := newContactContext(t, dto.CreateContactRequest{SeafarerID: "seafarer-1"}, claims)
	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "DUPLICATE_REQUEST", envelope.Error["code"])
}

func TestContactHandlerReview(t *testing.T) {
	srv := &fakeContactSrv{request: &models.ContactRequest{ID: "req-1", Status: models.RequestApproved}}
	handler := NewContactHandler(srv)

	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	c, rec := newContactContext(t, dto.ReviewContactRequest{Outcome: models.RequestApproved}, claims)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Review(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RequestApproved, srv.lastOutcome)
}

func TestContactHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeContactSrv{requests: []models.ContactRequest{{ID: "req-1", Status: models.RequestPending}}}
	handler := NewContactHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/contact-requests", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}
