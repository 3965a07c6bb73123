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

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

type fakeAuthSrv struct {
	response *models.LoginResponse
	err      error
	lastReq  models.LoginRequest
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastReq = req
	return f.response, f.err
}

func newLoginContext(t *testing.T, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	srv := &fakeAuthSrv{response: &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600}}
	handler := NewAuthHandler(srv)

	c, rec := newLoginContext(t, models.LoginRequest{Email: "arif@example.com", Password: "secret123"})
	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "token", envelope.Data["access_token"])
	assert.Equal(t, "arif@example.com", srv.lastReq.Email)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	srv := &fakeAuthSrv{err: appErrors.ErrInvalidCredentials}
	handler := NewAuthHandler(srv)

	c, rec := newLoginContext(t, models.LoginRequest{Email: "arif@example.com", Password: "wrong"})
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error["code"])
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
