package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/xogame/arena/internal/api/apierr"
	"github.com/xogame/arena/internal/api/handler"
	"github.com/xogame/arena/internal/api/response"
	"github.com/xogame/arena/internal/dependencies/mocks"
	"github.com/xogame/arena/internal/services/auth"
	"github.com/xogame/arena/internal/storage/memory"
	"github.com/xogame/arena/internal/testutil"
)

type PlayerHandlerSuite struct {
	suite.Suite
	handler *handler.PlayerHandler
	auth    *auth.Service
}

func TestPlayerHandlerSuite(t *testing.T) {
	suite.Run(t, new(PlayerHandlerSuite))
}

func (s *PlayerHandlerSuite) SetupTest() {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.auth = auth.New(store, clk, auth.Config{Secret: "test-secret"}, testutil.NopLogger())
	s.handler = handler.NewPlayerHandler(s.auth)
}

func (s *PlayerHandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	switch path {
	case "/register":
		s.handler.Register(rec, req)
	case "/login":
		s.handler.Login(rec, req)
	}
	return rec
}

func (s *PlayerHandlerSuite) TestRegisterSucceeds() {
	rec := s.post("/register", map[string]string{
		"username": "alice",
		"password": "password123",
	})

	s.Equal(http.StatusCreated, rec.Code)

	var resp response.RegisterResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("Account created successfully", resp.Message)
}

func (s *PlayerHandlerSuite) TestRegisterDuplicateUsername() {
	s.post("/register", map[string]string{"username": "alice", "password": "password123"})
	rec := s.post("/register", map[string]string{"username": "alice", "password": "password456"})

	s.Equal(http.StatusConflict, rec.Code)

	var resp apierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(apierr.CodeUsernameExists, resp.Error.Code)
}

func (s *PlayerHandlerSuite) TestRegisterMissingFields() {
	rec := s.post("/register", map[string]string{"username": "alice"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.post("/register", map[string]string{"password": "password123"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PlayerHandlerSuite) TestRegisterInvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.handler.Register(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PlayerHandlerSuite) TestRegisterWeakPassword() {
	rec := s.post("/register", map[string]string{"username": "alice", "password": "short"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *PlayerHandlerSuite) TestLoginReturnsToken() {
	s.post("/register", map[string]string{"username": "alice", "password": "password123"})
	rec := s.post("/login", map[string]string{"username": "alice", "password": "password123"})

	s.Equal(http.StatusOK, rec.Code)

	var resp response.LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp.Token)

	id, err := s.auth.ValidateToken(resp.Token)
	s.Require().NoError(err)
	s.Equal("alice", string(id))
}

func (s *PlayerHandlerSuite) TestLoginBadCredentials() {
	s.post("/register", map[string]string{"username": "alice", "password": "password123"})
	rec := s.post("/login", map[string]string{"username": "alice", "password": "wrongpassword"})

	s.Equal(http.StatusUnauthorized, rec.Code)

	var resp apierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(apierr.CodeInvalidCredentials, resp.Error.Code)
}

func (s *PlayerHandlerSuite) TestLoginUnknownUserMasksExistence() {
	rec := s.post("/login", map[string]string{"username": "ghost", "password": "password123"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}
