package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/leslesan/geniuz-api/internal/middleware"
	"github.com/leslesan/geniuz-api/internal/models"
	"github.com/leslesan/geniuz-api/internal/service"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := s.users[email]
	return ok, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "u-new"
	}
	s.users[user.Email] = user
	return nil
}

func newTestAuthHandler(users ...*models.User) (*AuthHandler, *service.AuthService) {
	authSvc := service.NewAuthService(newStubUserRepo(users...), nil, zap.NewNop(), service.AuthConfig{
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
	})
	return NewAuthHandler(authSvc), authSvc
}

func postJSON(t *testing.T, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestRegisterEndpoint(t *testing.T) {
	handler, _ := newTestAuthHandler()
	c, rec := postJSON(t, "/auth/register", map[string]string{
		"email":    "new@example.com",
		"password": "secret1",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data["access_token"])

	user, ok := envelope.Data["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "new@example.com", user["email"])
}

func TestRegisterEndpointShortPassword(t *testing.T) {
	handler, _ := newTestAuthHandler()
	c, rec := postJSON(t, "/auth/register", map[string]string{
		"email":    "new@example.com",
		"password": "tiny",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	handler, _ := newTestAuthHandler(&models.User{ID: "u1", Email: "taken@example.com", PasswordHash: "hash"})
	c, rec := postJSON(t, "/auth/register", map[string]string{
		"email":    "taken@example.com",
		"password": "secret1",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	handler, _ := newTestAuthHandler(&models.User{ID: "u1", Email: "student@example.com", PasswordHash: string(hash)})

	c, rec := postJSON(t, "/auth/login", map[string]string{
		"email":    "student@example.com",
		"password": "secret1",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	handler, _ := newTestAuthHandler()
	c, rec := postJSON(t, "/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "secret1",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error["code"])
}

func TestMeEndpoint(t *testing.T) {
	handler, _ := newTestAuthHandler(&models.User{ID: "u1", Email: "student@example.com", PasswordHash: "hash"})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "student@example.com"})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "student@example.com", envelope.Data["email"])
}

func TestMeEndpointWithoutClaims(t *testing.T) {
	handler, _ := newTestAuthHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
