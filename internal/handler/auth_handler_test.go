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
	"golang.org/x/crypto/bcrypt"

	"github.com/ortografia-app/ortografia-api/internal/middleware"
	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type apiEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authedContext(rec *httptest.ResponseRecorder, claims *models.JWTClaims) (*gin.Context, *gin.Engine) {
	c, engine := gin.CreateTestContext(rec)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, engine
}

type handlerAuthRepo struct {
	userByEmail *models.User
	userByID    *models.User
	createErr   error
}

func (r *handlerAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return r.userByEmail, nil
}

func (r *handlerAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if r.userByID == nil {
		return nil, sql.ErrNoRows
	}
	return r.userByID, nil
}

func (r *handlerAuthRepo) Create(ctx context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = "user-new"
	user.CreatedAt = time.Now().UTC()
	return nil
}

func newAuthHandler(repo *handlerAuthRepo) *AuthHandler {
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "ortografia-api",
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerRegisterSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(&handlerAuthRepo{})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, nil)
	c.Request = jsonRequest(http.MethodPost, "/auth/register", models.RegisterRequest{
		FullName: "Ana Perez",
		Email:    "ana@example.com",
		Password: "secret123",
		Role:     "STUDENT",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.NotEmpty(t, envelope.Data["token"])
	user := envelope.Data["user"].(map[string]interface{})
	assert.Equal(t, "Ana Perez", user["name"])
}

func TestAuthHandlerRegisterMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(&handlerAuthRepo{})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	handler := newAuthHandler(&handlerAuthRepo{userByEmail: &models.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Active:       true,
	}})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, nil)
	c.Request = jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, envelope.Error.Code)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(&handlerAuthRepo{})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMeReturnsProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(&handlerAuthRepo{userByID: &models.User{
		ID:       "user-1",
		FullName: "Ana Perez",
		Email:    "ana@example.com",
		Role:     models.RoleStudent,
		Active:   true,
	}})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "ana@example.com", envelope.Data["email"])
}
