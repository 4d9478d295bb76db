package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type handlerGuardianRepo struct{}

func (r *handlerGuardianRepo) FindByID(ctx context.Context, id string) (*models.GuardianLink, error) {
	return nil, sql.ErrNoRows
}

func (r *handlerGuardianRepo) Link(ctx context.Context, link *models.GuardianLink) error {
	return nil
}

func (r *handlerGuardianRepo) ListByStudent(ctx context.Context, studentID string) ([]models.GuardianDetail, error) {
	return nil, nil
}

func (r *handlerGuardianRepo) ListChildren(ctx context.Context, guardianID string) ([]models.ChildDetail, error) {
	return nil, nil
}

func (r *handlerGuardianRepo) HasLink(ctx context.Context, guardianID, studentID string) (bool, error) {
	return false, nil
}

func (r *handlerGuardianRepo) Update(ctx context.Context, link *models.GuardianLink, update models.GuardianLinkUpdate) error {
	return nil
}

func (r *handlerGuardianRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type handlerGuardianUsers struct {
	users []*models.User
}

func (r *handlerGuardianUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (r *handlerGuardianUsers) FindByEmailAndRole(ctx context.Context, email string, role models.UserRole) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email && user.Role == role {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *handlerGuardianUsers) SearchByRole(ctx context.Context, role models.UserRole, search string, limit int) ([]models.UserSummary, error) {
	var out []models.UserSummary
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		if strings.Contains(strings.ToLower(user.FullName), strings.ToLower(search)) {
			out = append(out, models.UserSummary{ID: user.ID, FullName: user.FullName, Email: user.Email})
		}
	}
	return out, nil
}

func newGuardianHandler(users *handlerGuardianUsers) *GuardianHandler {
	svc := service.NewGuardianService(&handlerGuardianRepo{}, users, &handlerEnrollmentRepo{}, &handlerClassroomReader{}, nil, nil)
	return NewGuardianHandler(svc)
}

func TestGuardianHandlerSearchByEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGuardianHandler(&handlerGuardianUsers{users: []*models.User{
		{ID: "guardian-1", Email: "maria@example.com", FullName: "Maria Lopez", Role: models.RoleGuardian, Active: true},
	}})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = jsonRequest(http.MethodPost, "/users/search-parent", service.SearchGuardiansRequest{Email: "maria@example.com"})

	handler.Search(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maria Lopez")
}

func TestGuardianHandlerSearchWithoutCriteria(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGuardianHandler(&handlerGuardianUsers{})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = jsonRequest(http.MethodPost, "/users/search-parent", service.SearchGuardiansRequest{})

	handler.Search(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestGuardianHandlerSearchNoMatches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGuardianHandler(&handlerGuardianUsers{})

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = jsonRequest(http.MethodPost, "/users/search-parent", service.SearchGuardiansRequest{Name: "garcia"})

	handler.Search(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
