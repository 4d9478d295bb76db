package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/service"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type handlerEnrollmentRepo struct {
	activeInfo *models.EnrollmentInfo
	history    []models.EnrollmentInfo

	lastUnenrollNotes *string
}

func (r *handlerEnrollmentRepo) FindActiveByStudent(ctx context.Context, studentID string) (*models.Enrollment, error) {
	if r.activeInfo == nil {
		return nil, sql.ErrNoRows
	}
	return &r.activeInfo.Enrollment, nil
}

func (r *handlerEnrollmentRepo) FindActiveInfoByStudent(ctx context.Context, studentID string) (*models.EnrollmentInfo, error) {
	if r.activeInfo == nil {
		return nil, sql.ErrNoRows
	}
	return r.activeInfo, nil
}

func (r *handlerEnrollmentRepo) ListHistory(ctx context.Context, studentID string) ([]models.EnrollmentInfo, error) {
	return r.history, nil
}

func (r *handlerEnrollmentRepo) Enroll(ctx context.Context, studentID, classroomID string, notes *string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		ID:             "enr-new",
		StudentID:      studentID,
		ClassroomID:    classroomID,
		Status:         models.EnrollmentStatusActive,
		EnrollmentDate: time.Now().UTC(),
	}
	r.activeInfo = &models.EnrollmentInfo{Enrollment: *enrollment, ClassroomName: "Tercero A", TeacherName: "Prof. Ruiz"}
	return enrollment, nil
}

func (r *handlerEnrollmentRepo) Transfer(ctx context.Context, studentID, toClassroomID string, closeNote, notes *string) (*models.Enrollment, error) {
	return nil, sql.ErrNoRows
}

func (r *handlerEnrollmentRepo) Unenroll(ctx context.Context, studentID string, notes *string) error {
	r.lastUnenrollNotes = notes
	return nil
}

type handlerClassroomReader struct {
	classroom *models.Classroom
}

func (r *handlerClassroomReader) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if r.classroom == nil || r.classroom.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.classroom, nil
}

type handlerUserReader struct {
	student *models.User
}

func (r *handlerUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if r.student == nil || r.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.student, nil
}

func (r *handlerUserReader) FindByEmailAndRole(ctx context.Context, email string, role models.UserRole) (*models.User, error) {
	if r.student == nil || r.student.Email != email {
		return nil, sql.ErrNoRows
	}
	return r.student, nil
}

func newEnrollmentHandler(repo *handlerEnrollmentRepo, classroom *models.Classroom, student *models.User) *EnrollmentHandler {
	svc := service.NewEnrollmentService(repo, &handlerClassroomReader{classroom: classroom}, &handlerUserReader{student: student}, nil, nil)
	return NewEnrollmentHandler(svc)
}

func TestEnrollmentHandlerSelfEnrollSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classroom := &models.Classroom{ID: "class-1", TeacherID: "teacher-1", Active: true, MaxStudents: 30}
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, classroom, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	c.Request = jsonRequest(http.MethodPost, "/enrollments/self", service.SelfEnrollRequest{ClassroomID: "class-1"})

	handler.SelfEnroll(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "class-1", envelope.Data["classroom_id"])
	assert.Equal(t, "Tercero A", envelope.Data["classroom_name"])
}

func TestEnrollmentHandlerSelfEnrollMissingClassroom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	c.Request = jsonRequest(http.MethodPost, "/enrollments/self", service.SelfEnrollRequest{})

	handler.SelfEnroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestEnrollmentHandlerEnrollMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte("not json")))

	handler.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrollmentHandlerEnrollForeignClassroom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classroom := &models.Classroom{ID: "class-1", TeacherID: "teacher-2", Active: true}
	student := &models.User{ID: "student-1", Email: "ana@example.com", Role: models.RoleStudent}
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, classroom, student)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = jsonRequest(http.MethodPost, "/enrollments", service.EnrollStudentRequest{
		ClassroomID:  "class-1",
		StudentEmail: "ana@example.com",
	})

	handler.Enroll(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrForbidden.Code, envelope.Error.Code)
}

func TestEnrollmentHandlerStatusNotEnrolled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/status", nil)

	handler.Status(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope.Data["isEnrolled"])
}

func TestEnrollmentHandlerUnenrollPassesReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classroom := &models.Classroom{ID: "class-1", TeacherID: "teacher-1", Active: true}
	repo := &handlerEnrollmentRepo{activeInfo: &models.EnrollmentInfo{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
	}}
	handler := newEnrollmentHandler(repo, classroom, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = jsonRequest(http.MethodDelete, "/enrollments/students/student-1", service.UnenrollRequest{Reason: ptr("Retiro del colegio")})
	c.Params = gin.Params{{Key: "studentId", Value: "student-1"}}

	handler.Unenroll(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, repo.lastUnenrollNotes)
	assert.Equal(t, "Retiro del colegio", *repo.lastUnenrollNotes)
}

func TestEnrollmentHandlerUnenrollWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classroom := &models.Classroom{ID: "class-1", TeacherID: "teacher-1", Active: true}
	repo := &handlerEnrollmentRepo{activeInfo: &models.EnrollmentInfo{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
	}}
	handler := newEnrollmentHandler(repo, classroom, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = httptest.NewRequest(http.MethodDelete, "/enrollments/students/student-1", nil)
	c.Params = gin.Params{{Key: "studentId", Value: "student-1"}}

	handler.Unenroll(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, repo.lastUnenrollNotes)
}

func ptr(s string) *string { return &s }

func TestEnrollmentHandlerSearchStudentRequiresEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&handlerEnrollmentRepo{}, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := authedContext(rec, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Request = httptest.NewRequest(http.MethodGet, "/students/search", nil)

	handler.SearchStudent(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}
