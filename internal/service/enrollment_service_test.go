package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type fakeEnrollmentRepo struct {
	active      *models.Enrollment
	activeInfo  *models.EnrollmentInfo
	history     []models.EnrollmentInfo
	enrollErr   error
	transferErr error
	unenrollErr error

	lastCloseNote     *string
	lastTransferNotes *string
	lastUnenrollNotes *string
	enrolled          bool
	unenrolled        bool
}

func (f *fakeEnrollmentRepo) FindActiveByStudent(ctx context.Context, studentID string) (*models.Enrollment, error) {
	if f.active == nil {
		return nil, sql.ErrNoRows
	}
	return f.active, nil
}

func (f *fakeEnrollmentRepo) FindActiveInfoByStudent(ctx context.Context, studentID string) (*models.EnrollmentInfo, error) {
	if f.activeInfo == nil {
		return nil, sql.ErrNoRows
	}
	return f.activeInfo, nil
}

func (f *fakeEnrollmentRepo) ListHistory(ctx context.Context, studentID string) ([]models.EnrollmentInfo, error) {
	return f.history, nil
}

func (f *fakeEnrollmentRepo) Enroll(ctx context.Context, studentID, classroomID string, notes *string) (*models.Enrollment, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	f.enrolled = true
	enrollment := &models.Enrollment{ID: "enr-new", StudentID: studentID, ClassroomID: classroomID, Status: models.EnrollmentStatusActive, EnrollmentDate: time.Now()}
	f.activeInfo = &models.EnrollmentInfo{Enrollment: *enrollment, ClassroomName: "3A"}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) Transfer(ctx context.Context, studentID, toClassroomID string, closeNote, notes *string) (*models.Enrollment, error) {
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	f.lastCloseNote = closeNote
	f.lastTransferNotes = notes
	enrollment := &models.Enrollment{ID: "enr-new", StudentID: studentID, ClassroomID: toClassroomID, Status: models.EnrollmentStatusActive}
	f.activeInfo = &models.EnrollmentInfo{Enrollment: *enrollment, ClassroomName: "4B"}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) Unenroll(ctx context.Context, studentID string, notes *string) error {
	if f.unenrollErr != nil {
		return f.unenrollErr
	}
	f.lastUnenrollNotes = notes
	f.unenrolled = true
	return nil
}

type fakeClassroomReader struct {
	classrooms map[string]*models.Classroom
}

func (f *fakeClassroomReader) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, ok := f.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return classroom, nil
}

type fakeUserReader struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func (f *fakeUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserReader) FindByEmailAndRole(ctx context.Context, email string, role models.UserRole) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok || user.Role != role {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserReader) SearchByRole(ctx context.Context, role models.UserRole, search string, limit int) ([]models.UserSummary, error) {
	term := strings.ToLower(search)
	var out []models.UserSummary
	for _, user := range f.byEmail {
		if user.Role != role || !user.Active {
			continue
		}
		if strings.Contains(strings.ToLower(user.FullName), term) || strings.Contains(strings.ToLower(user.Email), term) {
			out = append(out, models.UserSummary{ID: user.ID, FullName: user.FullName, Email: user.Email, CreatedAt: user.CreatedAt})
		}
	}
	return out, nil
}

func newEnrollmentFixture() (*fakeEnrollmentRepo, *fakeClassroomReader, *fakeUserReader, *EnrollmentService) {
	repo := &fakeEnrollmentRepo{}
	classrooms := &fakeClassroomReader{classrooms: map[string]*models.Classroom{
		"class-1": {ID: "class-1", Name: "3A", TeacherID: "teacher-1", Active: true, MaxStudents: 30},
		"class-2": {ID: "class-2", Name: "4B", TeacherID: "teacher-1", Active: true, MaxStudents: 30},
		"class-3": {ID: "class-3", Name: "5C", TeacherID: "teacher-2", Active: true, MaxStudents: 30},
	}}
	users := &fakeUserReader{byEmail: map[string]*models.User{
		"ana@example.com": {ID: "student-1", Email: "ana@example.com", FullName: "Ana", Role: models.RoleStudent, Active: true},
	}}
	svc := NewEnrollmentService(repo, classrooms, users, validator.New(), zap.NewNop())
	return repo, classrooms, users, svc
}

func TestEnrollmentServiceEnrollSuccess(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()

	info, err := svc.Enroll(context.Background(), "teacher-1", EnrollStudentRequest{ClassroomID: "class-1", StudentEmail: "ana@example.com"})
	require.NoError(t, err)
	assert.True(t, repo.enrolled)
	assert.Equal(t, "student-1", info.StudentID)
}

func TestEnrollmentServiceEnrollForeignClassroom(t *testing.T) {
	_, _, _, svc := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "teacher-1", EnrollStudentRequest{ClassroomID: "class-3", StudentEmail: "ana@example.com"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceEnrollConflictCarriesCurrentPlacement(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.enrollErr = &pq.Error{Code: "23505", Constraint: repository.ConstraintOneActiveEnrollment}
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-3"},
		ClassroomName: "5C",
		TeacherName:   "Prof. Soto",
	}

	_, err := svc.Enroll(context.Background(), "teacher-1", EnrollStudentRequest{ClassroomID: "class-1", StudentEmail: "ana@example.com"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "5C", appErr.Details["currentClassroom"])
	assert.Equal(t, "Prof. Soto", appErr.Details["currentTeacher"])
	assert.Equal(t, "class-3", appErr.Details["classroomId"])
}

func TestEnrollmentServiceEnrollClassroomFull(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.enrollErr = repository.ErrClassroomFull

	_, err := svc.SelfEnroll(context.Background(), "student-1", SelfEnrollRequest{ClassroomID: "class-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacity.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceEnrollInactiveClassroom(t *testing.T) {
	_, classrooms, _, svc := newEnrollmentFixture()
	classrooms.classrooms["class-1"].Active = false

	_, err := svc.SelfEnroll(context.Background(), "student-1", SelfEnrollRequest{ClassroomID: "class-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceTransferBuildsNotes(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
		ClassroomName: "3A",
	}

	info, err := svc.Transfer(context.Background(), "teacher-1", TransferStudentRequest{StudentID: "student-1", ToClassroomID: "class-2"})
	require.NoError(t, err)
	require.NotNil(t, repo.lastTransferNotes)
	assert.Equal(t, "Transferido desde 3A", *repo.lastTransferNotes)
	require.NotNil(t, repo.lastCloseNote)
	assert.Equal(t, "Transferido por docente", *repo.lastCloseNote)
	assert.Equal(t, "class-2", info.ClassroomID)
}

func TestEnrollmentServiceTransferKeepsReasonOnClosedRow(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
		ClassroomName: "3A",
	}

	reason := "  Cambio de horario  "
	_, err := svc.Transfer(context.Background(), "teacher-1", TransferStudentRequest{StudentID: "student-1", ToClassroomID: "class-2", Reason: &reason})
	require.NoError(t, err)
	require.NotNil(t, repo.lastCloseNote)
	assert.Equal(t, "Cambio de horario", *repo.lastCloseNote)
}

func TestEnrollmentServiceTransferSameClassroom(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-2"},
		ClassroomName: "4B",
	}
	repo.transferErr = repository.ErrSameClassroom

	_, err := svc.Transfer(context.Background(), "teacher-1", TransferStudentRequest{StudentID: "student-1", ToClassroomID: "class-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceTransferNoActiveEnrollment(t *testing.T) {
	_, _, _, svc := newEnrollmentFixture()

	_, err := svc.Transfer(context.Background(), "teacher-1", TransferStudentRequest{StudentID: "student-1", ToClassroomID: "class-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUnenrollRequiresOwnership(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-3"},
	}

	err := svc.Unenroll(context.Background(), "teacher-1", "student-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.unenrolled)
}

func TestEnrollmentServiceUnenrollSuccess(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
	}

	err := svc.Unenroll(context.Background(), "teacher-1", "student-1", nil)
	require.NoError(t, err)
	assert.True(t, repo.unenrolled)
	assert.Nil(t, repo.lastUnenrollNotes)
}

func TestEnrollmentServiceUnenrollKeepsReason(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
	}

	reason := " Retiro del colegio "
	err := svc.Unenroll(context.Background(), "teacher-1", "student-1", &reason)
	require.NoError(t, err)
	require.NotNil(t, repo.lastUnenrollNotes)
	assert.Equal(t, "Retiro del colegio", *repo.lastUnenrollNotes)
}

func TestEnrollmentServiceUnenrollNoActiveEnrollment(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = nil

	err := svc.Unenroll(context.Background(), "teacher-1", "student-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.unenrolled)
}

func TestEnrollmentServiceStatusNotEnrolled(t *testing.T) {
	_, _, _, svc := newEnrollmentFixture()

	status, err := svc.Status(context.Background(), "student-1")
	require.NoError(t, err)
	assert.False(t, status.IsEnrolled)
	assert.Nil(t, status.Classroom)
}

func TestEnrollmentServiceSearchStudentEnrolledElsewhere(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
		ClassroomName: "3A",
	}

	result, err := svc.SearchStudent(context.Background(), "teacher-2", "ana@example.com")
	require.NoError(t, err)
	assert.True(t, result.IsEnrolled)
	assert.Equal(t, "3A", result.Enrollment.ClassroomName)
	assert.Equal(t, "student-1", result.Student.ID)
}

func TestEnrollmentServiceSearchStudentInOwnClassroomConflicts(t *testing.T) {
	repo, _, _, svc := newEnrollmentFixture()
	repo.activeInfo = &models.EnrollmentInfo{
		Enrollment:    models.Enrollment{ID: "enr-1", StudentID: "student-1", ClassroomID: "class-1"},
		ClassroomName: "3A",
	}

	_, err := svc.SearchStudent(context.Background(), "teacher-1", "ana@example.com")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "3A", appErr.Details["classroom"])
}

func TestEnrollmentServiceSearchStudentNotFound(t *testing.T) {
	_, _, _, svc := newEnrollmentFixture()

	_, err := svc.SearchStudent(context.Background(), "teacher-1", "nadie@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
