package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type fakeClassroomRepo struct {
	byID      map[string]*models.Classroom
	available []models.AvailableClassroom
	createErr error
	updateErr error
	created   *models.Classroom
	updated   *models.Classroom
	students  []models.ClassroomStudent

	lastAvailableStudent string
}

func (f *fakeClassroomRepo) Create(ctx context.Context, classroom *models.Classroom) error {
	if f.createErr != nil {
		return f.createErr
	}
	classroom.ID = "class-new"
	f.created = classroom
	return nil
}

func (f *fakeClassroomRepo) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *classroom
	return &copied, nil
}

func (f *fakeClassroomRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassroomSummary, error) {
	var out []models.ClassroomSummary
	for _, classroom := range f.byID {
		if classroom.TeacherID == teacherID {
			out = append(out, models.ClassroomSummary{Classroom: *classroom})
		}
	}
	return out, nil
}

func (f *fakeClassroomRepo) ListAvailable(ctx context.Context, studentID string) ([]models.AvailableClassroom, error) {
	f.lastAvailableStudent = studentID
	return f.available, nil
}

func (f *fakeClassroomRepo) ListStudents(ctx context.Context, classroomID string) ([]models.ClassroomStudent, error) {
	return f.students, nil
}

func (f *fakeClassroomRepo) Update(ctx context.Context, classroom *models.Classroom) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = classroom
	return nil
}

func TestClassroomServiceCreateDefaultsMaxStudents(t *testing.T) {
	repo := &fakeClassroomRepo{}
	svc := NewClassroomService(repo, nil, nil, 35)

	classroom, err := svc.Create(context.Background(), "teacher-1", CreateClassroomRequest{
		Name:       "Tercero A",
		GradeLevel: "3",
		Section:    "A",
		SchoolYear: "2026",
	})
	require.NoError(t, err)
	assert.Equal(t, 35, classroom.MaxStudents)
	assert.True(t, classroom.Active)
	assert.Equal(t, "teacher-1", classroom.TeacherID)
}

func TestClassroomServiceCreateMissingFields(t *testing.T) {
	svc := NewClassroomService(&fakeClassroomRepo{}, nil, nil, 0)

	_, err := svc.Create(context.Background(), "teacher-1", CreateClassroomRequest{Name: "Tercero A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassroomServiceCreateDuplicateSection(t *testing.T) {
	repo := &fakeClassroomRepo{createErr: &pq.Error{Code: "23505", Constraint: repository.ConstraintClassroomSection}}
	svc := NewClassroomService(repo, nil, nil, 0)

	_, err := svc.Create(context.Background(), "teacher-1", CreateClassroomRequest{
		Name:       "Tercero A",
		GradeLevel: "3",
		Section:    "A",
		SchoolYear: "2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassroomServiceGetForeignClassroom(t *testing.T) {
	repo := &fakeClassroomRepo{byID: map[string]*models.Classroom{
		"class-1": {ID: "class-1", TeacherID: "teacher-2"},
	}}
	svc := NewClassroomService(repo, nil, nil, 0)

	_, err := svc.Get(context.Background(), "teacher-1", "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestClassroomServiceGetNotFound(t *testing.T) {
	svc := NewClassroomService(&fakeClassroomRepo{}, nil, nil, 0)

	_, err := svc.Get(context.Background(), "teacher-1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassroomServiceUpdateAppliesPartialChanges(t *testing.T) {
	repo := &fakeClassroomRepo{byID: map[string]*models.Classroom{
		"class-1": {ID: "class-1", TeacherID: "teacher-1", Name: "Tercero A", MaxStudents: 30, Active: true},
	}}
	svc := NewClassroomService(repo, nil, nil, 0)

	name := "Tercero A 2026"
	active := false
	classroom, err := svc.Update(context.Background(), "teacher-1", "class-1", UpdateClassroomRequest{
		Name:   &name,
		Active: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tercero A 2026", classroom.Name)
	assert.False(t, classroom.Active)
	assert.Equal(t, 30, classroom.MaxStudents)
	require.NotNil(t, repo.updated)
}

func TestClassroomServiceUpdateRejectsBadCapacity(t *testing.T) {
	repo := &fakeClassroomRepo{byID: map[string]*models.Classroom{
		"class-1": {ID: "class-1", TeacherID: "teacher-1"},
	}}
	svc := NewClassroomService(repo, nil, nil, 0)

	tooMany := 500
	_, err := svc.Update(context.Background(), "teacher-1", "class-1", UpdateClassroomRequest{MaxStudents: &tooMany})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassroomServiceListAvailableScopedToStudent(t *testing.T) {
	repo := &fakeClassroomRepo{available: []models.AvailableClassroom{{ID: "class-2", Name: "Cuarto B"}}}
	svc := NewClassroomService(repo, nil, nil, 0)

	classrooms, err := svc.ListAvailable(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, classrooms, 1)
	assert.Equal(t, "student-1", repo.lastAvailableStudent)
}

func TestClassroomServiceListStudentsChecksOwnership(t *testing.T) {
	repo := &fakeClassroomRepo{
		byID: map[string]*models.Classroom{
			"class-1": {ID: "class-1", TeacherID: "teacher-1"},
		},
		students: []models.ClassroomStudent{{ID: "student-1", FullName: "Ana"}},
	}
	svc := NewClassroomService(repo, nil, nil, 0)

	students, err := svc.ListStudents(context.Background(), "teacher-1", "class-1")
	require.NoError(t, err)
	require.Len(t, students, 1)

	_, err = svc.ListStudents(context.Background(), "teacher-2", "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
