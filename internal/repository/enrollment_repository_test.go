package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortografia-app/ortografia-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func expectCapacityCheck(mock sqlmock.Sqlmock, classroomID string, maxStudents int, active bool, current int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT max_students, active FROM classrooms WHERE id = $1 FOR UPDATE")).
		WithArgs(classroomID).
		WillReturnRows(sqlmock.NewRows([]string{"max_students", "active"}).AddRow(maxStudents, active))
	if active {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE classroom_id = $1 AND status = 'ACTIVE'")).
			WithArgs(classroomID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(current))
	}
}

func TestEnrollmentRepositoryEnrollSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCapacityCheck(mock, "class-1", 30, true, 5)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs(sqlmock.AnyArg(), "student-1", "class-1", models.EnrollmentStatusActive, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := repo.Enroll(context.Background(), "student-1", "class-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, "class-1", enrollment.ClassroomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryEnrollClassroomFull(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCapacityCheck(mock, "class-1", 30, true, 30)
	mock.ExpectRollback()

	_, err := repo.Enroll(context.Background(), "student-1", "class-1", nil)
	require.ErrorIs(t, err, ErrClassroomFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryEnrollInactiveClassroom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCapacityCheck(mock, "class-1", 30, false, 0)
	mock.ExpectRollback()

	_, err := repo.Enroll(context.Background(), "student-1", "class-1", nil)
	require.ErrorIs(t, err, ErrClassroomInactive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryTransferSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	closeNote := "Cambio solicitado por la familia"
	notes := "Transferido desde 3A"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, classroom_id, status, enrollment_date, notes FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE' FOR UPDATE")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "classroom_id", "status", "enrollment_date", "notes"}).
			AddRow("enr-1", "student-1", "class-1", models.EnrollmentStatusActive, time.Now(), nil))
	expectCapacityCheck(mock, "class-2", 30, true, 10)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = 'TRANSFERRED', notes = COALESCE($2, notes) WHERE id = $1")).
		WithArgs("enr-1", &closeNote).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs(sqlmock.AnyArg(), "student-1", "class-2", models.EnrollmentStatusActive, sqlmock.AnyArg(), &notes).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := repo.Transfer(context.Background(), "student-1", "class-2", &closeNote, &notes)
	require.NoError(t, err)
	assert.Equal(t, "class-2", enrollment.ClassroomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryTransferSameClassroom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, classroom_id, status, enrollment_date, notes FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE' FOR UPDATE")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "classroom_id", "status", "enrollment_date", "notes"}).
			AddRow("enr-1", "student-1", "class-1", models.EnrollmentStatusActive, time.Now(), nil))
	mock.ExpectRollback()

	_, err := repo.Transfer(context.Background(), "student-1", "class-1", nil, nil)
	require.ErrorIs(t, err, ErrSameClassroom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryTransferWithoutActiveEnrollment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, classroom_id, status, enrollment_date, notes FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE' FOR UPDATE")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "classroom_id", "status", "enrollment_date", "notes"}))
	mock.ExpectRollback()

	_, err := repo.Transfer(context.Background(), "student-1", "class-2", nil, nil)
	require.ErrorIs(t, err, ErrNoActiveEnrollment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUnenrollNoActiveRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET notes = COALESCE($2, notes), status = 'INACTIVE' WHERE student_id = $1 AND status = 'ACTIVE'")).
		WithArgs("student-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unenroll(context.Background(), "student-1", nil)
	require.ErrorIs(t, err, ErrNoActiveEnrollment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUnenrollWritesReason(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	reason := "Retiro del colegio"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET notes = COALESCE($2, notes), status = 'INACTIVE' WHERE student_id = $1 AND status = 'ACTIVE'")).
		WithArgs("student-1", &reason).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Unenroll(context.Background(), "student-1", &reason)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "classroom_id", "status", "enrollment_date", "notes", "classroom_name", "grade_level", "section", "school_year", "student_name", "teacher_name", "teacher_email"}).
		AddRow("enr-2", "student-1", "class-2", models.EnrollmentStatusActive, time.Now(), nil, "4B", "4", "B", "2026", "Ana", "Prof. Soto", "soto@example.com").
		AddRow("enr-1", "student-1", "class-1", models.EnrollmentStatusTransferred, time.Now().Add(-time.Hour), nil, "3A", "3", "A", "2025", "Ana", "Prof. Ruiz", "ruiz@example.com")
	mock.ExpectQuery("SELECT e.id, e.student_id, e.classroom_id").
		WithArgs("student-1").
		WillReturnRows(rows)

	history, err := repo.ListHistory(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.EnrollmentStatusActive, history[0].Status)
	assert.Equal(t, "3A", history[1].ClassroomName)
	require.NoError(t, mock.ExpectationsWereMet())
}
