package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ortografia-app/ortografia-api/internal/models"
)

// Sentinel errors surfaced by the transactional enrollment operations.
var (
	ErrNoActiveEnrollment = errors.New("no active enrollment")
	ErrClassroomFull      = errors.New("classroom capacity reached")
	ErrSameClassroom      = errors.New("already enrolled in target classroom")
	ErrClassroomInactive  = errors.New("classroom is not active")
)

// EnrollmentRepository handles persistence of enrollments. Enrollment rows
// are never deleted; lifecycle changes are status transitions so history
// stays queryable.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindActiveByStudent returns the student's active enrollment row.
func (r *EnrollmentRepository) FindActiveByStudent(ctx context.Context, studentID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, classroom_id, status, enrollment_date, notes FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE' LIMIT 1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindActiveInfoByStudent returns the active enrollment joined with classroom
// and teacher context.
func (r *EnrollmentRepository) FindActiveInfoByStudent(ctx context.Context, studentID string) (*models.EnrollmentInfo, error) {
	const query = `SELECT e.id, e.student_id, e.classroom_id, e.status, e.enrollment_date, e.notes,
        c.name AS classroom_name, c.grade_level, c.section, c.school_year,
        s.full_name AS student_name,
        t.full_name AS teacher_name, t.email AS teacher_email
        FROM enrollments e
        JOIN classrooms c ON c.id = e.classroom_id
        JOIN users s ON s.id = e.student_id
        JOIN users t ON t.id = c.teacher_id
        WHERE e.student_id = $1 AND e.status = 'ACTIVE'
        LIMIT 1`
	var info models.EnrollmentInfo
	if err := r.db.GetContext(ctx, &info, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active enrollment info: %w", err)
	}
	return &info, nil
}

// ListHistory returns every enrollment row of a student, newest first.
func (r *EnrollmentRepository) ListHistory(ctx context.Context, studentID string) ([]models.EnrollmentInfo, error) {
	const query = `SELECT e.id, e.student_id, e.classroom_id, e.status, e.enrollment_date, e.notes,
        c.name AS classroom_name, c.grade_level, c.section, c.school_year,
        s.full_name AS student_name,
        t.full_name AS teacher_name, t.email AS teacher_email
        FROM enrollments e
        JOIN classrooms c ON c.id = e.classroom_id
        JOIN users s ON s.id = e.student_id
        JOIN users t ON t.id = c.teacher_id
        WHERE e.student_id = $1
        ORDER BY e.enrollment_date DESC`
	var history []models.EnrollmentInfo
	if err := r.db.SelectContext(ctx, &history, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollment history: %w", err)
	}
	return history, nil
}

// Enroll inserts an ACTIVE enrollment after verifying classroom capacity
// under a row lock. The partial unique index on (student_id) WHERE
// status = 'ACTIVE' rejects a second active enrollment for the student.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, classroomID string, notes *string) (enrollment *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enroll transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.checkCapacity(ctx, tx, classroomID); err != nil {
		return nil, err
	}

	enrollment = &models.Enrollment{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		ClassroomID:    classroomID,
		Status:         models.EnrollmentStatusActive,
		EnrollmentDate: time.Now().UTC(),
		Notes:          notes,
	}
	const insertQuery = `INSERT INTO enrollments (id, student_id, classroom_id, status, enrollment_date, notes)
        VALUES (:id, :student_id, :classroom_id, :status, :enrollment_date, :notes)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		if IsUniqueViolation(err, ConstraintOneActiveEnrollment) {
			return nil, err
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrollment: %w", err)
	}
	return enrollment, nil
}

// Transfer moves a student's active enrollment to another classroom. The old
// row is marked TRANSFERRED and annotated with closeNote, and a fresh ACTIVE
// row is inserted in the same transaction, so the single-active invariant
// never has a visible gap.
func (r *EnrollmentRepository) Transfer(ctx context.Context, studentID, toClassroomID string, closeNote, notes *string) (enrollment *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Enrollment
	const lockQuery = `SELECT id, student_id, classroom_id, status, enrollment_date, notes FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE' FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, studentID); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNoActiveEnrollment
			return nil, err
		}
		return nil, fmt.Errorf("lock active enrollment: %w", err)
	}
	if current.ClassroomID == toClassroomID {
		err = ErrSameClassroom
		return nil, err
	}

	if err = r.checkCapacity(ctx, tx, toClassroomID); err != nil {
		return nil, err
	}

	const closeQuery = `UPDATE enrollments SET status = 'TRANSFERRED', notes = COALESCE($2, notes) WHERE id = $1`
	if _, err = tx.ExecContext(ctx, closeQuery, current.ID, closeNote); err != nil {
		return nil, fmt.Errorf("close previous enrollment: %w", err)
	}

	enrollment = &models.Enrollment{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		ClassroomID:    toClassroomID,
		Status:         models.EnrollmentStatusActive,
		EnrollmentDate: time.Now().UTC(),
		Notes:          notes,
	}
	const insertQuery = `INSERT INTO enrollments (id, student_id, classroom_id, status, enrollment_date, notes)
        VALUES (:id, :student_id, :classroom_id, :status, :enrollment_date, :notes)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		return nil, fmt.Errorf("insert transfer enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}
	return enrollment, nil
}

// Unenroll marks the student's active enrollment INACTIVE.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, studentID string, notes *string) error {
	const query = `UPDATE enrollments SET notes = COALESCE($2, notes), status = 'INACTIVE' WHERE student_id = $1 AND status = 'ACTIVE'`
	result, err := r.db.ExecContext(ctx, query, studentID, notes)
	if err != nil {
		return fmt.Errorf("unenroll student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unenroll rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoActiveEnrollment
	}
	return nil
}

// checkCapacity locks the classroom row and verifies it is active with room
// for one more active enrollment.
func (r *EnrollmentRepository) checkCapacity(ctx context.Context, tx *sqlx.Tx, classroomID string) error {
	var classroom struct {
		MaxStudents int  `db:"max_students"`
		Active      bool `db:"active"`
	}
	const lockQuery = `SELECT max_students, active FROM classrooms WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &classroom, lockQuery, classroomID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock classroom: %w", err)
	}
	if !classroom.Active {
		return ErrClassroomInactive
	}

	var count int
	const countQuery = `SELECT COUNT(*) FROM enrollments WHERE classroom_id = $1 AND status = 'ACTIVE'`
	if err := tx.GetContext(ctx, &count, countQuery, classroomID); err != nil {
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if count >= classroom.MaxStudents {
		return ErrClassroomFull
	}
	return nil
}
