package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ortografia-app/ortografia-api/internal/models"
)

// ClassroomRepository handles persistence of classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create persists a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = now
	}
	classroom.UpdatedAt = now

	const query = `INSERT INTO classrooms (id, name, teacher_id, grade_level, section, school_year, max_students, active, created_at, updated_at)
        VALUES (:id, :name, :teacher_id, :grade_level, :section, :school_year, :max_students, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// FindByID returns a classroom by its identifier.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT id, name, teacher_id, grade_level, section, school_year, max_students, active, created_at, updated_at FROM classrooms WHERE id = $1 LIMIT 1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom by id: %w", err)
	}
	return &classroom, nil
}

// ListByTeacher returns a teacher's classrooms with their active student counts.
func (r *ClassroomRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassroomSummary, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, c.grade_level, c.section, c.school_year, c.max_students, c.active, c.created_at, c.updated_at,
        COUNT(e.id) FILTER (WHERE e.status = 'ACTIVE') AS student_count
        FROM classrooms c
        LEFT JOIN enrollments e ON e.classroom_id = c.id
        WHERE c.teacher_id = $1
        GROUP BY c.id
        ORDER BY c.created_at DESC`
	var classrooms []models.ClassroomSummary
	if err := r.db.SelectContext(ctx, &classrooms, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher classrooms: %w", err)
	}
	return classrooms, nil
}

// ListAvailable returns active classrooms the student may self-enroll into.
// Full classrooms and the student's own active classroom are excluded.
func (r *ClassroomRepository) ListAvailable(ctx context.Context, studentID string) ([]models.AvailableClassroom, error) {
	const query = `SELECT c.id, c.name, c.grade_level, c.section, c.school_year, c.max_students,
        u.full_name AS teacher_name,
        COUNT(e.id) FILTER (WHERE e.status = 'ACTIVE') AS current_students
        FROM classrooms c
        JOIN users u ON u.id = c.teacher_id
        LEFT JOIN enrollments e ON e.classroom_id = c.id
        WHERE c.active = TRUE
        AND c.id NOT IN (SELECT classroom_id FROM enrollments WHERE student_id = $1 AND status = 'ACTIVE')
        GROUP BY c.id, u.full_name
        HAVING COUNT(e.id) FILTER (WHERE e.status = 'ACTIVE') < c.max_students
        ORDER BY c.school_year DESC, c.name ASC`
	var classrooms []models.AvailableClassroom
	if err := r.db.SelectContext(ctx, &classrooms, query, studentID); err != nil {
		return nil, fmt.Errorf("list available classrooms: %w", err)
	}
	return classrooms, nil
}

// ListStudents returns the active roster of a classroom with play statistics.
func (r *ClassroomRepository) ListStudents(ctx context.Context, classroomID string) ([]models.ClassroomStudent, error) {
	const query = `SELECT u.id, u.full_name, u.email, e.enrollment_date,
        COUNT(gs.id) AS total_games_played,
        AVG(gs.score) AS average_score,
        MAX(gs.created_at) AS last_activity
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        LEFT JOIN game_sessions gs ON gs.user_id = u.id
        WHERE e.classroom_id = $1 AND e.status = 'ACTIVE'
        GROUP BY u.id, u.full_name, u.email, e.enrollment_date
        ORDER BY u.full_name ASC`
	var students []models.ClassroomStudent
	if err := r.db.SelectContext(ctx, &students, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom students: %w", err)
	}
	return students, nil
}

// CountActiveStudents returns the number of active enrollments in a classroom.
func (r *ClassroomRepository) CountActiveStudents(ctx context.Context, classroomID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE classroom_id = $1 AND status = 'ACTIVE'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classroomID); err != nil {
		return 0, fmt.Errorf("count classroom students: %w", err)
	}
	return count, nil
}

// Update updates mutable fields of a classroom.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	classroom.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET name = :name, grade_level = :grade_level, section = :section,
        school_year = :school_year, max_students = :max_students, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}
