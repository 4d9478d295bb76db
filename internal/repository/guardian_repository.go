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

// Sentinel errors surfaced by the guardian link operations.
var (
	ErrGuardianCapReached    = errors.New("guardian limit reached for student")
	ErrGuardianAlreadyLinked = errors.New("guardian already linked to student")
)

// GuardianRepository handles persistence of guardian-student links.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository constructs the repository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// FindByID returns a guardian link by its identifier.
func (r *GuardianRepository) FindByID(ctx context.Context, id string) (*models.GuardianLink, error) {
	const query = `SELECT id, guardian_id, student_id, relationship_type, is_primary, can_view_progress, can_receive_notifications, emergency_contact, phone, created_at
        FROM guardian_links WHERE id = $1 LIMIT 1`
	var link models.GuardianLink
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find guardian link: %w", err)
	}
	return &link, nil
}

// FindByPair returns the link between a guardian and a student, if any.
func (r *GuardianRepository) FindByPair(ctx context.Context, guardianID, studentID string) (*models.GuardianLink, error) {
	const query = `SELECT id, guardian_id, student_id, relationship_type, is_primary, can_view_progress, can_receive_notifications, emergency_contact, phone, created_at
        FROM guardian_links WHERE guardian_id = $1 AND student_id = $2 LIMIT 1`
	var link models.GuardianLink
	if err := r.db.GetContext(ctx, &link, query, guardianID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find guardian link pair: %w", err)
	}
	return &link, nil
}

// Link creates a guardian-student link. Existing links for the student are
// locked so the two-guardian cap holds under concurrent linking, and the
// first link for a student becomes primary automatically. A guardian already
// linked to the student is rejected before the cap is considered, so a
// repeat link never reads as a capacity problem.
func (r *GuardianRepository) Link(ctx context.Context, link *models.GuardianLink) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing []struct {
		ID         string `db:"id"`
		GuardianID string `db:"guardian_id"`
	}
	const lockQuery = `SELECT id, guardian_id FROM guardian_links WHERE student_id = $1 FOR UPDATE`
	if err = tx.SelectContext(ctx, &existing, lockQuery, link.StudentID); err != nil {
		return fmt.Errorf("lock guardian links: %w", err)
	}
	for _, row := range existing {
		if row.GuardianID == link.GuardianID {
			err = ErrGuardianAlreadyLinked
			return err
		}
	}
	if len(existing) >= models.MaxGuardiansPerStudent {
		err = ErrGuardianCapReached
		return err
	}

	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	link.IsPrimary = len(existing) == 0

	const insertQuery = `INSERT INTO guardian_links (id, guardian_id, student_id, relationship_type, is_primary, can_view_progress, can_receive_notifications, emergency_contact, phone, created_at)
        VALUES (:id, :guardian_id, :student_id, :relationship_type, :is_primary, :can_view_progress, :can_receive_notifications, :emergency_contact, :phone, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, link); err != nil {
		if IsUniqueViolation(err, "") {
			return err
		}
		return fmt.Errorf("insert guardian link: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit guardian link: %w", err)
	}
	return nil
}

// ListByStudent returns the guardians linked to a student, primary first.
func (r *GuardianRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GuardianDetail, error) {
	const query = `SELECT gl.id, u.full_name, u.email, gl.relationship_type, gl.is_primary,
        gl.can_view_progress, gl.can_receive_notifications, gl.emergency_contact, gl.phone,
        gl.created_at AS relationship_date
        FROM guardian_links gl
        JOIN users u ON u.id = gl.guardian_id
        WHERE gl.student_id = $1
        ORDER BY gl.is_primary DESC, gl.created_at ASC`
	var guardians []models.GuardianDetail
	if err := r.db.SelectContext(ctx, &guardians, query, studentID); err != nil {
		return nil, fmt.Errorf("list student guardians: %w", err)
	}
	return guardians, nil
}

// ListChildren returns the students linked to a guardian with their active
// classroom context.
func (r *GuardianRepository) ListChildren(ctx context.Context, guardianID string) ([]models.ChildDetail, error) {
	const query = `SELECT gl.id, gl.student_id, u.full_name, u.email, gl.relationship_type, gl.is_primary, gl.can_view_progress,
        c.id AS classroom_id, c.name AS classroom_name, t.full_name AS teacher_name
        FROM guardian_links gl
        JOIN users u ON u.id = gl.student_id
        LEFT JOIN enrollments e ON e.student_id = gl.student_id AND e.status = 'ACTIVE'
        LEFT JOIN classrooms c ON c.id = e.classroom_id
        LEFT JOIN users t ON t.id = c.teacher_id
        WHERE gl.guardian_id = $1
        ORDER BY u.full_name ASC`
	var children []models.ChildDetail
	if err := r.db.SelectContext(ctx, &children, query, guardianID); err != nil {
		return nil, fmt.Errorf("list guardian children: %w", err)
	}
	return children, nil
}

// HasLink reports whether the guardian is linked to the student.
func (r *GuardianRepository) HasLink(ctx context.Context, guardianID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM guardian_links WHERE guardian_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, guardianID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check guardian link: %w", err)
	}
	return true, nil
}

// Update applies partial changes to a link. Promoting a link to primary
// demotes the student's other links inside the same transaction, so the
// one-primary partial index is never tripped by a promote.
func (r *GuardianRepository) Update(ctx context.Context, link *models.GuardianLink, update models.GuardianLinkUpdate) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link update transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if update.IsPrimary != nil && *update.IsPrimary {
		const demoteQuery = `UPDATE guardian_links SET is_primary = FALSE WHERE student_id = $1 AND id <> $2 AND is_primary`
		if _, err = tx.ExecContext(ctx, demoteQuery, link.StudentID, link.ID); err != nil {
			return fmt.Errorf("demote primary guardians: %w", err)
		}
	}

	const updateQuery = `UPDATE guardian_links SET
        relationship_type = COALESCE($2, relationship_type),
        is_primary = COALESCE($3, is_primary),
        phone = COALESCE($4, phone),
        can_view_progress = COALESCE($5, can_view_progress),
        can_receive_notifications = COALESCE($6, can_receive_notifications),
        emergency_contact = COALESCE($7, emergency_contact)
        WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, link.ID,
		update.RelationshipType, update.IsPrimary, update.Phone,
		update.CanViewProgress, update.CanReceiveNotifications, update.EmergencyContact); err != nil {
		return fmt.Errorf("update guardian link: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit guardian link update: %w", err)
	}
	return nil
}

// Delete removes a link permanently. Remaining links are left untouched, so
// a student may end up with no primary guardian until one is promoted.
func (r *GuardianRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM guardian_links WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete guardian link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
