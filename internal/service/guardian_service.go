package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type guardianRepository interface {
	FindByID(ctx context.Context, id string) (*models.GuardianLink, error)
	Link(ctx context.Context, link *models.GuardianLink) error
	ListByStudent(ctx context.Context, studentID string) ([]models.GuardianDetail, error)
	ListChildren(ctx context.Context, guardianID string) ([]models.ChildDetail, error)
	HasLink(ctx context.Context, guardianID, studentID string) (bool, error)
	Update(ctx context.Context, link *models.GuardianLink, update models.GuardianLinkUpdate) error
	Delete(ctx context.Context, id string) error
}

type activeEnrollmentReader interface {
	FindActiveByStudent(ctx context.Context, studentID string) (*models.Enrollment, error)
}

type guardianUserReader interface {
	enrollmentUserReader
	SearchByRole(ctx context.Context, role models.UserRole, search string, limit int) ([]models.UserSummary, error)
}

// LinkChildRequest describes a guardian linking themselves to a student.
type LinkChildRequest struct {
	StudentEmail     string  `json:"student_email" validate:"required,email"`
	RelationshipType string  `json:"relationship_type" validate:"required"`
	Phone            *string `json:"phone"`
	EmergencyContact bool    `json:"emergency_contact"`
}

// SearchGuardiansRequest carries the guardian lookup criteria. Email matches
// exactly; name matches partially. Email wins when both are present.
type SearchGuardiansRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name"`
}

// UpdateGuardianLinkRequest carries partial link changes; nil fields are
// left untouched.
type UpdateGuardianLinkRequest struct {
	RelationshipType        *string `json:"relationship_type"`
	IsPrimary               *bool   `json:"is_primary"`
	Phone                   *string `json:"phone"`
	CanViewProgress         *bool   `json:"can_view_progress"`
	CanReceiveNotifications *bool   `json:"can_receive_notifications"`
	EmergencyContact        *bool   `json:"emergency_contact"`
}

// GuardianService manages guardian-student links. The partial unique index
// on (student_id) WHERE is_primary keeps the one-primary rule intact even
// under concurrent promotes.
type GuardianService struct {
	repo        guardianRepository
	users       guardianUserReader
	enrollments activeEnrollmentReader
	classrooms  classroomReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGuardianService constructs GuardianService.
func NewGuardianService(repo guardianRepository, users guardianUserReader, enrollments activeEnrollmentReader, classrooms classroomReader, validate *validator.Validate, logger *zap.Logger) *GuardianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianService{repo: repo, users: users, enrollments: enrollments, classrooms: classrooms, validator: validate, logger: logger}
}

// LinkChild links the calling guardian to a student by email. The first
// guardian of a student becomes primary automatically.
func (s *GuardianService) LinkChild(ctx context.Context, guardianID string, req LinkChildRequest) (*models.GuardianLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}

	relationship := models.RelationshipType(req.RelationshipType)
	if !relationship.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid relationship type")
	}

	student, err := s.users.FindByEmailAndRole(ctx, req.StudentEmail, models.RoleStudent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	link := &models.GuardianLink{
		GuardianID:              guardianID,
		StudentID:               student.ID,
		RelationshipType:        relationship,
		CanViewProgress:         true,
		CanReceiveNotifications: true,
		EmergencyContact:        req.EmergencyContact,
		Phone:                   req.Phone,
	}
	if err := s.repo.Link(ctx, link); err != nil {
		switch {
		case errors.Is(err, repository.ErrGuardianAlreadyLinked):
			return nil, appErrors.Clone(appErrors.ErrConflict, "already linked to this student")
		case errors.Is(err, repository.ErrGuardianCapReached):
			return nil, appErrors.Clone(appErrors.ErrCapacity, "student already has the maximum number of guardians")
		case repository.IsUniqueViolation(err, repository.ConstraintGuardianPair):
			return nil, appErrors.Clone(appErrors.ErrConflict, "already linked to this student")
		case repository.IsUniqueViolation(err, ""):
			return nil, appErrors.Clone(appErrors.ErrConflict, "conflicting guardian link")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link student")
		}
	}

	s.logger.Info("guardian linked",
		zap.String("guardian_id", guardianID),
		zap.String("student_id", student.ID),
		zap.Bool("is_primary", link.IsPrimary))
	return link, nil
}

// SearchGuardians finds guardian accounts by exact email or partial name so
// teachers can look up a student's family contacts.
func (s *GuardianService) SearchGuardians(ctx context.Context, req SearchGuardiansRequest) ([]models.UserSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search payload")
	}

	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" && name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email or name is required")
	}

	if email != "" {
		guardian, err := s.users.FindByEmailAndRole(ctx, email, models.RoleGuardian)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no guardians match the search")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search guardians")
		}
		return []models.UserSummary{{
			ID:        guardian.ID,
			FullName:  guardian.FullName,
			Email:     guardian.Email,
			CreatedAt: guardian.CreatedAt,
		}}, nil
	}

	guardians, err := s.users.SearchByRole(ctx, models.RoleGuardian, name, 20)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search guardians")
	}
	if len(guardians) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no guardians match the search")
	}
	return guardians, nil
}

// ListChildren returns the students linked to the guardian.
func (s *GuardianService) ListChildren(ctx context.Context, guardianID string) ([]models.ChildDetail, error) {
	children, err := s.repo.ListChildren(ctx, guardianID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	return children, nil
}

// ListGuardians returns a student's guardians. Callers must be a linked
// guardian of the student or the teacher of the student's active classroom.
func (s *GuardianService) ListGuardians(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.GuardianDetail, error) {
	if err := s.authorizeStudentAccess(ctx, claims, studentID); err != nil {
		return nil, err
	}
	guardians, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list guardians")
	}
	return guardians, nil
}

// UpdateLink applies partial changes to a link. Promoting to primary demotes
// the student's other guardians atomically.
func (s *GuardianService) UpdateLink(ctx context.Context, claims *models.JWTClaims, linkID string, req UpdateGuardianLinkRequest) (*models.GuardianLink, error) {
	link, err := s.findLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLinkChange(ctx, claims, link); err != nil {
		return nil, err
	}

	update := models.GuardianLinkUpdate{
		IsPrimary:               req.IsPrimary,
		Phone:                   req.Phone,
		CanViewProgress:         req.CanViewProgress,
		CanReceiveNotifications: req.CanReceiveNotifications,
		EmergencyContact:        req.EmergencyContact,
	}
	if req.RelationshipType != nil {
		relationship := models.RelationshipType(*req.RelationshipType)
		if !relationship.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid relationship type")
		}
		update.RelationshipType = &relationship
	}

	if err := s.repo.Update(ctx, link, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update link")
	}

	updated, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload link")
	}
	return updated, nil
}

// Unlink removes a guardian link permanently. No other link is promoted; a
// student may be left without a primary guardian.
func (s *GuardianService) Unlink(ctx context.Context, claims *models.JWTClaims, linkID string) error {
	link, err := s.findLink(ctx, linkID)
	if err != nil {
		return err
	}
	if err := s.authorizeLinkChange(ctx, claims, link); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, linkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove link")
	}
	s.logger.Info("guardian unlinked",
		zap.String("link_id", linkID),
		zap.String("student_id", link.StudentID))
	return nil
}

func (s *GuardianService) findLink(ctx context.Context, linkID string) (*models.GuardianLink, error) {
	link, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load link")
	}
	return link, nil
}

// authorizeLinkChange allows the link's own guardian or the teacher of the
// student's active classroom.
func (s *GuardianService) authorizeLinkChange(ctx context.Context, claims *models.JWTClaims, link *models.GuardianLink) error {
	if claims.Role == models.RoleGuardian && claims.UserID == link.GuardianID {
		return nil
	}
	if claims.Role == models.RoleTeacher {
		ok, err := s.teachesStudent(ctx, claims.UserID, link.StudentID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to manage this link")
}

func (s *GuardianService) authorizeStudentAccess(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	switch claims.Role {
	case models.RoleGuardian:
		linked, err := s.repo.HasLink(ctx, claims.UserID, studentID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check link")
		}
		if linked {
			return nil
		}
	case models.RoleTeacher:
		ok, err := s.teachesStudent(ctx, claims.UserID, studentID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	case models.RoleStudent:
		if claims.UserID == studentID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this student")
}

func (s *GuardianService) teachesStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	classroom, err := s.classrooms.FindByID(ctx, enrollment.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom.TeacherID == teacherID, nil
}
