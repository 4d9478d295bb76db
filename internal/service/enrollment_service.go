package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type enrollmentRepository interface {
	FindActiveByStudent(ctx context.Context, studentID string) (*models.Enrollment, error)
	FindActiveInfoByStudent(ctx context.Context, studentID string) (*models.EnrollmentInfo, error)
	ListHistory(ctx context.Context, studentID string) ([]models.EnrollmentInfo, error)
	Enroll(ctx context.Context, studentID, classroomID string, notes *string) (*models.Enrollment, error)
	Transfer(ctx context.Context, studentID, toClassroomID string, closeNote, notes *string) (*models.Enrollment, error)
	Unenroll(ctx context.Context, studentID string, notes *string) error
}

type classroomReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type enrollmentUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role models.UserRole) (*models.User, error)
}

// EnrollStudentRequest describes a teacher enrolling a student by email.
type EnrollStudentRequest struct {
	ClassroomID  string `json:"classroom_id" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
}

// SelfEnrollRequest describes a student joining a classroom.
type SelfEnrollRequest struct {
	ClassroomID string `json:"classroom_id" validate:"required"`
}

// TransferStudentRequest describes moving a student to another classroom.
// The optional reason is written to the closed enrollment row.
type TransferStudentRequest struct {
	StudentID     string  `json:"student_id" validate:"required"`
	ToClassroomID string  `json:"to_classroom_id" validate:"required"`
	Reason        *string `json:"reason"`
}

// UnenrollRequest carries the optional note written to the closed row.
type UnenrollRequest struct {
	Reason *string `json:"reason"`
}

// StudentSearchResult pairs a student with their current enrollment, if any.
type StudentSearchResult struct {
	Student    models.UserSummary     `json:"student"`
	IsEnrolled bool                   `json:"is_enrolled"`
	Enrollment *models.EnrollmentInfo `json:"enrollment,omitempty"`
}

// EnrollmentService orchestrates enrollment workflows. The database holds the
// single-active-enrollment invariant; this layer translates its verdicts into
// actionable errors.
type EnrollmentService struct {
	repo       enrollmentRepository
	classrooms classroomReader
	users      enrollmentUserReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, classrooms classroomReader, users enrollmentUserReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, classrooms: classrooms, users: users, validator: validate, logger: logger}
}

// Enroll registers a student into one of the teacher's classrooms.
func (s *EnrollmentService) Enroll(ctx context.Context, teacherID string, req EnrollStudentRequest) (*models.EnrollmentInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	classroom, err := s.loadClassroom(ctx, req.ClassroomID)
	if err != nil {
		return nil, err
	}
	if classroom.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}

	student, err := s.users.FindByEmailAndRole(ctx, req.StudentEmail, models.RoleStudent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	return s.enroll(ctx, student.ID, classroom.ID)
}

// SelfEnroll registers the calling student into an open classroom.
func (s *EnrollmentService) SelfEnroll(ctx context.Context, studentID string, req SelfEnrollRequest) (*models.EnrollmentInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	classroom, err := s.loadClassroom(ctx, req.ClassroomID)
	if err != nil {
		return nil, err
	}

	return s.enroll(ctx, studentID, classroom.ID)
}

func (s *EnrollmentService) enroll(ctx context.Context, studentID, classroomID string) (*models.EnrollmentInfo, error) {
	_, err := s.repo.Enroll(ctx, studentID, classroomID, nil)
	if err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintOneActiveEnrollment) {
			return nil, s.activeEnrollmentConflict(ctx, studentID)
		}
		return nil, s.mapEnrollError(err, "failed to enroll student")
	}

	info, err := s.repo.FindActiveInfoByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("classroom_id", classroomID))
	return info, nil
}

// Transfer moves a student into one of the teacher's classrooms, closing the
// previous enrollment in the same transaction.
func (s *EnrollmentService) Transfer(ctx context.Context, teacherID string, req TransferStudentRequest) (*models.EnrollmentInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	target, err := s.loadClassroom(ctx, req.ToClassroomID)
	if err != nil {
		return nil, err
	}
	if target.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "target classroom belongs to another teacher")
	}

	current, err := s.repo.FindActiveInfoByStudent(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student has no active enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current enrollment")
	}

	closeNote := closureNote(req.Reason, "Transferido por docente")
	notes := fmt.Sprintf("Transferido desde %s", current.ClassroomName)
	if _, err := s.repo.Transfer(ctx, req.StudentID, target.ID, &closeNote, &notes); err != nil {
		return nil, s.mapEnrollError(err, "failed to transfer student")
	}

	info, err := s.repo.FindActiveInfoByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	s.logger.Info("student transferred",
		zap.String("student_id", req.StudentID),
		zap.String("from_classroom", current.ClassroomID),
		zap.String("to_classroom", target.ID))
	return info, nil
}

// Unenroll marks the student's active enrollment inactive. The teacher must
// own the classroom the student is currently in. An optional reason is kept
// on the closed row.
func (s *EnrollmentService) Unenroll(ctx context.Context, teacherID, studentID string, reason *string) error {
	current, err := s.repo.FindActiveInfoByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "student has no active enrollment")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current enrollment")
	}

	classroom, err := s.loadClassroom(ctx, current.ClassroomID)
	if err != nil {
		return err
	}
	if classroom.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "student is enrolled in another teacher's classroom")
	}

	var notes *string
	if reason != nil {
		if trimmed := strings.TrimSpace(*reason); trimmed != "" {
			notes = &trimmed
		}
	}
	if err := s.repo.Unenroll(ctx, studentID, notes); err != nil {
		if errors.Is(err, repository.ErrNoActiveEnrollment) {
			return appErrors.Clone(appErrors.ErrValidation, "student has no active enrollment")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unenroll student")
	}
	s.logger.Info("student unenrolled",
		zap.String("student_id", studentID),
		zap.String("classroom_id", current.ClassroomID))
	return nil
}

// Status answers the student "am I enrolled" query.
func (s *EnrollmentService) Status(ctx context.Context, studentID string) (*models.EnrollmentStatusResponse, error) {
	info, err := s.repo.FindActiveInfoByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.EnrollmentStatusResponse{IsEnrolled: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment status")
	}
	return &models.EnrollmentStatusResponse{
		IsEnrolled: true,
		Classroom: &models.EnrolledClassroom{
			ID:             info.ClassroomID,
			Name:           info.ClassroomName,
			GradeLevel:     info.GradeLevel,
			Section:        info.Section,
			SchoolYear:     info.SchoolYear,
			TeacherName:    info.TeacherName,
			TeacherEmail:   info.TeacherEmail,
			EnrollmentDate: info.EnrollmentDate,
		},
	}, nil
}

// History returns every enrollment the student has held, newest first.
func (s *EnrollmentService) History(ctx context.Context, studentID string) ([]models.EnrollmentInfo, error) {
	history, err := s.repo.ListHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment history")
	}
	return history, nil
}

// SearchStudent finds a student account by email together with their current
// enrollment so teachers can decide between enroll and transfer. A student
// already placed in one of the caller's own classrooms is a conflict carrying
// the classroom name.
func (s *EnrollmentService) SearchStudent(ctx context.Context, teacherID, email string) (*StudentSearchResult, error) {
	student, err := s.users.FindByEmailAndRole(ctx, email, models.RoleStudent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search student")
	}

	result := &StudentSearchResult{
		Student: models.UserSummary{
			ID:        student.ID,
			FullName:  student.FullName,
			Email:     student.Email,
			CreatedAt: student.CreatedAt,
		},
	}

	info, err := s.repo.FindActiveInfoByStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	classroom, err := s.classrooms.FindByID(ctx, info.ClassroomID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if err == nil && classroom.TeacherID == teacherID {
		return nil, appErrors.WithDetails(appErrors.ErrConflict,
			fmt.Sprintf("student is already enrolled in %s", info.ClassroomName),
			map[string]interface{}{"classroom": info.ClassroomName})
	}

	result.IsEnrolled = true
	result.Enrollment = info
	return result, nil
}

// closureNote trims the caller-supplied reason and falls back to the default
// when nothing usable was given.
func closureNote(reason *string, fallback string) string {
	if reason != nil {
		if trimmed := strings.TrimSpace(*reason); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// activeEnrollmentConflict builds the conflict error carrying the student's
// current placement so the client can offer a transfer instead.
func (s *EnrollmentService) activeEnrollmentConflict(ctx context.Context, studentID string) error {
	details := map[string]interface{}{}
	if info, err := s.repo.FindActiveInfoByStudent(ctx, studentID); err == nil {
		details["currentClassroom"] = info.ClassroomName
		details["currentTeacher"] = info.TeacherName
		details["classroomId"] = info.ClassroomID
	}
	return appErrors.WithDetails(appErrors.ErrConflict, "student already has an active enrollment", details)
}

func (s *EnrollmentService) mapEnrollError(err error, fallback string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
	case errors.Is(err, repository.ErrClassroomFull):
		return appErrors.Clone(appErrors.ErrCapacity, "classroom is full")
	case errors.Is(err, repository.ErrClassroomInactive):
		return appErrors.Clone(appErrors.ErrConflict, "classroom is not active")
	case errors.Is(err, repository.ErrSameClassroom):
		return appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this classroom")
	case errors.Is(err, repository.ErrNoActiveEnrollment):
		return appErrors.Clone(appErrors.ErrValidation, "student has no active enrollment")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fallback)
	}
}

func (s *EnrollmentService) loadClassroom(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.classrooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if !classroom.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "classroom is not active")
	}
	return classroom, nil
}
