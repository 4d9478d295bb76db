package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

type classroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassroomSummary, error)
	ListAvailable(ctx context.Context, studentID string) ([]models.AvailableClassroom, error)
	ListStudents(ctx context.Context, classroomID string) ([]models.ClassroomStudent, error)
	Update(ctx context.Context, classroom *models.Classroom) error
}

// CreateClassroomRequest describes classroom creation.
type CreateClassroomRequest struct {
	Name        string `json:"name" validate:"required"`
	GradeLevel  string `json:"grade_level" validate:"required"`
	Section     string `json:"section" validate:"required"`
	SchoolYear  string `json:"school_year" validate:"required"`
	MaxStudents int    `json:"max_students" validate:"omitempty,min=1,max=200"`
}

// UpdateClassroomRequest carries partial classroom changes.
type UpdateClassroomRequest struct {
	Name        *string `json:"name"`
	GradeLevel  *string `json:"grade_level"`
	Section     *string `json:"section"`
	SchoolYear  *string `json:"school_year"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,min=1,max=200"`
	Active      *bool   `json:"active"`
}

// ClassroomService manages teacher classrooms.
type ClassroomService struct {
	repo               classroomRepository
	validator          *validator.Validate
	logger             *zap.Logger
	defaultMaxStudents int
}

// NewClassroomService constructs ClassroomService.
func NewClassroomService(repo classroomRepository, validate *validator.Validate, logger *zap.Logger, defaultMaxStudents int) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMaxStudents <= 0 {
		defaultMaxStudents = 50
	}
	return &ClassroomService{repo: repo, validator: validate, logger: logger, defaultMaxStudents: defaultMaxStudents}
}

// Create opens a new classroom owned by the teacher. A teacher may hold only
// one classroom per school year and section.
func (s *ClassroomService) Create(ctx context.Context, teacherID string, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}

	maxStudents := req.MaxStudents
	if maxStudents == 0 {
		maxStudents = s.defaultMaxStudents
	}

	classroom := &models.Classroom{
		Name:        req.Name,
		TeacherID:   teacherID,
		GradeLevel:  req.GradeLevel,
		Section:     req.Section,
		SchoolYear:  req.SchoolYear,
		MaxStudents: maxStudents,
		Active:      true,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintClassroomSection) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "classroom already exists for this school year and section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}

	s.logger.Info("classroom created",
		zap.String("classroom_id", classroom.ID),
		zap.String("teacher_id", teacherID))
	return classroom, nil
}

// ListMine returns the teacher's classrooms with live student counts.
func (s *ClassroomService) ListMine(ctx context.Context, teacherID string) ([]models.ClassroomSummary, error) {
	classrooms, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	return classrooms, nil
}

// ListAvailable returns the classrooms the student can still join: active,
// with free seats, and not the one they are already enrolled in.
func (s *ClassroomService) ListAvailable(ctx context.Context, studentID string) ([]models.AvailableClassroom, error) {
	classrooms, err := s.repo.ListAvailable(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available classrooms")
	}
	return classrooms, nil
}

// Get returns a classroom the teacher owns.
func (s *ClassroomService) Get(ctx context.Context, teacherID, classroomID string) (*models.Classroom, error) {
	return s.findOwned(ctx, teacherID, classroomID)
}

// ListStudents returns the active roster of a classroom the teacher owns.
func (s *ClassroomService) ListStudents(ctx context.Context, teacherID, classroomID string) ([]models.ClassroomStudent, error) {
	if _, err := s.findOwned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Update applies partial changes to a classroom the teacher owns.
func (s *ClassroomService) Update(ctx context.Context, teacherID, classroomID string, req UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}

	classroom, err := s.findOwned(ctx, teacherID, classroomID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		classroom.Name = *req.Name
	}
	if req.GradeLevel != nil {
		classroom.GradeLevel = *req.GradeLevel
	}
	if req.Section != nil {
		classroom.Section = *req.Section
	}
	if req.SchoolYear != nil {
		classroom.SchoolYear = *req.SchoolYear
	}
	if req.MaxStudents != nil {
		classroom.MaxStudents = *req.MaxStudents
	}
	if req.Active != nil {
		classroom.Active = *req.Active
	}

	if err := s.repo.Update(ctx, classroom); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintClassroomSection) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "classroom already exists for this school year and section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	return classroom, nil
}

func (s *ClassroomService) findOwned(ctx context.Context, teacherID, classroomID string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if classroom.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}
	return classroom, nil
}
