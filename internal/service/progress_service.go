package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
	"github.com/ortografia-app/ortografia-api/pkg/export"
)

type gameRepository interface {
	CreateSession(ctx context.Context, session *models.GameSession) error
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]models.GameSession, error)
	StatsByUser(ctx context.Context, userID string) (*models.ProgressStats, error)
	ClassroomProgress(ctx context.Context, classroomID string) ([]models.ClassroomProgressRow, error)
}

type guardianLinkReader interface {
	FindByPair(ctx context.Context, guardianID, studentID string) (*models.GuardianLink, error)
}

// RecordSessionRequest describes one finished game run.
type RecordSessionRequest struct {
	GameType         string          `json:"game_type" validate:"required"`
	Score            int             `json:"score" validate:"min=0"`
	TotalQuestions   int             `json:"total_questions" validate:"min=0"`
	CorrectAnswers   int             `json:"correct_answers" validate:"min=0"`
	IncorrectAnswers int             `json:"incorrect_answers" validate:"min=0"`
	TimeSpent        int             `json:"time_spent" validate:"min=0"`
	Completed        bool            `json:"completed"`
	SessionData      json.RawMessage `json:"session_data"`
}

// ProgressExportFormat selects the download format for classroom reports.
type ProgressExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ProgressExportFormat = "csv"
	ExportFormatPDF ProgressExportFormat = "pdf"
)

// ExportResult is a rendered report ready to stream to the client.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ProgressService records game sessions and answers progress queries.
type ProgressService struct {
	games       gameRepository
	enrollments activeEnrollmentReader
	classrooms  classroomReader
	guardians   guardianLinkReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgressService constructs ProgressService.
func NewProgressService(games gameRepository, enrollments activeEnrollmentReader, classrooms classroomReader, guardians guardianLinkReader, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		games:       games,
		enrollments: enrollments,
		classrooms:  classrooms,
		guardians:   guardians,
		validator:   validate,
		logger:      logger,
	}
}

// RecordSession stores a game session for the student, stamped with their
// active classroom when they have one.
func (s *ProgressService) RecordSession(ctx context.Context, studentID string, req RecordSessionRequest) (*models.GameSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	gameType := models.GameType(req.GameType)
	if !gameType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown game type")
	}

	var classroomID *string
	if enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID); err == nil {
		classroomID = &enrollment.ClassroomID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	session := &models.GameSession{
		UserID:           studentID,
		ClassroomID:      classroomID,
		GameType:         gameType,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		CorrectAnswers:   req.CorrectAnswers,
		IncorrectAnswers: req.IncorrectAnswers,
		TimeSpent:        req.TimeSpent,
		Completed:        req.Completed,
		SessionData:      req.SessionData,
	}
	if err := s.games.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record session")
	}
	return session, nil
}

// MyProgress returns the calling user's sessions and aggregate stats.
func (s *ProgressService) MyProgress(ctx context.Context, userID string, limit int) (*models.ProgressReport, error) {
	return s.buildReport(ctx, userID, limit)
}

// StudentProgress returns a student's progress to an authorised viewer: the
// student themself, a linked guardian with view permission, or the teacher of
// the student's active classroom.
func (s *ProgressService) StudentProgress(ctx context.Context, claims *models.JWTClaims, studentID string, limit int) (*models.ProgressReport, error) {
	if err := s.authorizeProgressAccess(ctx, claims, studentID); err != nil {
		return nil, err
	}
	return s.buildReport(ctx, studentID, limit)
}

// ClassroomProgress returns one aggregated row per active student of a
// classroom the teacher owns.
func (s *ProgressService) ClassroomProgress(ctx context.Context, teacherID, classroomID string) ([]models.ClassroomProgressRow, error) {
	if err := s.authorizeClassroom(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}
	rows, err := s.games.ClassroomProgress(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom progress")
	}
	return rows, nil
}

// ExportClassroomProgress renders the classroom progress report as CSV or PDF.
func (s *ProgressService) ExportClassroomProgress(ctx context.Context, teacherID, classroomID string, format ProgressExportFormat) (*ExportResult, error) {
	if err := s.authorizeClassroom(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}
	rows, err := s.games.ClassroomProgress(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom progress")
	}

	report := buildProgressReport(rows)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ExportFormatCSV:
		content, err := export.CSV(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("progreso_%s_%s.csv", classroomID, stamp),
		}, nil
	case ExportFormatPDF:
		content, err := export.PDF(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("progreso_%s_%s.pdf", classroomID, stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ProgressService) buildReport(ctx context.Context, userID string, limit int) (*models.ProgressReport, error) {
	sessions, err := s.games.ListSessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	stats, err := s.games.StatsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stats")
	}
	return &models.ProgressReport{Sessions: sessions, Stats: *stats}, nil
}

func (s *ProgressService) authorizeProgressAccess(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	switch claims.Role {
	case models.RoleStudent:
		if claims.UserID == studentID {
			return nil
		}
	case models.RoleGuardian:
		link, err := s.guardians.FindByPair(ctx, claims.UserID, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check link")
		}
		if link.CanViewProgress {
			return nil
		}
	case models.RoleTeacher:
		enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		classroom, err := s.classrooms.FindByID(ctx, enrollment.ClassroomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
		}
		if classroom.TeacherID == claims.UserID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this student's progress")
}

func (s *ProgressService) authorizeClassroom(ctx context.Context, teacherID, classroomID string) error {
	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if classroom.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}
	return nil
}

func buildProgressReport(rows []models.ClassroomProgressRow) export.Report {
	report := export.Report{
		Title:   "Reporte de Progreso",
		Columns: []string{"Estudiante", "Sesiones", "Completadas", "Promedio", "Tiempo Total", "Ultima Actividad"},
	}
	for _, row := range rows {
		average := ""
		if row.AverageScore != nil {
			average = fmt.Sprintf("%.1f", *row.AverageScore)
		}
		totalTime := ""
		if row.TotalTimeSpent != nil {
			totalTime = formatSeconds(*row.TotalTimeSpent)
		}
		lastActivity := ""
		if row.LastActivity != nil {
			lastActivity = row.LastActivity.UTC().Format("2006-01-02 15:04")
		}
		report.Rows = append(report.Rows, []string{
			row.StudentName,
			fmt.Sprintf("%d", row.TotalSessions),
			fmt.Sprintf("%d", row.CompletedSessions),
			average,
			totalTime,
			lastActivity,
		})
	}
	return report
}

func formatSeconds(total int) string {
	minutes := total / 60
	seconds := total % 60
	return strings.TrimSpace(fmt.Sprintf("%dm %02ds", minutes, seconds))
}
