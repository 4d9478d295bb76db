package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	appErrors "github.com/ortografia-app/ortografia-api/pkg/errors"
)

// wordPattern matches Spanish uppercase letters only, after normalisation.
var wordPattern = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑÜ]+$`)

type wordRepository interface {
	Create(ctx context.Context, word *models.Word) error
	FindByID(ctx context.Context, id string) (*models.Word, error)
	ExistsText(ctx context.Context, text string) (bool, error)
	ListByCreator(ctx context.Context, creatorID string, filter models.WordFilter, page, pageSize int) ([]models.WordDetail, int, error)
	ListForGame(ctx context.Context, studentID string, difficulty, limit int) ([]models.GameWord, error)
	Update(ctx context.Context, word *models.Word) error
	SetActive(ctx context.Context, id string, active bool) error
	Stats(ctx context.Context, creatorID string) (*models.WordStats, error)
}

// CreateWordRequest describes adding a word to the bank.
type CreateWordRequest struct {
	Word        string  `json:"word" validate:"required"`
	Hint        string  `json:"hint" validate:"required"`
	Category    string  `json:"category"`
	Difficulty  int     `json:"difficulty" validate:"omitempty,min=1,max=3"`
	ClassroomID *string `json:"classroom_id"`
	IsGlobal    bool    `json:"is_global"`
}

// UpdateWordRequest carries partial word changes.
type UpdateWordRequest struct {
	Word       *string `json:"word"`
	Hint       *string `json:"hint"`
	Category   *string `json:"category"`
	Difficulty *int    `json:"difficulty" validate:"omitempty,min=1,max=3"`
	IsActive   *bool   `json:"is_active"`
	IsGlobal   *bool   `json:"is_global"`
}

// WordService manages the word bank used by the spelling games.
type WordService struct {
	repo       wordRepository
	classrooms classroomReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewWordService constructs WordService.
func NewWordService(repo wordRepository, classrooms classroomReader, validate *validator.Validate, logger *zap.Logger) *WordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordService{repo: repo, classrooms: classrooms, validator: validate, logger: logger}
}

// Create adds a word to the teacher's bank. Words are stored uppercase and
// must be at least three Spanish letters, no spaces or digits.
func (s *WordService) Create(ctx context.Context, teacherID string, req CreateWordRequest) (*models.Word, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid word payload")
	}

	text, err := normalizeWordText(req.Word)
	if err != nil {
		return nil, err
	}

	if req.ClassroomID != nil {
		classroom, err := s.classrooms.FindByID(ctx, *req.ClassroomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
		}
		if classroom.TeacherID != teacherID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
		}
	}

	exists, err := s.repo.ExistsText(ctx, text)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check word")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "word already exists")
	}

	difficulty := req.Difficulty
	if difficulty == 0 {
		difficulty = 1
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "general"
	}

	word := &models.Word{
		Word:        text,
		Hint:        strings.TrimSpace(req.Hint),
		Category:    category,
		Difficulty:  difficulty,
		IsActive:    true,
		CreatedBy:   teacherID,
		ClassroomID: req.ClassroomID,
		IsGlobal:    req.IsGlobal,
	}
	if err := s.repo.Create(ctx, word); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintUniqueWord) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "word already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create word")
	}

	s.logger.Info("word created", zap.String("word_id", word.ID), zap.String("word", word.Word))
	return word, nil
}

// List returns the teacher's word catalog with pagination.
func (s *WordService) List(ctx context.Context, teacherID string, filter models.WordFilter, page, pageSize int) ([]models.WordDetail, *models.Pagination, error) {
	words, total, err := s.repo.ListByCreator(ctx, teacherID, filter, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list words")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return words, pagination, nil
}

// ListForGame returns a randomised word set for the student's games.
func (s *WordService) ListForGame(ctx context.Context, studentID string, difficulty, limit int) ([]models.GameWord, error) {
	if difficulty < 0 || difficulty > 3 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "difficulty must be between 1 and 3")
	}
	words, err := s.repo.ListForGame(ctx, studentID, difficulty, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load game words")
	}
	return words, nil
}

// Update applies partial changes to a word the teacher created.
func (s *WordService) Update(ctx context.Context, teacherID, wordID string, req UpdateWordRequest) (*models.Word, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid word payload")
	}

	word, err := s.findOwned(ctx, teacherID, wordID)
	if err != nil {
		return nil, err
	}

	if req.Word != nil {
		text, err := normalizeWordText(*req.Word)
		if err != nil {
			return nil, err
		}
		word.Word = text
	}
	if req.Hint != nil {
		word.Hint = strings.TrimSpace(*req.Hint)
	}
	if req.Category != nil {
		word.Category = strings.TrimSpace(*req.Category)
	}
	if req.Difficulty != nil {
		word.Difficulty = *req.Difficulty
	}
	if req.IsActive != nil {
		word.IsActive = *req.IsActive
	}
	if req.IsGlobal != nil {
		word.IsGlobal = *req.IsGlobal
	}

	if err := s.repo.Update(ctx, word); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintUniqueWord) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "word already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update word")
	}
	return word, nil
}

// Deactivate hides a word from the games without deleting it.
func (s *WordService) Deactivate(ctx context.Context, teacherID, wordID string) error {
	if _, err := s.findOwned(ctx, teacherID, wordID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, wordID, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "word not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate word")
	}
	return nil
}

// Stats summarises the teacher's word bank.
func (s *WordService) Stats(ctx context.Context, teacherID string) (*models.WordStats, error) {
	stats, err := s.repo.Stats(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load word stats")
	}
	return stats, nil
}

func (s *WordService) findOwned(ctx context.Context, teacherID, wordID string) (*models.Word, error) {
	word, err := s.repo.FindByID(ctx, wordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "word not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load word")
	}
	if word.CreatedBy != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "word belongs to another teacher")
	}
	return word, nil
}

func normalizeWordText(raw string) (string, error) {
	text := strings.ToUpper(strings.TrimSpace(raw))
	if utf8.RuneCountInString(text) < 3 {
		return "", appErrors.Clone(appErrors.ErrValidation, "word must have at least 3 letters")
	}
	if !wordPattern.MatchString(text) {
		return "", appErrors.Clone(appErrors.ErrValidation, "word must contain only letters")
	}
	return text, nil
}
