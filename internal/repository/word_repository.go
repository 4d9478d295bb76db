package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ortografia-app/ortografia-api/internal/models"
)

// WordRepository handles persistence of the word bank.
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository constructs the repository.
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create persists a new word. The unique index on word rejects duplicates.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.ID == "" {
		word.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if word.CreatedAt.IsZero() {
		word.CreatedAt = now
	}
	word.UpdatedAt = now

	const query = `INSERT INTO words (id, word, hint, category, difficulty, is_active, created_by, classroom_id, is_global, created_at, updated_at)
        VALUES (:id, :word, :hint, :category, :difficulty, :is_active, :created_by, :classroom_id, :is_global, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, word); err != nil {
		if IsUniqueViolation(err, ConstraintUniqueWord) {
			return err
		}
		return fmt.Errorf("create word: %w", err)
	}
	return nil
}

// FindByID returns a word by its identifier.
func (r *WordRepository) FindByID(ctx context.Context, id string) (*models.Word, error) {
	const query = `SELECT id, word, hint, category, difficulty, is_active, created_by, classroom_id, is_global, created_at, updated_at FROM words WHERE id = $1 LIMIT 1`
	var word models.Word
	if err := r.db.GetContext(ctx, &word, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find word by id: %w", err)
	}
	return &word, nil
}

// ExistsText reports whether a word with the given text already exists.
func (r *WordRepository) ExistsText(ctx context.Context, text string) (bool, error) {
	const query = `SELECT 1 FROM words WHERE word = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, text); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check word text: %w", err)
	}
	return true, nil
}

// ListByCreator returns a teacher's word catalog filtered by the criteria,
// with the total count for pagination.
func (r *WordRepository) ListByCreator(ctx context.Context, creatorID string, filter models.WordFilter, page, pageSize int) ([]models.WordDetail, int, error) {
	base := `FROM words w JOIN users u ON u.id = w.created_by WHERE w.created_by = $1`
	args := []interface{}{creatorID}
	var conditions []string

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("w.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Difficulty > 0 {
		conditions = append(conditions, fmt.Sprintf("w.difficulty = $%d", len(args)+1))
		args = append(args, filter.Difficulty)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("w.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(w.word LIKE $%d OR LOWER(w.hint) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToUpper(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " AND " + strings.Join(conditions, " AND ")
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT w.id, w.word, w.hint, w.category, w.difficulty, w.is_active, w.created_by, w.classroom_id, w.is_global, w.created_at, w.updated_at,
        u.full_name AS creator_name,
        CASE WHEN w.is_global THEN 'global' WHEN w.classroom_id IS NOT NULL THEN 'classroom' ELSE 'own' END AS source_type
        %s ORDER BY w.created_at DESC LIMIT %d OFFSET %d`, base+clause, pageSize, offset)

	var words []models.WordDetail
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list words: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count words: %w", err)
	}
	return words, total, nil
}

// ListForGame returns active words visible to a student: global words plus
// words scoped to the student's active classroom, in random order.
func (r *WordRepository) ListForGame(ctx context.Context, studentID string, difficulty, limit int) ([]models.GameWord, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	base := `SELECT w.word, w.hint, w.category FROM words w
        WHERE w.is_active = TRUE
        AND (w.is_global = TRUE OR w.classroom_id IN (
            SELECT e.classroom_id FROM enrollments e WHERE e.student_id = $1 AND e.status = 'ACTIVE'))`
	args := []interface{}{studentID}
	if difficulty > 0 {
		base += fmt.Sprintf(" AND w.difficulty = $%d", len(args)+1)
		args = append(args, difficulty)
	}
	query := fmt.Sprintf("%s ORDER BY RANDOM() LIMIT %d", base, limit)

	var words []models.GameWord
	if err := r.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, fmt.Errorf("list game words: %w", err)
	}
	return words, nil
}

// Update updates mutable fields of a word.
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	word.UpdatedAt = time.Now().UTC()
	const query = `UPDATE words SET word = :word, hint = :hint, category = :category, difficulty = :difficulty,
        is_active = :is_active, classroom_id = :classroom_id, is_global = :is_global, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, word); err != nil {
		if IsUniqueViolation(err, ConstraintUniqueWord) {
			return err
		}
		return fmt.Errorf("update word: %w", err)
	}
	return nil
}

// SetActive toggles a word's availability without losing it from the bank.
func (r *WordRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE words SET is_active = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set word active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set word active rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates the creator's word bank by activity, difficulty and category.
func (r *WordRepository) Stats(ctx context.Context, creatorID string) (*models.WordStats, error) {
	stats := &models.WordStats{
		ByDifficulty: make(map[int]int),
		ByCategory:   make(map[string]int),
	}

	const totalsQuery = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE is_active) AS active
        FROM words WHERE created_by = $1`
	var totals struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, creatorID); err != nil {
		return nil, fmt.Errorf("word totals: %w", err)
	}
	stats.Total = totals.Total
	stats.Active = totals.Active
	stats.Inactive = totals.Total - totals.Active

	const difficultyQuery = `SELECT difficulty, COUNT(*) AS count FROM words WHERE created_by = $1 GROUP BY difficulty`
	rows, err := r.db.QueryxContext(ctx, difficultyQuery, creatorID)
	if err != nil {
		return nil, fmt.Errorf("word difficulty stats: %w", err)
	}
	for rows.Next() {
		var difficulty, count int
		if err := rows.Scan(&difficulty, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan difficulty stats: %w", err)
		}
		stats.ByDifficulty[difficulty] = count
	}
	rows.Close()

	const categoryQuery = `SELECT category, COUNT(*) AS count FROM words WHERE created_by = $1 GROUP BY category`
	rows, err = r.db.QueryxContext(ctx, categoryQuery, creatorID)
	if err != nil {
		return nil, fmt.Errorf("word category stats: %w", err)
	}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		stats.ByCategory[category] = count
	}
	rows.Close()

	return stats, nil
}
