package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ortografia-app/ortografia-api/internal/models"
)

// GameRepository handles persistence of game sessions and progress queries.
type GameRepository struct {
	db *sqlx.DB
}

// NewGameRepository constructs the repository.
func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// CreateSession persists a finished or abandoned game session.
func (r *GameRepository) CreateSession(ctx context.Context, session *models.GameSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO game_sessions (id, user_id, classroom_id, game_type, score, total_questions, correct_answers, incorrect_answers, time_spent, completed, session_data, created_at)
        VALUES (:id, :user_id, :classroom_id, :game_type, :score, :total_questions, :correct_answers, :incorrect_answers, :time_spent, :completed, :session_data, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create game session: %w", err)
	}
	return nil
}

// ListSessionsByUser returns a user's most recent sessions.
func (r *GameRepository) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]models.GameSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, user_id, classroom_id, game_type, score, total_questions, correct_answers, incorrect_answers, time_spent, completed, session_data, created_at
        FROM game_sessions WHERE user_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var sessions []models.GameSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list game sessions: %w", err)
	}
	return sessions, nil
}

// StatsByUser aggregates a user's play history, overall and per game type.
func (r *GameRepository) StatsByUser(ctx context.Context, userID string) (*models.ProgressStats, error) {
	stats := &models.ProgressStats{
		ByGameType: make(map[models.GameType]models.GameTypeStats),
	}

	const totalsQuery = `SELECT COUNT(*) AS total_sessions,
        COUNT(*) FILTER (WHERE completed) AS games_completed,
        COALESCE(SUM(score), 0) AS total_score,
        COALESCE(AVG(score), 0) AS average_score
        FROM game_sessions WHERE user_id = $1`
	var totals struct {
		TotalSessions  int     `db:"total_sessions"`
		GamesCompleted int     `db:"games_completed"`
		TotalScore     int     `db:"total_score"`
		AverageScore   float64 `db:"average_score"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, userID); err != nil {
		return nil, fmt.Errorf("user game totals: %w", err)
	}
	stats.TotalSessions = totals.TotalSessions
	stats.GamesCompleted = totals.GamesCompleted
	stats.TotalScore = totals.TotalScore
	stats.AverageScore = totals.AverageScore

	const byTypeQuery = `SELECT game_type,
        COUNT(*) AS sessions,
        COUNT(*) FILTER (WHERE completed) AS completed,
        COALESCE(MAX(score), 0) AS best_score,
        COALESCE(AVG(score), 0) AS average_score
        FROM game_sessions WHERE user_id = $1 GROUP BY game_type`
	rows, err := r.db.QueryxContext(ctx, byTypeQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("user game type stats: %w", err)
	}
	for rows.Next() {
		var gameType models.GameType
		var typeStats models.GameTypeStats
		if err := rows.Scan(&gameType, &typeStats.Sessions, &typeStats.Completed, &typeStats.BestScore, &typeStats.AverageScore); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan game type stats: %w", err)
		}
		stats.ByGameType[gameType] = typeStats
	}
	rows.Close()

	return stats, nil
}

// ClassroomProgress returns one aggregated row per active student of the
// classroom, students without sessions included.
func (r *GameRepository) ClassroomProgress(ctx context.Context, classroomID string) ([]models.ClassroomProgressRow, error) {
	const query = `SELECT u.id AS student_id, u.full_name AS student_name,
        COUNT(gs.id) AS total_sessions,
        COUNT(gs.id) FILTER (WHERE gs.completed) AS completed_sessions,
        AVG(gs.score) AS average_score,
        SUM(gs.time_spent) AS total_time_spent,
        MAX(gs.created_at) AS last_activity
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        LEFT JOIN game_sessions gs ON gs.user_id = u.id
        WHERE e.classroom_id = $1 AND e.status = 'ACTIVE'
        GROUP BY u.id, u.full_name
        ORDER BY u.full_name ASC`
	var rows []models.ClassroomProgressRow
	if err := r.db.SelectContext(ctx, &rows, query, classroomID); err != nil {
		return nil, fmt.Errorf("classroom progress: %w", err)
	}
	return rows, nil
}

// TeacherDashboard aggregates headline numbers across a teacher's classrooms.
func (r *GameRepository) TeacherDashboard(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM classrooms c WHERE c.teacher_id = $1 AND c.active = TRUE) AS total_classrooms,
        (SELECT COUNT(*) FROM enrollments e JOIN classrooms c ON c.id = e.classroom_id
            WHERE c.teacher_id = $1 AND e.status = 'ACTIVE') AS total_students,
        (SELECT COUNT(*) FROM game_sessions gs JOIN enrollments e ON e.student_id = gs.user_id AND e.status = 'ACTIVE'
            JOIN classrooms c ON c.id = e.classroom_id
            WHERE c.teacher_id = $1 AND gs.created_at > NOW() - INTERVAL '7 days') AS recent_activity,
        (SELECT COUNT(*) FROM words w WHERE w.created_by = $1) AS words_created`
	var dashboard models.TeacherDashboard
	if err := r.db.GetContext(ctx, &dashboard, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher dashboard: %w", err)
	}
	return &dashboard, nil
}
