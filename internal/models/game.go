package models

import (
	"encoding/json"
	"time"
)

// GameType identifies one of the spelling games.
type GameType string

// Supported game types.
const (
	GameTypeOrtografia GameType = "ortografia"
	GameTypeReglas     GameType = "reglas"
	GameTypeAhorcado   GameType = "ahorcado"
	GameTypeTitanic    GameType = "titanic"
)

// GameTypes lists every supported game type in stats order.
var GameTypes = []GameType{GameTypeOrtografia, GameTypeReglas, GameTypeAhorcado, GameTypeTitanic}

// Valid reports whether the game type is known.
func (g GameType) Valid() bool {
	switch g {
	case GameTypeOrtografia, GameTypeReglas, GameTypeAhorcado, GameTypeTitanic:
		return true
	}
	return false
}

// GameSession records one play-through of a game.
type GameSession struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	ClassroomID      *string         `db:"classroom_id" json:"classroom_id,omitempty"`
	GameType         GameType        `db:"game_type" json:"game_type"`
	Score            int             `db:"score" json:"score"`
	TotalQuestions   int             `db:"total_questions" json:"total_questions"`
	CorrectAnswers   int             `db:"correct_answers" json:"correct_answers"`
	IncorrectAnswers int             `db:"incorrect_answers" json:"incorrect_answers"`
	TimeSpent        int             `db:"time_spent" json:"time_spent"`
	Completed        bool            `db:"completed" json:"completed"`
	SessionData      json.RawMessage `db:"session_data" json:"session_data,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// GameTypeStats aggregates sessions of a single game type.
type GameTypeStats struct {
	Sessions     int     `json:"sessions"`
	Completed    int     `json:"completed"`
	BestScore    int     `json:"best_score"`
	AverageScore float64 `json:"average_score"`
}

// ProgressStats aggregates a user's play history.
type ProgressStats struct {
	TotalSessions  int                        `json:"total_sessions"`
	GamesCompleted int                        `json:"games_completed"`
	TotalScore     int                        `json:"total_score"`
	AverageScore   float64                    `json:"average_score"`
	ByGameType     map[GameType]GameTypeStats `json:"by_game_type"`
}

// ProgressReport bundles the raw sessions with their aggregate stats.
type ProgressReport struct {
	Sessions []GameSession `json:"progress"`
	Stats    ProgressStats `json:"stats"`
}

// ClassroomProgressRow is one student line of the classroom progress report.
type ClassroomProgressRow struct {
	StudentID         string     `db:"student_id" json:"student_id"`
	StudentName       string     `db:"student_name" json:"student_name"`
	TotalSessions     int        `db:"total_sessions" json:"total_sessions"`
	CompletedSessions int        `db:"completed_sessions" json:"completed_sessions"`
	AverageScore      *float64   `db:"average_score" json:"average_score,omitempty"`
	TotalTimeSpent    *int       `db:"total_time_spent" json:"total_time_spent,omitempty"`
	LastActivity      *time.Time `db:"last_activity" json:"last_activity,omitempty"`
}

// TeacherDashboard summarises a teacher's classrooms and activity.
type TeacherDashboard struct {
	TotalClassrooms int `json:"total_classrooms"`
	TotalStudents   int `json:"total_students"`
	RecentActivity  int `json:"recent_activity"`
	WordsCreated    int `json:"words_created"`
}
