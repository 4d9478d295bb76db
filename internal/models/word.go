package models

import "time"

// Word is a vocabulary entry used by the spelling games.
type Word struct {
	ID          string    `db:"id" json:"id"`
	Word        string    `db:"word" json:"word"`
	Hint        string    `db:"hint" json:"hint"`
	Category    string    `db:"category" json:"category"`
	Difficulty  int       `db:"difficulty" json:"difficulty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	ClassroomID *string   `db:"classroom_id" json:"classroom_id,omitempty"`
	IsGlobal    bool      `db:"is_global" json:"is_global"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// WordDetail enriches Word with the creator's name and, for the teacher
// catalog, where the word came from (own, global or classroom scope).
type WordDetail struct {
	Word
	CreatorName string `db:"creator_name" json:"creator_name"`
	SourceType  string `db:"source_type" json:"source_type,omitempty"`
}

// GameWord is the minimal projection served to a running game.
type GameWord struct {
	Word     string `db:"word" json:"word"`
	Hint     string `db:"hint" json:"hint"`
	Category string `db:"category" json:"category"`
}

// WordFilter provides filters for listing words.
type WordFilter struct {
	Category   string
	Difficulty int
	Active     *bool
	Search     string
}

// WordStats summarises the word bank.
type WordStats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	ByDifficulty map[int]int    `json:"byDifficulty"`
	ByCategory   map[string]int `json:"byCategory"`
}
