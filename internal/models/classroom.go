package models

import "time"

// Classroom represents a teacher-owned classroom for one school year.
type Classroom struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	GradeLevel  string    `db:"grade_level" json:"grade_level"`
	Section     string    `db:"section" json:"section"`
	SchoolYear  string    `db:"school_year" json:"school_year"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomSummary enriches Classroom with the live active-enrollment count.
type ClassroomSummary struct {
	Classroom
	StudentCount int `db:"student_count" json:"student_count"`
}

// AvailableClassroom is the catalog row offered to students for self-enrollment.
type AvailableClassroom struct {
	ID              string `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	GradeLevel      string `db:"grade_level" json:"grade_level"`
	Section         string `db:"section" json:"section"`
	SchoolYear      string `db:"school_year" json:"school_year"`
	MaxStudents     int    `db:"max_students" json:"max_students"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
	CurrentStudents int    `db:"current_students" json:"current_students"`
}

// ClassroomStudent is a roster row with aggregated play statistics.
type ClassroomStudent struct {
	ID               string     `db:"id" json:"id"`
	FullName         string     `db:"full_name" json:"name"`
	Email            string     `db:"email" json:"email"`
	EnrollmentDate   time.Time  `db:"enrollment_date" json:"enrollment_date"`
	TotalGamesPlayed int        `db:"total_games_played" json:"total_games_played"`
	AverageScore     *float64   `db:"average_score" json:"average_score,omitempty"`
	LastActivity     *time.Time `db:"last_activity" json:"last_activity,omitempty"`
}
