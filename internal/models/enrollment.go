package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment row.
// A row only ever moves ACTIVE -> TRANSFERRED or ACTIVE -> INACTIVE; a new
// row is the only way back to ACTIVE for the same student.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive    EnrollmentStatus = "INACTIVE"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
)

// Enrollment ties a student to a classroom. Rows are never deleted, only
// status-transitioned, preserving history.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	ClassroomID    string           `db:"classroom_id" json:"classroom_id"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Notes          *string          `db:"notes" json:"notes,omitempty"`
}

// EnrollmentInfo enriches the active enrollment with classroom and teacher
// context for conflict messages and status queries.
type EnrollmentInfo struct {
	Enrollment
	ClassroomName string `db:"classroom_name" json:"classroom_name"`
	GradeLevel    string `db:"grade_level" json:"grade_level"`
	Section       string `db:"section" json:"section"`
	SchoolYear    string `db:"school_year" json:"school_year"`
	StudentName   string `db:"student_name" json:"student_name"`
	TeacherName   string `db:"teacher_name" json:"teacher_name"`
	TeacherEmail  string `db:"teacher_email" json:"teacher_email"`
}

// EnrollmentStatusResponse answers the student "am I enrolled" query.
type EnrollmentStatusResponse struct {
	IsEnrolled bool               `json:"isEnrolled"`
	Classroom  *EnrolledClassroom `json:"classroom"`
}

// EnrolledClassroom is the classroom block of EnrollmentStatusResponse.
type EnrolledClassroom struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	GradeLevel     string    `json:"grade_level"`
	Section        string    `json:"section"`
	SchoolYear     string    `json:"school_year"`
	TeacherName    string    `json:"teacher_name"`
	TeacherEmail   string    `json:"teacher_email"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}
