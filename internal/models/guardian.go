package models

import "time"

// RelationshipType labels the kinship between a guardian and a student.
type RelationshipType string

// Known kinship labels.
const (
	RelationshipFather      RelationshipType = "padre"
	RelationshipMother      RelationshipType = "madre"
	RelationshipGuardian    RelationshipType = "representante"
	RelationshipTutor       RelationshipType = "tutor"
	RelationshipGrandfather RelationshipType = "abuelo"
	RelationshipGrandmother RelationshipType = "abuela"
	RelationshipUncle       RelationshipType = "tio"
	RelationshipAunt        RelationshipType = "tia"
	RelationshipOther       RelationshipType = "otro"
)

// Valid reports whether the label is one of the known kinship values.
func (r RelationshipType) Valid() bool {
	switch r {
	case RelationshipFather, RelationshipMother, RelationshipGuardian,
		RelationshipTutor, RelationshipGrandfather, RelationshipGrandmother,
		RelationshipUncle, RelationshipAunt, RelationshipOther:
		return true
	}
	return false
}

// MaxGuardiansPerStudent caps the guardian links a single student may hold.
const MaxGuardiansPerStudent = 2

// GuardianLink ties a guardian to a student with relationship metadata and
// permission flags. At most one link per student carries is_primary.
type GuardianLink struct {
	ID                      string           `db:"id" json:"id"`
	GuardianID              string           `db:"guardian_id" json:"guardian_id"`
	StudentID               string           `db:"student_id" json:"student_id"`
	RelationshipType        RelationshipType `db:"relationship_type" json:"relationship_type"`
	IsPrimary               bool             `db:"is_primary" json:"is_primary"`
	CanViewProgress         bool             `db:"can_view_progress" json:"can_view_progress"`
	CanReceiveNotifications bool             `db:"can_receive_notifications" json:"can_receive_notifications"`
	EmergencyContact        bool             `db:"emergency_contact" json:"emergency_contact"`
	Phone                   *string          `db:"phone" json:"phone,omitempty"`
	CreatedAt               time.Time        `db:"created_at" json:"created_at"`
}

// GuardianDetail joins the link with the guardian's user record.
type GuardianDetail struct {
	ID                      string           `db:"id" json:"id"`
	FullName                string           `db:"full_name" json:"name"`
	Email                   string           `db:"email" json:"email"`
	RelationshipType        RelationshipType `db:"relationship_type" json:"relationship_type"`
	IsPrimary               bool             `db:"is_primary" json:"is_primary"`
	CanViewProgress         bool             `db:"can_view_progress" json:"can_view_progress"`
	CanReceiveNotifications bool             `db:"can_receive_notifications" json:"can_receive_notifications"`
	EmergencyContact        bool             `db:"emergency_contact" json:"emergency_contact"`
	Phone                   *string          `db:"phone" json:"phone,omitempty"`
	RelationshipDate        time.Time        `db:"relationship_date" json:"relationship_date"`
}

// ChildDetail is a guardian's view of one linked student, including the
// student's current classroom when one is active.
type ChildDetail struct {
	ID               string           `db:"id" json:"id"`
	StudentID        string           `db:"student_id" json:"student_id"`
	FullName         string           `db:"full_name" json:"name"`
	Email            string           `db:"email" json:"email"`
	RelationshipType RelationshipType `db:"relationship_type" json:"relationship_type"`
	IsPrimary        bool             `db:"is_primary" json:"is_primary"`
	CanViewProgress  bool             `db:"can_view_progress" json:"can_view_progress"`
	ClassroomID      *string          `db:"classroom_id" json:"classroom_id,omitempty"`
	ClassroomName    *string          `db:"classroom_name" json:"classroom_name,omitempty"`
	TeacherName      *string          `db:"teacher_name" json:"teacher_name,omitempty"`
}

// GuardianLinkUpdate carries partial-update fields; nil leaves a column unchanged.
type GuardianLinkUpdate struct {
	RelationshipType        *RelationshipType
	IsPrimary               *bool
	Phone                   *string
	CanViewProgress         *bool
	CanReceiveNotifications *bool
	EmergencyContact        *bool
}
