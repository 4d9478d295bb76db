package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres constraint names enforced by the schema. Services translate
// violations of these into conflict errors instead of re-checking state.
const (
	ConstraintOneActiveEnrollment = "enrollments_one_active_per_student"
	ConstraintOnePrimaryGuardian  = "guardian_links_one_primary_per_student"
	ConstraintGuardianPair        = "guardian_links_pair_key"
	ConstraintUniqueWord          = "words_word_key"
	ConstraintUniqueEmail         = "users_email_key"
	ConstraintClassroomSection    = "classrooms_teacher_year_section_key"
)

// IsUniqueViolation reports whether err is a unique constraint violation. If
// constraint is non-empty, the violated constraint must also match.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
