package models

import (
	"strings"
	"time"
)

// Student represents a learner registered with a school.
type Student struct {
	ID          string    `db:"id" json:"id"`
	AdmissionNo string    `db:"admission_no" json:"admission_no"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Gender      string    `db:"gender" json:"gender"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the student's name parts for display.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
