package models

import "time"

// EnrollmentStatus represents the lifecycle of a class enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusLeft        EnrollmentStatus = "LEFT"
)

// Enrollment captures a student's registration to a class.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	SchoolID  string           `db:"school_id" json:"school_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
	LeftAt    *time.Time       `db:"left_at" json:"left_at,omitempty"`
}

// EnrollmentContext enriches an active enrollment with the class and year
// context a report card is generated against.
type EnrollmentContext struct {
	Enrollment
	StudentFirstName string     `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string     `db:"student_last_name" json:"student_last_name"`
	AdmissionNo      string     `db:"admission_no" json:"admission_no"`
	ClassName        string     `db:"class_name" json:"class_name"`
	Curriculum       Curriculum `db:"curriculum" json:"curriculum"`
	AcademicYear     string     `db:"academic_year" json:"academic_year"`
}

// ClassMember is one actively enrolled student in a class roster.
type ClassMember struct {
	StudentID   string `db:"student_id" json:"student_id"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	AdmissionNo string `db:"admission_no" json:"admission_no"`
}
