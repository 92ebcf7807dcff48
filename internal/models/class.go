package models

import "time"

// Curriculum identifies the grading scheme a class follows.
type Curriculum string

const (
	// CurriculumCBC is the competency-based track graded in expectation bands.
	CurriculumCBC Curriculum = "CBC"
	// Curriculum844 is the numeric track graded with letter grades.
	Curriculum844 Curriculum = "8-4-4"
)

// Class represents one class (form/grade cohort) within a school.
type Class struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Curriculum     Curriculum `db:"curriculum" json:"curriculum"`
	AcademicYearID string     `db:"academic_year_id" json:"academic_year_id"`
	SchoolID       string     `db:"school_id" json:"school_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassSubject maps a subject offered to a class in a term. StreamID is set
// when the subject is offered to one stream rather than the whole class.
type ClassSubject struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TermID    string    `db:"term_id" json:"term_id"`
	StreamID  *string   `db:"stream_id" json:"stream_id,omitempty"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassSubjectDetail enriches ClassSubject with subject naming for reports.
type ClassSubjectDetail struct {
	ClassSubject
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}
