package models

import "time"

// AssessmentType tags the category of a graded event.
type AssessmentType string

const (
	AssessmentTypeCAT  AssessmentType = "CAT"
	AssessmentTypeExam AssessmentType = "EXAM"
)

// CompetencyLevel is the CBC expectation band derived from a percentage.
type CompetencyLevel string

// Competency bands in descending order.
const (
	CompetencyExceeding   CompetencyLevel = "EXCEEDING_EXPECTATIONS"
	CompetencyMeeting     CompetencyLevel = "MEETING_EXPECTATIONS"
	CompetencyApproaching CompetencyLevel = "APPROACHING_EXPECTATIONS"
	CompetencyBelow       CompetencyLevel = "BELOW_EXPECTATIONS"
)

// Assessment identifies one graded event for a class subject. A nil MaxMarks
// means the assessment is not graded against a numeric maximum.
type Assessment struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Type           AssessmentType `db:"type" json:"type"`
	MaxMarks       *float64       `db:"max_marks" json:"max_marks,omitempty"`
	TermID         string         `db:"term_id" json:"term_id"`
	ClassSubjectID string         `db:"class_subject_id" json:"class_subject_id"`
	SchoolID       string         `db:"school_id" json:"school_id"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// AssessmentDetail carries the class/subject/curriculum context the grading
// engine needs to classify marks.
type AssessmentDetail struct {
	Assessment
	ClassID     string     `db:"class_id" json:"class_id"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	SubjectName string     `db:"subject_name" json:"subject_name"`
	Curriculum  Curriculum `db:"curriculum" json:"curriculum"`
}

// AssessmentResult is the graded outcome for one (student, assessment) pair.
// At most one row exists per pair; writes are upserts on that key.
type AssessmentResult struct {
	ID              string           `db:"id" json:"id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	AssessmentID    string           `db:"assessment_id" json:"assessment_id"`
	Marks           *float64         `db:"marks" json:"marks,omitempty"`
	Grade           *string          `db:"grade" json:"grade,omitempty"`
	CompetencyLevel *CompetencyLevel `db:"competency_level" json:"competency_level,omitempty"`
	Comment         *string          `db:"comment" json:"comment,omitempty"`
	AssessedByID    string           `db:"assessed_by_id" json:"assessed_by_id"`
	SchoolID        string           `db:"school_id" json:"school_id"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// AssessmentResultDetail attaches student and assessment summaries for display.
type AssessmentResultDetail struct {
	AssessmentResult
	StudentFirstName string         `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string         `db:"student_last_name" json:"student_last_name"`
	AdmissionNo      string         `db:"admission_no" json:"admission_no"`
	AssessmentName   string         `db:"assessment_name" json:"assessment_name"`
	AssessmentType   AssessmentType `db:"assessment_type" json:"assessment_type"`
	MaxMarks         *float64       `db:"max_marks" json:"max_marks,omitempty"`
}

// StudentResultRow is one persisted result joined with its assessment and
// subject context, as read back for a student's report card.
type StudentResultRow struct {
	ResultID        string         `db:"result_id" json:"result_id"`
	AssessmentID    string         `db:"assessment_id" json:"assessment_id"`
	AssessmentName  string         `db:"assessment_name" json:"assessment_name"`
	AssessmentType  AssessmentType `db:"assessment_type" json:"assessment_type"`
	SubjectID       string         `db:"subject_id" json:"subject_id"`
	SubjectName     string         `db:"subject_name" json:"subject_name"`
	Marks           *float64       `db:"marks" json:"marks,omitempty"`
	MaxMarks        *float64       `db:"max_marks" json:"max_marks,omitempty"`
	Grade           *string        `db:"grade" json:"grade,omitempty"`
	CompetencyLevel *string        `db:"competency_level" json:"competency_level,omitempty"`
}

// ClassResultRow is the minimal row shape used for class-wide aggregation
// and ranking scans.
type ClassResultRow struct {
	StudentID string   `db:"student_id" json:"student_id"`
	SubjectID string   `db:"subject_id" json:"subject_id"`
	Marks     *float64 `db:"marks" json:"marks,omitempty"`
	MaxMarks  *float64 `db:"max_marks" json:"max_marks,omitempty"`
}
