package models

import "time"

// AssessmentRow is one graded event inside a report card subject entry.
type AssessmentRow struct {
	AssessmentID    string           `json:"assessment_id"`
	Name            string           `json:"name"`
	Type            AssessmentType   `json:"type"`
	Marks           *float64         `json:"marks,omitempty"`
	MaxMarks        *float64         `json:"max_marks,omitempty"`
	Percentage      *float64         `json:"percentage,omitempty"`
	Grade           *string          `json:"grade,omitempty"`
	CompetencyLevel *CompetencyLevel `json:"competency_level,omitempty"`
}

// SubjectReport aggregates one subject on a student report card.
type SubjectReport struct {
	SubjectID       string           `json:"subject_id"`
	SubjectName     string           `json:"subject_name"`
	Assessments     []AssessmentRow  `json:"assessments"`
	TotalMarks      float64          `json:"total_marks"`
	TotalMaxMarks   float64          `json:"total_max_marks"`
	Average         float64          `json:"average"`
	Grade           *string          `json:"grade,omitempty"`
	CompetencyLevel *CompetencyLevel `json:"competency_level,omitempty"`
	Rank            int              `json:"rank"`
}

// OverallPerformance summarises a student's whole-term standing.
type OverallPerformance struct {
	TotalMarks      float64          `json:"total_marks"`
	TotalMaxMarks   float64          `json:"total_max_marks"`
	Average         float64          `json:"average"`
	Grade           *string          `json:"grade,omitempty"`
	CompetencyLevel *CompetencyLevel `json:"competency_level,omitempty"`
	Rank            int              `json:"rank"`
	TotalStudents   int              `json:"total_students"`
}

// StudentReport is the individual report card view.
type StudentReport struct {
	StudentID    string             `json:"student_id"`
	StudentName  string             `json:"student_name"`
	AdmissionNo  string             `json:"admission_no"`
	ClassID      string             `json:"class_id"`
	ClassName    string             `json:"class_name"`
	Curriculum   Curriculum         `json:"curriculum"`
	TermID       string             `json:"term_id"`
	TermName     string             `json:"term_name"`
	AcademicYear string             `json:"academic_year"`
	Subjects     []SubjectReport    `json:"subjects"`
	Overall      OverallPerformance `json:"overall"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// SubjectStats holds class-wide statistics for one subject.
type SubjectStats struct {
	SubjectID        string  `json:"subject_id"`
	SubjectName      string  `json:"subject_name"`
	StudentsAssessed int     `json:"students_assessed"`
	Average          float64 `json:"average"`
	Highest          float64 `json:"highest"`
	Lowest           float64 `json:"lowest"`
	PassRate         float64 `json:"pass_rate"`
}

// Performer is one entry in the class top-performers ranking.
type Performer struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	AdmissionNo string  `json:"admission_no"`
	Average     float64 `json:"average"`
}

// ClassPerformanceReport is the class-wide aggregate view. Exactly one of
// GradeDistribution/CompetencyDistribution is populated, per curriculum.
type ClassPerformanceReport struct {
	ClassID                string                  `json:"class_id"`
	ClassName              string                  `json:"class_name"`
	Curriculum             Curriculum              `json:"curriculum"`
	TermID                 string                  `json:"term_id"`
	TermName               string                  `json:"term_name"`
	TotalStudents          int                     `json:"total_students"`
	Subjects               []SubjectStats          `json:"subjects"`
	GradeDistribution      map[string]int          `json:"grade_distribution,omitempty"`
	CompetencyDistribution map[CompetencyLevel]int `json:"competency_distribution,omitempty"`
	AveragePerformance     float64                 `json:"average_performance"`
	TopPerformers          []Performer             `json:"top_performers"`
}
