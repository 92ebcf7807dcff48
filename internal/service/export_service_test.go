package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu-sms/elimu-api/internal/models"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
	"github.com/elimu-sms/elimu-api/pkg/export"
)

func ptrString(v string) *string {
	return &v
}

func sampleStudentReport() *models.StudentReport {
	return &models.StudentReport{
		StudentID:    "stu1",
		StudentName:  "Amina Ochieng",
		AdmissionNo:  "ADM001",
		ClassName:    "Grade 6 Blue",
		Curriculum:   models.Curriculum844,
		TermID:       "term1",
		TermName:     "Term 1",
		AcademicYear: "2026",
		Subjects: []models.SubjectReport{
			{SubjectID: "sub1", SubjectName: "Mathematics", TotalMarks: 85, TotalMaxMarks: 100, Average: 85, Grade: ptrString("A"), Rank: 1},
		},
		Overall:     models.OverallPerformance{TotalMarks: 85, TotalMaxMarks: 100, Average: 85, Grade: ptrString("A"), Rank: 1, TotalStudents: 30},
		GeneratedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestExportServiceStudentReportCSV(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter())

	file, err := svc.StudentReport(sampleStudentReport(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "report-card-ADM001-term1.csv", file.Filename)
	content := string(file.Content)
	assert.Contains(t, content, "Student: Amina Ochieng (ADM001)")
	assert.Contains(t, content, "Mathematics,85.00,100.00,85.00,A,1")
	assert.Contains(t, content, "OVERALL")
}

func TestExportServiceStudentReportPDF(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter())

	file, err := svc.StudentReport(sampleStudentReport(), FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportServiceClassPerformanceCSV(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter())
	report := &models.ClassPerformanceReport{
		ClassID:            "cls1",
		ClassName:          "Grade 6 Blue",
		Curriculum:         models.Curriculum844,
		TermID:             "term1",
		TermName:           "Term 1",
		TotalStudents:      30,
		AveragePerformance: 61.5,
		Subjects: []models.SubjectStats{
			{SubjectID: "sub1", SubjectName: "Mathematics", StudentsAssessed: 28, Average: 65, Highest: 92, Lowest: 31, PassRate: 75},
		},
	}

	file, err := svc.ClassPerformance(report, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "class-performance-grade-6-blue-term1.csv", file.Filename)
	content := string(file.Content)
	assert.Contains(t, content, "Class Average: 61.50%")
	assert.Contains(t, content, "Mathematics,28,65.00,92.00,31.00,75.00")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(export.NewCSVExporter(), export.NewPDFExporter())

	_, err := svc.StudentReport(sampleStudentReport(), ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
