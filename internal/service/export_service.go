package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elimu-sms/elimu-api/internal/models"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
	"github.com/elimu-sms/elimu-api/pkg/export"
)

// ExportFormat names a downloadable report rendering.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders assembled reports into downloadable documents.
type ExportService struct {
	csv datasetRenderer
	pdf datasetRenderer
}

// NewExportService constructs ExportService.
func NewExportService(csv, pdf datasetRenderer) *ExportService {
	return &ExportService{csv: csv, pdf: pdf}
}

// ExportFile is rendered bytes plus the response metadata for download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// StudentReport renders a report card in the requested format.
func (s *ExportService) StudentReport(report *models.StudentReport, format ExportFormat) (*ExportFile, error) {
	dataset := studentReportDataset(report)
	name := fmt.Sprintf("report-card-%s-%s", report.AdmissionNo, report.TermID)
	return s.render(dataset, format, name)
}

// ClassPerformance renders a class performance report in the requested format.
func (s *ExportService) ClassPerformance(report *models.ClassPerformanceReport, format ExportFormat) (*ExportFile, error) {
	dataset := classPerformanceDataset(report)
	name := fmt.Sprintf("class-performance-%s-%s", slugify(report.ClassName), report.TermID)
	return s.render(dataset, format, name)
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, name string) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: name + ".csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: name + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func studentReportDataset(report *models.StudentReport) export.Dataset {
	dataset := export.Dataset{
		Title: "Student Report Card",
		Lines: []string{
			fmt.Sprintf("Student: %s (%s)", report.StudentName, report.AdmissionNo),
			fmt.Sprintf("Class: %s (%s)", report.ClassName, report.Curriculum),
			fmt.Sprintf("Term: %s %s", report.TermName, report.AcademicYear),
			fmt.Sprintf("Position: %d of %d", report.Overall.Rank, report.Overall.TotalStudents),
		},
		Headers: []string{"Subject", "Total Marks", "Out Of", "Average %", "Result", "Rank"},
	}
	for _, subject := range report.Subjects {
		dataset.Rows = append(dataset.Rows, []string{
			subject.SubjectName,
			formatFloat(subject.TotalMarks),
			formatFloat(subject.TotalMaxMarks),
			formatFloat(subject.Average),
			classificationLabel(subject.Grade, subject.CompetencyLevel),
			strconv.Itoa(subject.Rank),
		})
	}
	dataset.Rows = append(dataset.Rows, []string{
		"OVERALL",
		formatFloat(report.Overall.TotalMarks),
		formatFloat(report.Overall.TotalMaxMarks),
		formatFloat(report.Overall.Average),
		classificationLabel(report.Overall.Grade, report.Overall.CompetencyLevel),
		strconv.Itoa(report.Overall.Rank),
	})
	return dataset
}

func classPerformanceDataset(report *models.ClassPerformanceReport) export.Dataset {
	dataset := export.Dataset{
		Title: "Class Performance Report",
		Lines: []string{
			fmt.Sprintf("Class: %s (%s)", report.ClassName, report.Curriculum),
			fmt.Sprintf("Term: %s", report.TermName),
			fmt.Sprintf("Students: %d", report.TotalStudents),
			fmt.Sprintf("Class Average: %s%%", formatFloat(report.AveragePerformance)),
		},
		Headers: []string{"Subject", "Assessed", "Average %", "Highest %", "Lowest %", "Pass Rate %"},
	}
	for _, subject := range report.Subjects {
		dataset.Rows = append(dataset.Rows, []string{
			subject.SubjectName,
			strconv.Itoa(subject.StudentsAssessed),
			formatFloat(subject.Average),
			formatFloat(subject.Highest),
			formatFloat(subject.Lowest),
			formatFloat(subject.PassRate),
		})
	}
	return dataset
}

func classificationLabel(grade *string, level *models.CompetencyLevel) string {
	if grade != nil {
		return *grade
	}
	if level != nil {
		return string(*level)
	}
	return "-"
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
