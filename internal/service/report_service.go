package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elimu-sms/elimu-api/internal/grading"
	"github.com/elimu-sms/elimu-api/internal/models"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
)

type enrollmentReader interface {
	FindActiveByStudent(ctx context.Context, studentID, schoolID string) (*models.EnrollmentContext, error)
	CountActiveByClass(ctx context.Context, classID, schoolID string) (int, error)
	ListActiveByClass(ctx context.Context, classID, schoolID string) ([]models.ClassMember, error)
}

type termReader interface {
	FindByID(ctx context.Context, id, schoolID string) (*models.Term, error)
}

type classReader interface {
	FindByID(ctx context.Context, id, schoolID string) (*models.Class, error)
	ListSubjectsByTerm(ctx context.Context, classID, termID, schoolID string) ([]models.ClassSubjectDetail, error)
}

type resultReader interface {
	ListByStudentAndTerm(ctx context.Context, studentID, classID, termID, schoolID string) ([]models.StudentResultRow, error)
	ListByClassAndTerm(ctx context.Context, classID, termID, schoolID string) ([]models.ClassResultRow, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportServiceConfig tunes aggregation behaviour.
type ReportServiceConfig struct {
	// DefaultMaxMarks substitutes for assessments without a declared maximum
	// in aggregate percentages. The grading engine never applies it.
	DefaultMaxMarks float64
	// TopPerformers caps the class ranking list.
	TopPerformers int
	// CacheTTL enables class report caching when positive.
	CacheTTL time.Duration
}

// ReportService assembles report cards and class performance views from
// persisted results. All operations are pure reads.
type ReportService struct {
	enrollments enrollmentReader
	terms       termReader
	classes     classReader
	results     resultReader
	cache       reportCache
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         ReportServiceConfig
	now         func() time.Time
}

// NewReportService constructs ReportService. metrics may be nil.
func NewReportService(enrollments enrollmentReader, terms termReader, classes classReader, results resultReader, cache reportCache, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultMaxMarks <= 0 {
		cfg.DefaultMaxMarks = 100
	}
	if cfg.TopPerformers <= 0 {
		cfg.TopPerformers = 10
	}
	return &ReportService{
		enrollments: enrollments,
		terms:       terms,
		classes:     classes,
		results:     results,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StudentReportCard assembles the individual report card for one student and
// term: per-subject breakdown, subject ranks and the overall class position.
func (s *ReportService) StudentReportCard(ctx context.Context, studentID, termID, schoolID string) (*models.StudentReport, error) {
	enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found or not enrolled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	term, err := s.terms.FindByID(ctx, termID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	rows, err := s.results.ListByStudentAndTerm(ctx, studentID, enrollment.ClassID, termID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}
	classRows, err := s.results.ListByClassAndTerm(ctx, enrollment.ClassID, termID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class results")
	}
	totalStudents, err := s.enrollments.CountActiveByClass(ctx, enrollment.ClassID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}

	subjectTotals, overallTotals := s.classTotals(classRows)

	report := &models.StudentReport{
		StudentID:    studentID,
		StudentName:  strings.TrimSpace(enrollment.StudentFirstName + " " + enrollment.StudentLastName),
		AdmissionNo:  enrollment.AdmissionNo,
		ClassID:      enrollment.ClassID,
		ClassName:    enrollment.ClassName,
		Curriculum:   enrollment.Curriculum,
		TermID:       term.ID,
		TermName:     term.Name,
		AcademicYear: enrollment.AcademicYear,
		GeneratedAt:  s.now(),
	}

	var order []string
	grouped := make(map[string]*models.SubjectReport)
	for _, row := range rows {
		subject, ok := grouped[row.SubjectID]
		if !ok {
			subject = &models.SubjectReport{SubjectID: row.SubjectID, SubjectName: row.SubjectName}
			grouped[row.SubjectID] = subject
			order = append(order, row.SubjectID)
		}
		subject.Assessments = append(subject.Assessments, s.assessmentRow(row))
		if row.Marks != nil {
			subject.TotalMarks += *row.Marks
			subject.TotalMaxMarks += s.maxOrDefault(row.MaxMarks)
		}
	}

	for _, subjectID := range order {
		subject := grouped[subjectID]
		if subject.TotalMaxMarks > 0 {
			subject.Average = grading.Percentage(subject.TotalMarks, subject.TotalMaxMarks)
		}
		classification := grading.Classify(subject.Average, enrollment.Curriculum)
		subject.Grade = classification.Grade
		subject.CompetencyLevel = classification.CompetencyLevel
		subject.Rank = grading.Rank(totalsFor(subjectTotals[subjectID], studentID), studentID)

		report.Overall.TotalMarks += subject.TotalMarks
		report.Overall.TotalMaxMarks += subject.TotalMaxMarks
		report.Subjects = append(report.Subjects, *subject)
	}

	if report.Overall.TotalMaxMarks > 0 {
		report.Overall.Average = grading.Percentage(report.Overall.TotalMarks, report.Overall.TotalMaxMarks)
	}
	overall := grading.Classify(report.Overall.Average, enrollment.Curriculum)
	report.Overall.Grade = overall.Grade
	report.Overall.CompetencyLevel = overall.CompetencyLevel
	report.Overall.Rank = grading.Rank(totalsFor(overallTotals, studentID), studentID)
	report.Overall.TotalStudents = totalStudents

	return report, nil
}

// ClassPerformance assembles the class-wide aggregate view for one term:
// per-subject statistics, the curriculum distribution and top performers.
func (s *ReportService) ClassPerformance(ctx context.Context, classID, termID, schoolID string) (*models.ClassPerformanceReport, error) {
	class, err := s.classes.FindByID(ctx, classID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	term, err := s.terms.FindByID(ctx, termID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	cacheKey := fmt.Sprintf("report:class:%s:%s:%s", schoolID, classID, termID)
	if s.cacheEnabled() {
		var cached models.ClassPerformanceReport
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("class report cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	totalStudents, err := s.enrollments.CountActiveByClass(ctx, classID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	subjects, err := s.classes.ListSubjectsByTerm(ctx, classID, termID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	rows, err := s.results.ListByClassAndTerm(ctx, classID, termID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class results")
	}
	roster, err := s.enrollments.ListActiveByClass(ctx, classID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}

	report := &models.ClassPerformanceReport{
		ClassID:       class.ID,
		ClassName:     class.Name,
		Curriculum:    class.Curriculum,
		TermID:        term.ID,
		TermName:      term.Name,
		TotalStudents: totalStudents,
	}

	type subjectAgg struct {
		students    map[string]struct{}
		percentages []float64
	}
	bySubject := make(map[string]*subjectAgg)
	var allPercentages []float64
	for _, row := range rows {
		if row.Marks == nil {
			continue
		}
		agg, ok := bySubject[row.SubjectID]
		if !ok {
			agg = &subjectAgg{students: make(map[string]struct{})}
			bySubject[row.SubjectID] = agg
		}
		pct := grading.Percentage(*row.Marks, s.maxOrDefault(row.MaxMarks))
		agg.students[row.StudentID] = struct{}{}
		agg.percentages = append(agg.percentages, pct)
		allPercentages = append(allPercentages, pct)
	}

	var averageSum float64
	for _, subject := range subjects {
		agg, ok := bySubject[subject.SubjectID]
		if !ok || len(agg.percentages) == 0 {
			continue
		}
		stats := models.SubjectStats{
			SubjectID:        subject.SubjectID,
			SubjectName:      subject.SubjectName,
			StudentsAssessed: len(agg.students),
			Highest:          agg.percentages[0],
			Lowest:           agg.percentages[0],
		}
		var sum float64
		var passed int
		for _, pct := range agg.percentages {
			sum += pct
			if pct > stats.Highest {
				stats.Highest = pct
			}
			if pct < stats.Lowest {
				stats.Lowest = pct
			}
			if pct >= grading.PassMark {
				passed++
			}
		}
		stats.Average = sum / float64(len(agg.percentages))
		stats.PassRate = float64(passed) / float64(len(agg.percentages)) * 100
		averageSum += stats.Average
		report.Subjects = append(report.Subjects, stats)
	}
	if len(report.Subjects) > 0 {
		report.AveragePerformance = averageSum / float64(len(report.Subjects))
	}

	switch class.Curriculum {
	case models.CurriculumCBC:
		distribution := make(map[models.CompetencyLevel]int)
		for _, pct := range allPercentages {
			distribution[grading.CompetencyBand(pct)]++
		}
		report.CompetencyDistribution = distribution
	default:
		distribution := make(map[string]int)
		for _, pct := range allPercentages {
			distribution[grading.LetterGrade(pct)]++
		}
		report.GradeDistribution = distribution
	}

	report.TopPerformers = s.topPerformers(rows, roster)

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("class report cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return report, nil
}

// topPerformers ranks actively enrolled students by their overall average
// across every assessment in the class/term scope.
func (s *ReportService) topPerformers(rows []models.ClassResultRow, roster []models.ClassMember) []models.Performer {
	type studentAgg struct {
		marks    float64
		maxMarks float64
	}
	byStudent := make(map[string]*studentAgg, len(roster))
	for _, row := range rows {
		if row.Marks == nil {
			continue
		}
		agg, ok := byStudent[row.StudentID]
		if !ok {
			agg = &studentAgg{}
			byStudent[row.StudentID] = agg
		}
		agg.marks += *row.Marks
		agg.maxMarks += s.maxOrDefault(row.MaxMarks)
	}

	totals := make([]grading.StudentTotal, 0, len(roster))
	members := make(map[string]models.ClassMember, len(roster))
	for _, member := range roster {
		members[member.StudentID] = member
		average := 0.0
		if agg, ok := byStudent[member.StudentID]; ok && agg.maxMarks > 0 {
			average = grading.Percentage(agg.marks, agg.maxMarks)
		}
		totals = append(totals, grading.StudentTotal{StudentID: member.StudentID, Total: average})
	}
	grading.SortByTotalDesc(totals)

	limit := s.cfg.TopPerformers
	if limit > len(totals) {
		limit = len(totals)
	}
	performers := make([]models.Performer, 0, limit)
	for _, total := range totals[:limit] {
		member := members[total.StudentID]
		performers = append(performers, models.Performer{
			StudentID:   total.StudentID,
			StudentName: strings.TrimSpace(member.FirstName + " " + member.LastName),
			AdmissionNo: member.AdmissionNo,
			Average:     total.Total,
		})
	}
	return performers
}

// classTotals sums each student's marks per subject and overall, the inputs
// to the count-strictly-greater rank computation.
func (s *ReportService) classTotals(rows []models.ClassResultRow) (map[string]map[string]float64, map[string]float64) {
	subjectTotals := make(map[string]map[string]float64)
	overallTotals := make(map[string]float64)
	for _, row := range rows {
		if row.Marks == nil {
			continue
		}
		perStudent, ok := subjectTotals[row.SubjectID]
		if !ok {
			perStudent = make(map[string]float64)
			subjectTotals[row.SubjectID] = perStudent
		}
		perStudent[row.StudentID] += *row.Marks
		overallTotals[row.StudentID] += *row.Marks
	}
	return subjectTotals, overallTotals
}

func (s *ReportService) assessmentRow(row models.StudentResultRow) models.AssessmentRow {
	out := models.AssessmentRow{
		AssessmentID: row.AssessmentID,
		Name:         row.AssessmentName,
		Type:         row.AssessmentType,
		Marks:        row.Marks,
		MaxMarks:     row.MaxMarks,
		Grade:        row.Grade,
	}
	if row.CompetencyLevel != nil {
		level := models.CompetencyLevel(*row.CompetencyLevel)
		out.CompetencyLevel = &level
	}
	if row.Marks != nil {
		pct := grading.Percentage(*row.Marks, s.maxOrDefault(row.MaxMarks))
		out.Percentage = &pct
	}
	return out
}

func (s *ReportService) maxOrDefault(maxMarks *float64) float64 {
	if maxMarks == nil || *maxMarks <= 0 {
		return s.cfg.DefaultMaxMarks
	}
	return *maxMarks
}

func (s *ReportService) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheTTL > 0
}

// totalsFor converts a per-student total map into rank input, making sure the
// target student appears even when they hold no marks yet.
func totalsFor(byStudent map[string]float64, targetID string) []grading.StudentTotal {
	totals := make([]grading.StudentTotal, 0, len(byStudent)+1)
	seen := false
	for studentID, total := range byStudent {
		if studentID == targetID {
			seen = true
		}
		totals = append(totals, grading.StudentTotal{StudentID: studentID, Total: total})
	}
	if !seen {
		totals = append(totals, grading.StudentTotal{StudentID: targetID})
	}
	return totals
}
