package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/elimu-sms/elimu-api/internal/grading"
	"github.com/elimu-sms/elimu-api/internal/models"
	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
)

type assessmentReader interface {
	FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentDetail, error)
}

type resultStore interface {
	Upsert(ctx context.Context, result *models.AssessmentResult) error
	BulkUpsert(ctx context.Context, results []models.AssessmentResult) error
	FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentResultDetail, error)
	Update(ctx context.Context, result *models.AssessmentResult) error
	Delete(ctx context.Context, id, schoolID string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id, schoolID string) (*models.Student, error)
	FindByIDs(ctx context.Context, ids []string, schoolID string) (map[string]models.Student, error)
	FindByAdmissionNos(ctx context.Context, admissionNos []string, schoolID string) (map[string]models.Student, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// SubmitResultRequest represents a single mark entry payload.
type SubmitResultRequest struct {
	StudentID       string                  `json:"student_id" validate:"required"`
	AssessmentID    string                  `json:"assessment_id" validate:"required"`
	Marks           *float64                `json:"marks" validate:"omitempty,gte=0"`
	Grade           *string                 `json:"grade"`
	CompetencyLevel *models.CompetencyLevel `json:"competency_level"`
	Comment         *string                 `json:"comment"`
}

// BulkEntry is one student's marks within a bulk payload.
type BulkEntry struct {
	StudentID string  `json:"student_id" validate:"required"`
	Marks     float64 `json:"marks" validate:"gte=0"`
	Comment   *string `json:"comment"`
}

// BulkSubmitRequest carries a whole class's marks for one assessment.
type BulkSubmitRequest struct {
	AssessmentID string      `json:"assessment_id" validate:"required"`
	Entries      []BulkEntry `json:"entries" validate:"required,min=1,dive"`
}

// CSVRow is one parsed data row of a marks upload. Row numbering in error
// output accounts for the header line.
type CSVRow struct {
	AdmissionNo string `json:"admission_no"`
	Marks       string `json:"marks"`
	Comment     string `json:"comment"`
}

// EntryFailure captures one rejected batch entry. Row and AdmissionNo are
// set for CSV uploads, StudentID for JSON bulk entries.
type EntryFailure struct {
	StudentID   string `json:"student_id,omitempty"`
	Row         int    `json:"row,omitempty"`
	AdmissionNo string `json:"admission_no,omitempty"`
	Error       string `json:"error"`
}

// BatchOutcome summarises a bulk or CSV submission.
type BatchOutcome struct {
	Successful int                       `json:"successful"`
	Failed     int                       `json:"failed"`
	Results    []models.AssessmentResult `json:"results"`
	Failures   []EntryFailure            `json:"failures,omitempty"`
}

// UpdateResultRequest patches an existing result. Only supplied fields change.
type UpdateResultRequest struct {
	Marks           *float64                `json:"marks" validate:"omitempty,gte=0"`
	Grade           *string                 `json:"grade"`
	CompetencyLevel *models.CompetencyLevel `json:"competency_level"`
	Comment         *string                 `json:"comment"`
}

// ResultService validates and persists mark entries, deriving the
// curriculum-specific classification for each.
type ResultService struct {
	assessments assessmentReader
	results     resultStore
	students    studentReader
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewResultService constructs ResultService. cache may be nil when no report
// caching is configured.
func NewResultService(assessments assessmentReader, results resultStore, students studentReader, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		assessments: assessments,
		results:     results,
		students:    students,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Submit records one student's result against an assessment, overwriting any
// previous result for the same (student, assessment) pair.
func (s *ResultService) Submit(ctx context.Context, req SubmitResultRequest, userID, schoolID string) (*models.AssessmentResultDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	if req.Marks == nil && req.Grade == nil && req.CompetencyLevel == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "one of marks, grade or competency level is required")
	}
	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID, schoolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := checkMaxMarks(req.Marks, assessment.MaxMarks); err != nil {
		return nil, err
	}

	result := models.AssessmentResult{
		StudentID:       req.StudentID,
		AssessmentID:    assessment.ID,
		Marks:           req.Marks,
		Grade:           req.Grade,
		CompetencyLevel: req.CompetencyLevel,
		Comment:         req.Comment,
		AssessedByID:    userID,
		SchoolID:        schoolID,
	}
	applyClassification(&result, assessment)

	if err := s.results.Upsert(ctx, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save result")
	}
	s.invalidateReports(ctx, schoolID)
	detail, err := s.results.FindByID(ctx, result.ID, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load saved result")
	}
	return detail, nil
}

// BulkSubmit grades a list of students against one assessment. Entries that
// fail validation are reported and skipped; the rest are persisted together
// in one transaction.
func (s *ResultService) BulkSubmit(ctx context.Context, req BulkSubmitRequest, userID, schoolID string) (*BatchOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	studentIDs := make([]string, 0, len(req.Entries))
	for _, entry := range req.Entries {
		studentIDs = append(studentIDs, entry.StudentID)
	}
	students, err := s.students.FindByIDs(ctx, studentIDs, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	outcome := &BatchOutcome{}
	toPersist := make([]models.AssessmentResult, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if _, ok := students[entry.StudentID]; !ok {
			outcome.Failures = append(outcome.Failures, EntryFailure{StudentID: entry.StudentID, Error: "student not found"})
			continue
		}
		marks := entry.Marks
		if err := checkMaxMarks(&marks, assessment.MaxMarks); err != nil {
			outcome.Failures = append(outcome.Failures, EntryFailure{StudentID: entry.StudentID, Error: err.Error()})
			continue
		}
		result := models.AssessmentResult{
			StudentID:    entry.StudentID,
			AssessmentID: assessment.ID,
			Marks:        &marks,
			Comment:      entry.Comment,
			AssessedByID: userID,
			SchoolID:     schoolID,
		}
		applyClassification(&result, assessment)
		toPersist = append(toPersist, result)
	}

	if err := s.results.BulkUpsert(ctx, toPersist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save results")
	}
	if len(toPersist) > 0 {
		s.invalidateReports(ctx, schoolID)
	}
	outcome.Results = toPersist
	outcome.Successful = len(toPersist)
	outcome.Failed = len(outcome.Failures)
	s.logger.Info("bulk grade entry",
		zap.String("assessment_id", assessment.ID),
		zap.Int("successful", outcome.Successful),
		zap.Int("failed", outcome.Failed),
	)
	return outcome, nil
}

// CSVSubmit grades parsed CSV rows against one assessment. Failures are keyed
// by the CSV line number, counting the header as line 1.
func (s *ResultService) CSVSubmit(ctx context.Context, rows []CSVRow, assessmentID, userID, schoolID string) (*BatchOutcome, error) {
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no data rows in upload")
	}
	assessment, err := s.assessments.FindByID(ctx, assessmentID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	admissionNos := make([]string, 0, len(rows))
	for _, row := range rows {
		admissionNos = append(admissionNos, strings.TrimSpace(row.AdmissionNo))
	}
	students, err := s.students.FindByAdmissionNos(ctx, admissionNos, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	outcome := &BatchOutcome{}
	toPersist := make([]models.AssessmentResult, 0, len(rows))
	for i, row := range rows {
		lineNo := i + 2 // data rows start after the header line
		admissionNo := strings.TrimSpace(row.AdmissionNo)
		student, ok := students[admissionNo]
		if !ok {
			outcome.Failures = append(outcome.Failures, EntryFailure{Row: lineNo, AdmissionNo: admissionNo, Error: "student not found"})
			continue
		}
		marks, err := strconv.ParseFloat(strings.TrimSpace(row.Marks), 64)
		if err != nil || marks < 0 {
			outcome.Failures = append(outcome.Failures, EntryFailure{Row: lineNo, AdmissionNo: admissionNo, Error: fmt.Sprintf("invalid marks %q", row.Marks)})
			continue
		}
		if err := checkMaxMarks(&marks, assessment.MaxMarks); err != nil {
			outcome.Failures = append(outcome.Failures, EntryFailure{Row: lineNo, AdmissionNo: admissionNo, Error: err.Error()})
			continue
		}
		result := models.AssessmentResult{
			StudentID:    student.ID,
			AssessmentID: assessment.ID,
			Marks:        &marks,
			AssessedByID: userID,
			SchoolID:     schoolID,
		}
		if comment := strings.TrimSpace(row.Comment); comment != "" {
			result.Comment = &comment
		}
		applyClassification(&result, assessment)
		toPersist = append(toPersist, result)
	}

	if err := s.results.BulkUpsert(ctx, toPersist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save results")
	}
	if len(toPersist) > 0 {
		s.invalidateReports(ctx, schoolID)
	}
	outcome.Results = toPersist
	outcome.Successful = len(toPersist)
	outcome.Failed = len(outcome.Failures)
	s.logger.Info("csv grade upload",
		zap.String("assessment_id", assessment.ID),
		zap.Int("successful", outcome.Successful),
		zap.Int("failed", outcome.Failed),
	)
	return outcome, nil
}

// Update patches supplied fields of an existing result, re-validating marks
// against the assessment's maximum and re-deriving the classification.
func (s *ResultService) Update(ctx context.Context, id string, req UpdateResultRequest, schoolID string) (*models.AssessmentResultDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	existing, err := s.results.FindByID(ctx, id, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	assessment, err := s.assessments.FindByID(ctx, existing.AssessmentID, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	result := existing.AssessmentResult
	if req.Marks != nil {
		if err := checkMaxMarks(req.Marks, assessment.MaxMarks); err != nil {
			return nil, err
		}
		result.Marks = req.Marks
	}
	if req.Grade != nil {
		result.Grade = req.Grade
	}
	if req.CompetencyLevel != nil {
		result.CompetencyLevel = req.CompetencyLevel
	}
	if req.Comment != nil {
		result.Comment = req.Comment
	}
	applyClassification(&result, assessment)

	if err := s.results.Update(ctx, &result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
	}
	s.invalidateReports(ctx, schoolID)
	detail, err := s.results.FindByID(ctx, id, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load updated result")
	}
	return detail, nil
}

// Delete permanently removes one result.
func (s *ResultService) Delete(ctx context.Context, id, schoolID string) error {
	if err := s.results.Delete(ctx, id, schoolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	s.invalidateReports(ctx, schoolID)
	return nil
}

// invalidateReports drops cached class reports for the school after any
// result write. A failed invalidation is logged, not surfaced; the cache
// TTL bounds how long the stale view can live.
func (s *ResultService) invalidateReports(ctx context.Context, schoolID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("report:class:%s:*", schoolID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("school_id", schoolID), zap.Error(err))
	}
}

// applyClassification derives the curriculum representation when both marks
// and a declared maximum are available, overriding any supplied grade or
// competency level. Without a maximum the supplied values stand.
func applyClassification(result *models.AssessmentResult, assessment *models.AssessmentDetail) {
	if result.Marks == nil || assessment.MaxMarks == nil {
		return
	}
	percentage := grading.Percentage(*result.Marks, *assessment.MaxMarks)
	classification := grading.Classify(percentage, assessment.Curriculum)
	if classification.Grade != nil {
		result.Grade = classification.Grade
		result.CompetencyLevel = nil
	}
	if classification.CompetencyLevel != nil {
		result.CompetencyLevel = classification.CompetencyLevel
		result.Grade = nil
	}
}

func checkMaxMarks(marks, maxMarks *float64) error {
	if marks == nil || maxMarks == nil {
		return nil
	}
	if *marks > *maxMarks {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks %.2f exceed maximum %.2f", *marks, *maxMarks))
	}
	return nil
}
