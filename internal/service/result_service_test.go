package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"

	"github.com/elimu-sms/elimu-api/internal/models"
)

type mockAssessmentReader struct {
	assessments map[string]*models.AssessmentDetail
}

func (m *mockAssessmentReader) FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentDetail, error) {
	if a, ok := m.assessments[id]; ok && a.SchoolID == schoolID {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

type mockResultStore struct {
	stored map[string]models.AssessmentResult
	nextID int
}

func (m *mockResultStore) key(studentID, assessmentID string) string {
	return studentID + "|" + assessmentID
}

func (m *mockResultStore) Upsert(ctx context.Context, result *models.AssessmentResult) error {
	if m.stored == nil {
		m.stored = make(map[string]models.AssessmentResult)
	}
	key := m.key(result.StudentID, result.AssessmentID)
	if existing, ok := m.stored[key]; ok {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
	} else {
		m.nextID++
		result.ID = fmt.Sprintf("res-%d", m.nextID)
	}
	m.stored[key] = *result
	return nil
}

func (m *mockResultStore) BulkUpsert(ctx context.Context, results []models.AssessmentResult) error {
	for i := range results {
		if err := m.Upsert(ctx, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockResultStore) FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentResultDetail, error) {
	for _, result := range m.stored {
		if result.ID == id && result.SchoolID == schoolID {
			return &models.AssessmentResultDetail{AssessmentResult: result}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultStore) Update(ctx context.Context, result *models.AssessmentResult) error {
	for key, existing := range m.stored {
		if existing.ID == result.ID && existing.SchoolID == result.SchoolID {
			m.stored[key] = *result
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockResultStore) Delete(ctx context.Context, id, schoolID string) error {
	for key, existing := range m.stored {
		if existing.ID == id && existing.SchoolID == schoolID {
			delete(m.stored, key)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id, schoolID string) (*models.Student, error) {
	if s, ok := m.students[id]; ok && s.SchoolID == schoolID {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentReader) FindByIDs(ctx context.Context, ids []string, schoolID string) (map[string]models.Student, error) {
	found := make(map[string]models.Student)
	for _, id := range ids {
		if s, ok := m.students[id]; ok && s.SchoolID == schoolID {
			found[id] = s
		}
	}
	return found, nil
}

func (m *mockStudentReader) FindByAdmissionNos(ctx context.Context, admissionNos []string, schoolID string) (map[string]models.Student, error) {
	byAdmission := make(map[string]models.Student)
	for _, s := range m.students {
		if s.SchoolID == schoolID {
			byAdmission[s.AdmissionNo] = s
		}
	}
	found := make(map[string]models.Student)
	for _, no := range admissionNos {
		if s, ok := byAdmission[no]; ok {
			found[no] = s
		}
	}
	return found, nil
}

func ptrFloat(v float64) *float64 {
	return &v
}

func catAssessment(curriculum models.Curriculum) *models.AssessmentDetail {
	return &models.AssessmentDetail{
		Assessment: models.Assessment{
			ID:       "as1",
			Name:     "CAT 1",
			Type:     models.AssessmentTypeCAT,
			MaxMarks: ptrFloat(100),
			TermID:   "term1",
			SchoolID: "sch1",
		},
		ClassID:     "cls1",
		SubjectID:   "sub1",
		SubjectName: "Mathematics",
		Curriculum:  curriculum,
	}
}

func resultFixture(curriculum models.Curriculum) (*ResultService, *mockResultStore) {
	store := &mockResultStore{}
	assessments := &mockAssessmentReader{assessments: map[string]*models.AssessmentDetail{"as1": catAssessment(curriculum)}}
	students := &mockStudentReader{students: map[string]models.Student{
		"stu1": {ID: "stu1", AdmissionNo: "ADM001", SchoolID: "sch1"},
		"stu2": {ID: "stu2", AdmissionNo: "ADM002", SchoolID: "sch1"},
		"stu3": {ID: "stu3", AdmissionNo: "ADM003", SchoolID: "sch1"},
	}}
	svc := NewResultService(assessments, store, students, nil, validator.New(), zap.NewNop())
	return svc, store
}

func TestResultServiceSubmitDerivesLetterGrade(t *testing.T) {
	svc, store := resultFixture(models.Curriculum844)

	detail, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(82)}, "teacher1", "sch1")
	require.NoError(t, err)
	require.NotNil(t, detail.Grade)
	assert.Equal(t, "A", *detail.Grade)
	assert.Nil(t, detail.CompetencyLevel)
	assert.Len(t, store.stored, 1)
}

func TestResultServiceSubmitDerivesCompetencyLevel(t *testing.T) {
	svc, _ := resultFixture(models.CurriculumCBC)

	detail, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(72)}, "teacher1", "sch1")
	require.NoError(t, err)
	require.NotNil(t, detail.CompetencyLevel)
	assert.Equal(t, models.CompetencyMeeting, *detail.CompetencyLevel)
	assert.Nil(t, detail.Grade)
}

func TestResultServiceSubmitIdempotent(t *testing.T) {
	svc, store := resultFixture(models.Curriculum844)

	first, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(55)}, "teacher1", "sch1")
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(75)}, "teacher1", "sch1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.stored, 1)
	require.NotNil(t, second.Marks)
	assert.Equal(t, 75.0, *second.Marks)
	require.NotNil(t, second.Grade)
	assert.Equal(t, "B", *second.Grade)
}

func TestResultServiceSubmitRejectsMarksAboveMaximum(t *testing.T) {
	svc, store := resultFixture(models.Curriculum844)

	_, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(105)}, "teacher1", "sch1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.stored)
}

func TestResultServiceSubmitRequiresSomeValue(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	_, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1"}, "teacher1", "sch1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResultServiceSubmitUnknownAssessment(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	_, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "missing", Marks: ptrFloat(50)}, "teacher1", "sch1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResultServiceSubmitScopedBySchool(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	_, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(50)}, "teacher1", "other-school")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResultServiceBulkSubmitIsolatesFailures(t *testing.T) {
	svc, store := resultFixture(models.Curriculum844)

	outcome, err := svc.BulkSubmit(context.Background(), BulkSubmitRequest{
		AssessmentID: "as1",
		Entries: []BulkEntry{
			{StudentID: "stu1", Marks: 90},
			{StudentID: "stu2", Marks: 120},
			{StudentID: "ghost", Marks: 70},
			{StudentID: "stu3", Marks: 45},
		},
	}, "teacher1", "sch1")
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Successful)
	assert.Equal(t, 2, outcome.Failed)
	assert.Len(t, store.stored, 2)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "stu2", outcome.Failures[0].StudentID)
	assert.Contains(t, outcome.Failures[0].Error, "exceed maximum")
	assert.Equal(t, "ghost", outcome.Failures[1].StudentID)
	assert.Equal(t, "student not found", outcome.Failures[1].Error)
}

func TestResultServiceCSVSubmitRowNumbering(t *testing.T) {
	svc, store := resultFixture(models.CurriculumCBC)

	outcome, err := svc.CSVSubmit(context.Background(), []CSVRow{
		{AdmissionNo: "ADM001", Marks: "85"},
		{AdmissionNo: "ADM002", Marks: "abc"},
		{AdmissionNo: "ADM999", Marks: "60"},
		{AdmissionNo: "ADM003", Marks: "38", Comment: "needs support"},
	}, "as1", "teacher1", "sch1")
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Successful)
	assert.Equal(t, 2, outcome.Failed)
	assert.Len(t, store.stored, 2)

	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, 3, outcome.Failures[0].Row)
	assert.Contains(t, outcome.Failures[0].Error, "invalid marks")
	assert.Equal(t, 4, outcome.Failures[1].Row)
	assert.Equal(t, "student not found", outcome.Failures[1].Error)

	top := store.stored["stu1|as1"]
	require.NotNil(t, top.CompetencyLevel)
	assert.Equal(t, models.CompetencyExceeding, *top.CompetencyLevel)
	low := store.stored["stu3|as1"]
	require.NotNil(t, low.CompetencyLevel)
	assert.Equal(t, models.CompetencyBelow, *low.CompetencyLevel)
	require.NotNil(t, low.Comment)
	assert.Equal(t, "needs support", *low.Comment)
}

func TestResultServiceUpdateReclassifies(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	created, err := svc.Submit(context.Background(), SubmitResultRequest{StudentID: "stu1", AssessmentID: "as1", Marks: ptrFloat(82)}, "teacher1", "sch1")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateResultRequest{Marks: ptrFloat(45)}, "sch1")
	require.NoError(t, err)
	require.NotNil(t, updated.Grade)
	assert.Equal(t, "E", *updated.Grade)
	require.NotNil(t, updated.Marks)
	assert.Equal(t, 45.0, *updated.Marks)
}

func TestResultServiceUpdateNotFound(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	_, err := svc.Update(context.Background(), "missing", UpdateResultRequest{Marks: ptrFloat(50)}, "sch1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResultServiceDeleteNotFound(t *testing.T) {
	svc, _ := resultFixture(models.Curriculum844)

	err := svc.Delete(context.Background(), "missing", "sch1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
