package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/elimu-sms/elimu-api/internal/models"
)

func newResultRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func ptrFloat(v float64) *float64 {
	return &v
}

func TestResultRepositoryUpsertScansStoredIdentity(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	storedAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessment_results")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", storedAt))

	result := &models.AssessmentResult{
		StudentID:    "stu-1",
		AssessmentID: "as-1",
		Marks:        ptrFloat(82),
		AssessedByID: "teacher-1",
		SchoolID:     "sch-1",
	}
	require.NoError(t, repo.Upsert(context.Background(), result))
	require.Equal(t, "existing-id", result.ID)
	require.Equal(t, storedAt, result.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryBulkUpsertSingleTransaction(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessment_results")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("res-1", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessment_results")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("res-2", time.Now()))
	mock.ExpectCommit()

	results := []models.AssessmentResult{
		{StudentID: "stu-1", AssessmentID: "as-1", Marks: ptrFloat(70), SchoolID: "sch-1"},
		{StudentID: "stu-2", AssessmentID: "as-1", Marks: ptrFloat(55), SchoolID: "sch-1"},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), results))
	require.Equal(t, "res-1", results[0].ID)
	require.Equal(t, "res-2", results[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessment_results")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("res-1", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessment_results")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	results := []models.AssessmentResult{
		{StudentID: "stu-1", AssessmentID: "as-1", Marks: ptrFloat(70), SchoolID: "sch-1"},
		{StudentID: "stu-2", AssessmentID: "as-1", Marks: ptrFloat(55), SchoolID: "sch-1"},
	}
	require.Error(t, repo.BulkUpsert(context.Background(), results))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "assessment_id", "marks", "grade", "competency_level", "comment",
		"assessed_by_id", "school_id", "created_at", "updated_at",
		"student_first_name", "student_last_name", "admission_no",
		"assessment_name", "assessment_type", "max_marks",
	}).AddRow("res-1", "stu-1", "as-1", 82.0, "A", nil, nil, "teacher-1", "sch-1", time.Now(), time.Now(),
		"Amina", "Ochieng", "ADM001", "CAT 1", "CAT", 100.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assessment_results ar")).
		WithArgs("res-1", "sch-1").
		WillReturnRows(rows)

	detail, err := repo.FindByID(context.Background(), "res-1", "sch-1")
	require.NoError(t, err)
	require.Equal(t, "res-1", detail.ID)
	require.Equal(t, "ADM001", detail.AdmissionNo)
	require.NotNil(t, detail.Grade)
	require.Equal(t, "A", *detail.Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assessment_results")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.AssessmentResult{ID: "missing", SchoolID: "sch-1"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assessment_results WHERE id = $1 AND school_id = $2")).
		WithArgs("res-1", "sch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "res-1", "sch-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assessment_results WHERE id = $1 AND school_id = $2")).
		WithArgs("missing", "sch-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), "missing", "sch-1"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListByClassAndTerm(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "subject_id", "marks", "max_marks"}).
		AddRow("stu-1", "sub-1", 40.0, 50.0).
		AddRow("stu-2", "sub-1", 35.0, 50.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ar.student_id, cs.subject_id, ar.marks, a.max_marks")).
		WithArgs("cls-1", "term-1", "sch-1").
		WillReturnRows(rows)

	results, err := repo.ListByClassAndTerm(context.Background(), "cls-1", "term-1", "sch-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "sub-1", results[0].SubjectID)
	require.NoError(t, mock.ExpectationsWereMet())
}
