package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

const resultUpsertQuery = `INSERT INTO assessment_results
        (id, student_id, assessment_id, marks, grade, competency_level, comment, assessed_by_id, school_id, created_at, updated_at)
    VALUES (:id, :student_id, :assessment_id, :marks, :grade, :competency_level, :comment, :assessed_by_id, :school_id, :created_at, :updated_at)
    ON CONFLICT (student_id, assessment_id)
    DO UPDATE SET marks = EXCLUDED.marks,
        grade = EXCLUDED.grade,
        competency_level = EXCLUDED.competency_level,
        comment = EXCLUDED.comment,
        assessed_by_id = EXCLUDED.assessed_by_id,
        updated_at = EXCLUDED.updated_at
    RETURNING id, created_at`

// ResultRepository handles assessment result persistence.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert inserts or overwrites the result for the (student, assessment) pair.
// The stored row id and creation time are scanned back into the model.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.AssessmentResult) error {
	prepare(result)
	rows, err := sqlx.NamedQueryContext(ctx, r.db, resultUpsertQuery, result)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&result.ID, &result.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted result: %w", err)
		}
	}
	return nil
}

// BulkUpsert writes many results inside a single transaction so the batch
// becomes visible atomically.
func (r *ResultRepository) BulkUpsert(ctx context.Context, results []models.AssessmentResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range results {
		prepare(&results[i])
		rows, err := sqlx.NamedQueryContext(ctx, tx, resultUpsertQuery, &results[i])
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert result: %w", err)
		}
		if rows.Next() {
			if err := rows.Scan(&results[i].ID, &results[i].CreatedAt); err != nil {
				rows.Close()
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("scan upserted result: %w", err)
			}
		}
		rows.Close()
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

// FindByID returns one result with student and assessment summaries attached.
func (r *ResultRepository) FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentResultDetail, error) {
	const query = `SELECT ar.id, ar.student_id, ar.assessment_id, ar.marks, ar.grade, ar.competency_level, ar.comment,
            ar.assessed_by_id, ar.school_id, ar.created_at, ar.updated_at,
            st.first_name AS student_first_name, st.last_name AS student_last_name, st.admission_no,
            a.name AS assessment_name, a.type AS assessment_type, a.max_marks
        FROM assessment_results ar
        JOIN students st ON st.id = ar.student_id
        JOIN assessments a ON a.id = ar.assessment_id
        WHERE ar.id = $1 AND ar.school_id = $2`
	var detail models.AssessmentResultDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	return &detail, nil
}

// Update overwrites the mutable columns of an existing result.
func (r *ResultRepository) Update(ctx context.Context, result *models.AssessmentResult) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessment_results
        SET marks = :marks, grade = :grade, competency_level = :competency_level, comment = :comment, updated_at = :updated_at
        WHERE id = :id AND school_id = :school_id`
	res, err := r.db.NamedExecContext(ctx, query, result)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete permanently removes one result row.
func (r *ResultRepository) Delete(ctx context.Context, id, schoolID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assessment_results WHERE id = $1 AND school_id = $2", id, schoolID)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudentAndTerm returns every result this student holds against
// assessments of the given term and class, joined with subject context.
func (r *ResultRepository) ListByStudentAndTerm(ctx context.Context, studentID, classID, termID, schoolID string) ([]models.StudentResultRow, error) {
	const query = `SELECT ar.id AS result_id, a.id AS assessment_id, a.name AS assessment_name, a.type AS assessment_type,
            cs.subject_id, s.name AS subject_name, ar.marks, a.max_marks, ar.grade, ar.competency_level
        FROM assessment_results ar
        JOIN assessments a ON a.id = ar.assessment_id
        JOIN class_subjects cs ON cs.id = a.class_subject_id
        JOIN subjects s ON s.id = cs.subject_id
        WHERE ar.student_id = $1 AND cs.class_id = $2 AND a.term_id = $3 AND ar.school_id = $4
        ORDER BY s.name, a.created_at`
	var results []models.StudentResultRow
	if err := r.db.SelectContext(ctx, &results, query, studentID, classID, termID, schoolID); err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	return results, nil
}

// ListByClassAndTerm returns every result recorded against this class's
// assessments in the term, for class-wide aggregation and ranking.
func (r *ResultRepository) ListByClassAndTerm(ctx context.Context, classID, termID, schoolID string) ([]models.ClassResultRow, error) {
	const query = `SELECT ar.student_id, cs.subject_id, ar.marks, a.max_marks
        FROM assessment_results ar
        JOIN assessments a ON a.id = ar.assessment_id
        JOIN class_subjects cs ON cs.id = a.class_subject_id
        WHERE cs.class_id = $1 AND a.term_id = $2 AND ar.school_id = $3`
	var results []models.ClassResultRow
	if err := r.db.SelectContext(ctx, &results, query, classID, termID, schoolID); err != nil {
		return nil, fmt.Errorf("list class results: %w", err)
	}
	return results, nil
}

func prepare(result *models.AssessmentResult) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
}
