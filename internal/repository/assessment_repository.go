package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// AssessmentRepository reads assessment definitions with their grading context.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// FindByID returns one assessment joined with its class subject, subject name
// and class curriculum, scoped to the school.
func (r *AssessmentRepository) FindByID(ctx context.Context, id, schoolID string) (*models.AssessmentDetail, error) {
	const query = `SELECT a.id, a.name, a.type, a.max_marks, a.term_id, a.class_subject_id, a.school_id, a.created_at, a.updated_at,
            cs.class_id, cs.subject_id, s.name AS subject_name, c.curriculum
        FROM assessments a
        JOIN class_subjects cs ON cs.id = a.class_subject_id
        JOIN classes c ON c.id = cs.class_id
        JOIN subjects s ON s.id = cs.subject_id
        WHERE a.id = $1 AND a.school_id = $2`
	var detail models.AssessmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &detail, nil
}
