package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// ClassRepository reads class and class-subject records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns one class scoped to the school.
func (r *ClassRepository) FindByID(ctx context.Context, id, schoolID string) (*models.Class, error) {
	const query = `SELECT id, name, curriculum, academic_year_id, school_id, created_at, updated_at
        FROM classes WHERE id = $1 AND school_id = $2`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id, schoolID); err != nil {
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// ListSubjectsByTerm returns the subjects a class offers in a term.
func (r *ClassRepository) ListSubjectsByTerm(ctx context.Context, classID, termID, schoolID string) ([]models.ClassSubjectDetail, error) {
	const query = `SELECT cs.id, cs.class_id, cs.subject_id, cs.term_id, cs.stream_id, cs.school_id, cs.created_at,
            s.name AS subject_name, s.code AS subject_code
        FROM class_subjects cs
        JOIN subjects s ON s.id = cs.subject_id
        WHERE cs.class_id = $1 AND cs.term_id = $2 AND cs.school_id = $3
        ORDER BY s.name`
	var subjects []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, classID, termID, schoolID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}
