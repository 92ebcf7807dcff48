package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// TermRepository reads academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository creates a new term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID returns one term with its academic year name, scoped to the school.
func (r *TermRepository) FindByID(ctx context.Context, id, schoolID string) (*models.Term, error) {
	const query = `SELECT t.id, t.name, t.academic_year_id, ay.name AS academic_year, t.start_date, t.end_date, t.is_current,
            t.school_id, t.created_at, t.updated_at
        FROM terms t
        JOIN academic_years ay ON ay.id = t.academic_year_id
        WHERE t.id = $1 AND t.school_id = $2`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id, schoolID); err != nil {
		return nil, fmt.Errorf("find term: %w", err)
	}
	return &term, nil
}
