package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// EnrollmentRepository reads class enrollment state.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindActiveByStudent returns the student's active enrollment with the class
// and academic-year context reports are generated against.
func (r *EnrollmentRepository) FindActiveByStudent(ctx context.Context, studentID, schoolID string) (*models.EnrollmentContext, error) {
	const query = `SELECT e.id, e.student_id, e.class_id, e.school_id, e.status, e.joined_at, e.left_at,
            st.first_name AS student_first_name, st.last_name AS student_last_name, st.admission_no,
            c.name AS class_name, c.curriculum, ay.name AS academic_year
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        JOIN classes c ON c.id = e.class_id
        JOIN academic_years ay ON ay.id = c.academic_year_id
        WHERE e.student_id = $1 AND e.school_id = $2 AND e.status = $3`
	var enrollment models.EnrollmentContext
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, schoolID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("find active enrollment: %w", err)
	}
	return &enrollment, nil
}

// CountActiveByClass counts actively enrolled students in a class.
func (r *EnrollmentRepository) CountActiveByClass(ctx context.Context, classID, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND school_id = $2 AND status = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, schoolID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// ListActiveByClass returns the active roster of a class with identity fields
// needed for ranking output.
func (r *EnrollmentRepository) ListActiveByClass(ctx context.Context, classID, schoolID string) ([]models.ClassMember, error) {
	const query = `SELECT e.student_id, st.first_name, st.last_name, st.admission_no
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        WHERE e.class_id = $1 AND e.school_id = $2 AND e.status = $3
        ORDER BY st.admission_no`
	var members []models.ClassMember
	if err := r.db.SelectContext(ctx, &members, query, classID, schoolID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return members, nil
}
