package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns one student scoped to the school.
func (r *StudentRepository) FindByID(ctx context.Context, id, schoolID string) (*models.Student, error) {
	const query = `SELECT id, admission_no, first_name, last_name, gender, school_id, active, created_at, updated_at
        FROM students WHERE id = $1 AND school_id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, schoolID); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByIDs resolves student ids to records in one lookup, keyed by id.
// Unknown ids are simply absent from the map.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string, schoolID string) (map[string]models.Student, error) {
	result := make(map[string]models.Student, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	args[len(args)-1] = schoolID
	query := fmt.Sprintf(`SELECT id, admission_no, first_name, last_name, gender, school_id, active, created_at, updated_at
        FROM students WHERE id IN (%s) AND school_id = $%d`, strings.Join(placeholders, ","), len(args))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find students by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var student models.Student
		if err := rows.StructScan(&student); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		result[student.ID] = student
	}
	return result, nil
}

// FindByAdmissionNos resolves admission numbers to students in one lookup,
// keyed by admission number. Unknown numbers are simply absent from the map.
func (r *StudentRepository) FindByAdmissionNos(ctx context.Context, admissionNos []string, schoolID string) (map[string]models.Student, error) {
	result := make(map[string]models.Student, len(admissionNos))
	if len(admissionNos) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(admissionNos))
	args := make([]interface{}, len(admissionNos)+1)
	for i, no := range admissionNos {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = no
	}
	args[len(args)-1] = schoolID
	query := fmt.Sprintf(`SELECT id, admission_no, first_name, last_name, gender, school_id, active, created_at, updated_at
        FROM students WHERE admission_no IN (%s) AND school_id = $%d`, strings.Join(placeholders, ","), len(args))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find students by admission no: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var student models.Student
		if err := rows.StructScan(&student); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		result[student.AdmissionNo] = student
	}
	return result, nil
}
