package models

import "time"

// Term models one academic term within a school year.
type Term struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	IsCurrent      bool      `db:"is_current" json:"is_current"`
	SchoolID       string    `db:"school_id" json:"school_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
