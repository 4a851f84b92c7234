package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const instructorColumns = `id, name, department, email`

// InstructorRepository reads instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns every instructor ordered by id.
func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors ORDER BY id ASC`
	var items []models.Instructor
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return items, nil
}
