package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ConstraintRepository reads scheduling constraints.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository constructs the repository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// List returns all constraint rows in insertion order, which keeps
// unavailability lists stable between runs.
func (r *ConstraintRepository) List(ctx context.Context) ([]models.Constraint, error) {
	const query = `SELECT id, type, entity_id, day, time_slot FROM constraints ORDER BY id ASC`
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, query); err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}
	return constraints, nil
}

// ListByType returns constraint rows of a single kind.
func (r *ConstraintRepository) ListByType(ctx context.Context, constraintType models.ConstraintType) ([]models.Constraint, error) {
	const query = `SELECT id, type, entity_id, day, time_slot FROM constraints WHERE type = $1 ORDER BY id ASC`
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, query, constraintType); err != nil {
		return nil, fmt.Errorf("list %s constraints: %w", constraintType, err)
	}
	return constraints, nil
}
