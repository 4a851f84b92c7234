package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const timetableColumns = `id, name, semester, is_active, created_at`

// TimetableRepository persists timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the timetable and fills in its generated id and timestamp.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	const query = `INSERT INTO timetables (name, semester, is_active) VALUES ($1, $2, $3) RETURNING id, created_at`
	row := r.exec(exec).QueryRowxContext(ctx, query, timetable.Name, timetable.Semester, timetable.IsActive)
	if err := row.Scan(&timetable.ID, &timetable.CreatedAt); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// FindByID loads a timetable by id.
func (r *TimetableRepository) FindByID(ctx context.Context, id int64) (*models.Timetable, error) {
	const query = `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// List returns timetables, newest first.
func (r *TimetableRepository) List(ctx context.Context) ([]models.Timetable, error) {
	const query = `SELECT ` + timetableColumns + ` FROM timetables ORDER BY created_at DESC, id DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// FindActive returns the active timetable or sql.ErrNoRows.
func (r *TimetableRepository) FindActive(ctx context.Context) (*models.Timetable, error) {
	const query = `SELECT ` + timetableColumns + ` FROM timetables WHERE is_active = TRUE ORDER BY id DESC LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Activate marks one timetable active and clears the flag everywhere else.
// Callers should pass a transaction so the switch is atomic.
func (r *TimetableRepository) Activate(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `UPDATE timetables SET is_active = FALSE WHERE is_active = TRUE AND id <> $1`, id); err != nil {
		return fmt.Errorf("deactivate timetables: %w", err)
	}
	result, err := target.ExecContext(ctx, `UPDATE timetables SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable; its classes cascade.
func (r *TimetableRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
