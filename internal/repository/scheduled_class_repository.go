package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ScheduledClassRepository stores the class meetings of timetables.
type ScheduledClassRepository struct {
	db *sqlx.DB
}

// NewScheduledClassRepository constructs the repository.
func NewScheduledClassRepository(db *sqlx.DB) *ScheduledClassRepository {
	return &ScheduledClassRepository{db: db}
}

func (r *ScheduledClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreate inserts the classes in order and writes the generated ids back.
func (r *ScheduledClassRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, classes []models.ScheduledClass) error {
	if len(classes) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO scheduled_classes (course_id, instructor_id, classroom_id, day, start_time, end_time, timetable_id, section)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	for i := range classes {
		class := &classes[i]
		row := target.QueryRowxContext(ctx, query,
			class.CourseID, class.InstructorID, class.ClassroomID,
			class.Day, class.StartTime, class.EndTime,
			class.TimetableID, class.Section,
		)
		if err := row.Scan(&class.ID); err != nil {
			return fmt.Errorf("insert scheduled class %d of %d: %w", i+1, len(classes), err)
		}
	}
	return nil
}

// ListByTimetable returns the raw class rows of a timetable.
func (r *ScheduledClassRepository) ListByTimetable(ctx context.Context, timetableID int64) ([]models.ScheduledClass, error) {
	const query = `SELECT id, course_id, instructor_id, classroom_id, day, start_time, end_time, timetable_id, section
FROM scheduled_classes WHERE timetable_id = $1 ORDER BY id ASC`
	var classes []models.ScheduledClass
	if err := r.db.SelectContext(ctx, &classes, query, timetableID); err != nil {
		return nil, fmt.Errorf("list scheduled classes: %w", err)
	}
	return classes, nil
}

// DeleteByTimetable clears every class of a timetable and reports how many were removed.
func (r *ScheduledClassRepository) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID int64) (int64, error) {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM scheduled_classes WHERE timetable_id = $1`, timetableID)
	if err != nil {
		return 0, fmt.Errorf("delete scheduled classes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete scheduled classes rows affected: %w", err)
	}
	return affected, nil
}

// ListDetailedByTimetable joins each class with its course, instructor and classroom.
func (r *ScheduledClassRepository) ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.DetailedClass, error) {
	const query = `
SELECT sc.id, sc.course_id, sc.instructor_id, sc.classroom_id, sc.day, sc.start_time, sc.end_time, sc.timetable_id, sc.section,
       c.id AS "course.id", c.code AS "course.code", c.name AS "course.name", c.department AS "course.department",
       c.instructor_id AS "course.instructor_id", c.credits AS "course.credits", c.capacity AS "course.capacity", c.is_lab AS "course.is_lab",
       i.id AS "instructor.id", i.name AS "instructor.name", i.department AS "instructor.department", i.email AS "instructor.email",
       r.id AS "classroom.id", r.name AS "classroom.name", r.building AS "classroom.building", r.capacity AS "classroom.capacity",
       r.has_projector AS "classroom.has_projector", r.has_computers AS "classroom.has_computers", r.is_lab AS "classroom.is_lab"
FROM scheduled_classes sc
JOIN courses c ON c.id = sc.course_id
JOIN instructors i ON i.id = sc.instructor_id
JOIN classrooms r ON r.id = sc.classroom_id
WHERE sc.timetable_id = $1
ORDER BY sc.id ASC`
	var classes []models.DetailedClass
	if err := r.db.SelectContext(ctx, &classes, query, timetableID); err != nil {
		return nil, fmt.Errorf("list detailed classes: %w", err)
	}
	return classes, nil
}
