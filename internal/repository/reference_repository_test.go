package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "department", "instructor_id", "credits", "capacity", "is_lab"}).
		AddRow(1, "CSE101", "Programming", "CSE", 3, 4, 60, nil).
		AddRow(2, "PHY151", "Physics Lab", "PHY", 4, 2, 30, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, department, instructor_id, credits, capacity, is_lab FROM courses ORDER BY id ASC")).
		WillReturnRows(rows)

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Nil(t, courses[0].Lab)
	require.NotNil(t, courses[1].Lab)
	assert.True(t, *courses[1].Lab)
	assert.Equal(t, 3, courses[0].SlotsNeeded())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInstructorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, department, email FROM instructors ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "department", "email"}).
			AddRow(3, "Asha Rao", "CSE", "asha.rao@university.edu"))

	instructors, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Instructor{{ID: 3, Name: "Asha Rao", Department: "CSE", Email: "asha.rao@university.edu"}}, instructors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, building, capacity, has_projector, has_computers, is_lab FROM classrooms ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "building", "capacity", "has_projector", "has_computers", "is_lab"}).
			AddRow(10, "Lab 1-A", "Lab 1", 40, true, true, nil))

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.True(t, rooms[0].IsLab())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, entity_id, day, time_slot FROM constraints ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "entity_id", "day", "time_slot"}).
			AddRow(1, "instructor_unavailable", 3, "Monday", "9:00-10:00").
			AddRow(2, "course_conflict", 1, "Monday", "2"))

	constraints, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, constraints, 2)
	other, err := constraints[1].ConflictingCourseID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), other)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryListByType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM constraints WHERE type = $1")).
		WithArgs(models.ConstraintRoomUnavailable).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "entity_id", "day", "time_slot"}).
			AddRow(5, "room_unavailable", 10, "Friday", "17:00-18:00"))

	constraints, err := repo.ListByType(context.Background(), models.ConstraintRoomUnavailable)
	require.NoError(t, err)
	assert.Len(t, constraints, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
