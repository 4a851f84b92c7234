package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	created := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timetables (name, semester, is_active) VALUES ($1, $2, $3) RETURNING id, created_at")).
		WithArgs("Fall draft", "Fall 2024", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, created))

	timetable := &models.Timetable{Name: "Fall draft", Semester: "Fall 2024"}
	require.NoError(t, repo.Create(context.Background(), nil, timetable))
	assert.Equal(t, int64(12), timetable.ID)
	assert.Equal(t, created, timetable.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, semester, is_active, created_at FROM timetables WHERE is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "semester", "is_active", "created_at"}).
			AddRow(4, "Spring", "Spring 2024", true, time.Now()))

	timetable, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), timetable.ID)
	assert.True(t, timetable.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivateInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET is_active = FALSE WHERE is_active = TRUE AND id <> $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET is_active = TRUE WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Activate(context.Background(), tx, 7))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("UPDATE timetables SET is_active = FALSE").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE timetables SET is_active = TRUE").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Activate(context.Background(), nil, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), nil, 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), nil, 4), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
