package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnu-scit/registrar-api/internal/models"
)

func expectScheduleLocks(mock sqlmock.Sqlmock, sched *models.CourseSchedule) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_code FROM courses WHERE course_code = $1 FOR UPDATE")).
		WithArgs(sched.CourseCode).
		WillReturnRows(sqlmock.NewRows([]string{"course_code"}).AddRow(sched.CourseCode))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT faculty_id FROM faculty WHERE faculty_id = $1 FOR UPDATE")).
		WithArgs(sched.FacultyID).
		WillReturnRows(sqlmock.NewRows([]string{"faculty_id"}).AddRow(sched.FacultyID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM classrooms WHERE room_id = $1 FOR UPDATE")).
		WithArgs(sched.RoomID).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(sched.RoomID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM timeslots WHERE timeslot_id = $1")).
		WithArgs(sched.TimeslotID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
}

func TestScheduleRepositoryCreateExclusive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	sched := &models.CourseSchedule{CourseCode: "CS101", FacultyID: 4, TimeslotID: 3, RoomID: "R-201"}

	mock.ExpectBegin()
	expectScheduleLocks(mock, sched)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE course_code = $1")).
		WithArgs("CS101").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE faculty_id = $1 AND timeslot_id = $2")).
		WithArgs(int64(4), int64(3)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE room_id = $1 AND timeslot_id = $2")).
		WithArgs("R-201", int64(3)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course_schedule")).
		WithArgs("CS101", int64(4), int64(3), "R-201", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id"}).AddRow(12))
	mock.ExpectCommit()

	err := repo.CreateExclusive(context.Background(), sched)
	require.NoError(t, err)
	assert.Equal(t, int64(12), sched.ID)
	assert.False(t, sched.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateExclusiveFacultyBusy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	sched := &models.CourseSchedule{CourseCode: "CS101", FacultyID: 4, TimeslotID: 3, RoomID: "R-201"}

	mock.ExpectBegin()
	expectScheduleLocks(mock, sched)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE course_code = $1")).
		WithArgs("CS101").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, course_code, timeslot_id FROM course_schedule WHERE faculty_id = $1 AND timeslot_id = $2")).
		WithArgs(int64(4), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id", "course_code", "timeslot_id"}).AddRow(8, "CS305", 3))
	mock.ExpectRollback()

	err := repo.CreateExclusive(context.Background(), sched)
	var conflict *models.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.ConflictDimensionFaculty, conflict.Conflict.Dimension)
	assert.Equal(t, int64(8), conflict.Conflict.ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateExclusiveCourseMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_code FROM courses WHERE course_code = $1 FOR UPDATE")).
		WithArgs("CS999").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateExclusive(context.Background(), &models.CourseSchedule{CourseCode: "CS999", FacultyID: 4, TimeslotID: 3, RoomID: "R-201"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id FROM course_schedule WHERE schedule_id = $1 FOR UPDATE")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE schedule_id = $1")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 17))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_schedule WHERE schedule_id = $1")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.DeleteCascade(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(17), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteCascadeMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id FROM course_schedule WHERE schedule_id = $1 FOR UPDATE")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListAvailableFaculty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"faculty_id", "name"}).
		AddRow(4, "Sara Malik").
		AddRow(9, "Omar Siddiqui")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE faculty_id NOT IN (SELECT faculty_id FROM course_schedule WHERE timeslot_id = $1)")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	options, err := repo.ListAvailableFaculty(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Sara Malik", options[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
