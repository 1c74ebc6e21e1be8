package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type mockScheduleRepo struct {
	schedule   *models.CourseSchedule
	details    []models.ScheduleDetail
	courses    []models.CourseOption
	createErr  error
	deleteErr  error
	removed    int64
	nextID     int64
	findErr    error
	listErr    error
	deletedID  int64
	createdArg *models.CourseSchedule
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id int64) (*models.CourseSchedule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.schedule, nil
}

func (m *mockScheduleRepo) ListDetailed(ctx context.Context) ([]models.ScheduleDetail, error) {
	return m.details, m.listErr
}

func (m *mockScheduleRepo) ListDetailedByFaculty(ctx context.Context, facultyID int64) ([]models.ScheduleDetail, error) {
	return m.details, m.listErr
}

func (m *mockScheduleRepo) ListCoursesByFaculty(ctx context.Context, facultyID int64) ([]models.CourseOption, error) {
	return m.courses, m.listErr
}

func (m *mockScheduleRepo) CreateExclusive(ctx context.Context, sched *models.CourseSchedule) error {
	if m.createErr != nil {
		return m.createErr
	}
	sched.ID = m.nextID
	m.createdArg = sched
	return nil
}

func (m *mockScheduleRepo) DeleteCascade(ctx context.Context, scheduleID int64) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletedID = scheduleID
	return m.removed, nil
}

type mockCourseReader struct {
	course *models.Course
	err    error
}

func (m *mockCourseReader) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.course, nil
}

type mockFacultyReader struct {
	faculty *models.Faculty
	err     error
}

func (m *mockFacultyReader) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.faculty, nil
}

type mockClassroomReader struct {
	room *models.Classroom
	err  error
}

func (m *mockClassroomReader) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.room, nil
}

type mockTimeslotReader struct {
	slot *models.Timeslot
	err  error
}

func (m *mockTimeslotReader) FindByID(ctx context.Context, id int64) (*models.Timeslot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.slot, nil
}

type mockCatalogInvalidator struct {
	invalidated int
}

func (m *mockCatalogInvalidator) InvalidateCatalog(ctx context.Context) {
	m.invalidated++
}

type scheduleServiceFixture struct {
	repo      *mockScheduleRepo
	courses   *mockCourseReader
	faculty   *mockFacultyReader
	rooms     *mockClassroomReader
	timeslots *mockTimeslotReader
	catalog   *mockCatalogInvalidator
	svc       *ScheduleService
}

func newScheduleFixture() *scheduleServiceFixture {
	f := &scheduleServiceFixture{
		repo:      &mockScheduleRepo{nextID: 12, removed: 17},
		courses:   &mockCourseReader{course: &models.Course{Code: "CS101"}},
		faculty:   &mockFacultyReader{faculty: &models.Faculty{ID: 3}},
		rooms:     &mockClassroomReader{room: &models.Classroom{ID: "R-201"}},
		timeslots: &mockTimeslotReader{slot: &models.Timeslot{ID: 5}},
		catalog:   &mockCatalogInvalidator{},
	}
	f.svc = NewScheduleService(f.repo, f.courses, f.faculty, f.rooms, f.timeslots, f.catalog, nil, validator.New(), zap.NewNop())
	return f
}

func validAssignRequest() AssignScheduleRequest {
	return AssignScheduleRequest{CourseCode: "CS101", FacultyID: 3, TimeslotID: 5, RoomID: "R-201"}
}

func TestScheduleServiceAssign(t *testing.T) {
	f := newScheduleFixture()

	sched, err := f.svc.Assign(context.Background(), validAssignRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(12), sched.ID)
	assert.Equal(t, "CS101", sched.CourseCode)
	assert.Equal(t, 1, f.catalog.invalidated, "catalog must be invalidated after assignment")
}

func TestScheduleServiceAssignConflict(t *testing.T) {
	f := newScheduleFixture()
	f.repo.createErr = &models.ScheduleConflictError{
		Message: "faculty is already scheduled in this timeslot",
		Conflict: models.ScheduleConflict{
			Dimension:  models.ConflictDimensionFaculty,
			ScheduleID: 8,
		},
	}

	_, err := f.svc.Assign(context.Background(), validAssignRequest())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Zero(t, f.catalog.invalidated)
}

func TestScheduleServiceAssignMissingReference(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *scheduleServiceFixture)
	}{
		{"course", func(f *scheduleServiceFixture) { f.courses.err = sql.ErrNoRows }},
		{"faculty", func(f *scheduleServiceFixture) { f.faculty.err = sql.ErrNoRows }},
		{"timeslot", func(f *scheduleServiceFixture) { f.timeslots.err = sql.ErrNoRows }},
		{"classroom", func(f *scheduleServiceFixture) { f.rooms.err = sql.ErrNoRows }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newScheduleFixture()
			tc.setup(f)

			_, err := f.svc.Assign(context.Background(), validAssignRequest())
			assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
		})
	}
}

func TestScheduleServiceAssignValidation(t *testing.T) {
	f := newScheduleFixture()

	_, err := f.svc.Assign(context.Background(), AssignScheduleRequest{CourseCode: "CS101"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestScheduleServiceRemove(t *testing.T) {
	f := newScheduleFixture()

	result, err := f.svc.Remove(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.ScheduleID)
	assert.Equal(t, int64(17), result.RemovedEnrollments)
	assert.Equal(t, 1, f.catalog.invalidated)
}

func TestScheduleServiceRemoveMissing(t *testing.T) {
	f := newScheduleFixture()
	f.repo.deleteErr = sql.ErrNoRows

	_, err := f.svc.Remove(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestScheduleServiceGetMissing(t *testing.T) {
	f := newScheduleFixture()
	f.repo.findErr = sql.ErrNoRows

	_, err := f.svc.Get(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestScheduleServiceFacultyTimetable(t *testing.T) {
	f := newScheduleFixture()
	f.repo.details = []models.ScheduleDetail{{ScheduleID: 12, CourseCode: "CS101"}}

	timetable, err := f.svc.FacultyTimetable(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, timetable, 1)
	assert.Equal(t, "CS101", timetable[0].CourseCode)
}

func TestScheduleServiceFacultyTimetableMissingFaculty(t *testing.T) {
	f := newScheduleFixture()
	f.faculty.err = sql.ErrNoRows

	_, err := f.svc.FacultyTimetable(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
