package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type mockAvailabilityScheduleReader struct {
	faculty []models.FacultyOption
	courses []models.CourseOption
	err     error
}

func (m *mockAvailabilityScheduleReader) ListAvailableFaculty(ctx context.Context, timeslotID int64) ([]models.FacultyOption, error) {
	return m.faculty, m.err
}

func (m *mockAvailabilityScheduleReader) ListCoursesByFaculty(ctx context.Context, facultyID int64) ([]models.CourseOption, error) {
	return m.courses, m.err
}

type mockAvailabilityRoomReader struct {
	rooms []models.ClassroomOption
	err   error
}

func (m *mockAvailabilityRoomReader) ListAvailable(ctx context.Context, timeslotID int64) ([]models.ClassroomOption, error) {
	return m.rooms, m.err
}

type mockAvailabilityCourseReader struct {
	courses []models.CourseOption
	err     error
}

func (m *mockAvailabilityCourseReader) ListUnscheduled(ctx context.Context) ([]models.CourseOption, error) {
	return m.courses, m.err
}

type mockAvailabilityTimeslotReader struct {
	slot    *models.Timeslot
	slots   []models.Timeslot
	findErr error
}

func (m *mockAvailabilityTimeslotReader) FindByID(ctx context.Context, id int64) (*models.Timeslot, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.slot, nil
}

func (m *mockAvailabilityTimeslotReader) List(ctx context.Context) ([]models.Timeslot, error) {
	return m.slots, nil
}

func newAvailabilityFixture() (*AvailabilityService, *mockAvailabilityScheduleReader, *mockAvailabilityRoomReader, *mockAvailabilityCourseReader, *mockAvailabilityTimeslotReader) {
	schedules := &mockAvailabilityScheduleReader{}
	rooms := &mockAvailabilityRoomReader{}
	courses := &mockAvailabilityCourseReader{}
	timeslots := &mockAvailabilityTimeslotReader{slot: &models.Timeslot{ID: 5, DayOfWeek: "Monday"}}
	svc := NewAvailabilityService(schedules, rooms, courses, timeslots, zap.NewNop())
	return svc, schedules, rooms, courses, timeslots
}

func TestAvailabilityServiceAvailableFaculty(t *testing.T) {
	svc, schedules, _, _, _ := newAvailabilityFixture()
	schedules.faculty = []models.FacultyOption{{ID: 3, Name: "Sana Malik"}}

	options, err := svc.AvailableFaculty(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, int64(3), options[0].ID)
}

func TestAvailabilityServiceAvailableFacultyEmpty(t *testing.T) {
	svc, _, _, _, _ := newAvailabilityFixture()

	options, err := svc.AvailableFaculty(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestAvailabilityServiceUnknownTimeslot(t *testing.T) {
	svc, _, _, _, timeslots := newAvailabilityFixture()
	timeslots.findErr = sql.ErrNoRows

	_, err := svc.AvailableFaculty(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	_, err = svc.AvailableRooms(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestAvailabilityServiceAvailableRooms(t *testing.T) {
	svc, _, rooms, _, _ := newAvailabilityFixture()
	rooms.rooms = []models.ClassroomOption{{ID: "R-201", Label: "201 Science Block"}}

	options, err := svc.AvailableRooms(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "R-201", options[0].ID)
}

func TestAvailabilityServiceUnscheduledCourses(t *testing.T) {
	svc, _, _, courses, _ := newAvailabilityFixture()
	courses.courses = []models.CourseOption{{Code: "CS101", Name: "Intro to Programming"}}

	options, err := svc.UnscheduledCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "CS101", options[0].Code)
}
