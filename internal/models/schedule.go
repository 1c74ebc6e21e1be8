package models

import "time"

// CourseSchedule binds one course to one faculty member, one timeslot and
// one room. At most one schedule may exist per (faculty, timeslot), per
// (room, timeslot) and per course; the store enforces all three.
type CourseSchedule struct {
	ID         int64     `db:"schedule_id" json:"schedule_id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	FacultyID  int64     `db:"faculty_id" json:"faculty_id"`
	TimeslotID int64     `db:"timeslot_id" json:"timeslot_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScheduleDetail joins a schedule with its course, faculty, timeslot and room.
type ScheduleDetail struct {
	ScheduleID  int64  `db:"schedule_id" json:"schedule_id"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	Department  string `db:"department" json:"department"`
	Semester    int    `db:"semester" json:"semester"`
	FacultyID   int64  `db:"faculty_id" json:"faculty_id"`
	FacultyName string `db:"faculty_name" json:"faculty_name"`
	TimeslotID  int64  `db:"timeslot_id" json:"timeslot_id"`
	DayOfWeek   string `db:"day_of_week" json:"day_of_week"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
	RoomID      string `db:"room_id" json:"room_id"`
	RoomNumber  string `db:"room_number" json:"room_number"`
	Building    string `db:"building" json:"building"`
}

// Conflict dimensions reported when an assignment loses re-validation.
const (
	ConflictDimensionCourse  = "course"
	ConflictDimensionFaculty = "faculty"
	ConflictDimensionRoom    = "room"
)

// ScheduleConflict describes the existing binding that blocks an assignment.
type ScheduleConflict struct {
	Dimension  string `json:"dimension"`
	ScheduleID int64  `json:"schedule_id"`
	CourseCode string `json:"course_code"`
	TimeslotID int64  `json:"timeslot_id"`
}

// ScheduleConflictError is returned when an assignment collides with an
// existing schedule on any exclusive dimension.
type ScheduleConflictError struct {
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
