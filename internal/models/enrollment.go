package models

import "time"

// Enrollment is a student's seat in a scheduled course section. It is a weak
// reference into CourseSchedule: removing a schedule removes its enrollments
// first, never the reverse.
type Enrollment struct {
	StudentID  string    `db:"student_id" json:"student_id"`
	ScheduleID int64     `db:"schedule_id" json:"schedule_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// RosterEntry describes one enrolled student in a course roster.
type RosterEntry struct {
	StudentID string `db:"student_id" json:"student_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Semester  int    `db:"semester" json:"semester"`
	Degree    string `db:"degree" json:"degree"`
}
