package models

import "time"

// Faculty represents a faculty member.
type Faculty struct {
	ID            int64     `db:"faculty_id" json:"faculty_id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	Degree        string    `db:"degree" json:"degree"`
	Qualification string    `db:"qualification" json:"qualification"`
	ExpertiseSub  string    `db:"expertise_sub" json:"expertise_sub"`
	Designation   string    `db:"designation" json:"designation"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// FullName returns the display name used in rosters and timetables.
func (f Faculty) FullName() string {
	return f.FirstName + " " + f.LastName
}

// FacultyOption is a (id, name) pair used when listing available faculty.
type FacultyOption struct {
	ID   int64  `db:"faculty_id" json:"faculty_id"`
	Name string `db:"name" json:"name"`
}
