package models

import "time"

// Student represents a registered student.
type Student struct {
	ID           string    `db:"student_id" json:"student_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	Degree       string    `db:"degree" json:"degree"`
	Semester     int       `db:"semester" json:"semester"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Degree    string
	Semester  int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
