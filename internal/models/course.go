package models

// Course represents a course offering in the catalog.
type Course struct {
	Code          string `db:"course_code" json:"course_code"`
	Name          string `db:"course_name" json:"course_name"`
	Credits       int    `db:"credits" json:"credits"`
	Semester      int    `db:"semester" json:"semester"`
	Department    string `db:"department" json:"department"`
	MaxStudents   int    `db:"max_students" json:"max_students"`
	Prerequisites string `db:"prerequisites" json:"prerequisites"`
}

// CourseOption is a (code, name) pair used when listing unscheduled courses.
type CourseOption struct {
	Code string `db:"course_code" json:"course_code"`
	Name string `db:"course_name" json:"course_name"`
}
