package models

// Mark records a student's score for one assignment in one course.
type Mark struct {
	CourseCode     string `db:"course_code" json:"course_code"`
	StudentID      string `db:"student_id" json:"student_id"`
	AssignmentName string `db:"assignment_name" json:"assignment_name"`
	TotalMarks     int    `db:"total_marks" json:"total_marks"`
	ObtainedMarks  int    `db:"obtained_marks" json:"obtained_marks"`
}

// MarkDetail enriches Mark with the course name for student-facing views.
type MarkDetail struct {
	Mark
	CourseName string `db:"course_name" json:"course_name"`
}
