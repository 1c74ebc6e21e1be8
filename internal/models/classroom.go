package models

// Classroom represents a physical room that can host a scheduled course.
type Classroom struct {
	ID         string `db:"room_id" json:"room_id"`
	Building   string `db:"building" json:"building"`
	RoomNumber string `db:"room_number" json:"room_number"`
	Capacity   int    `db:"capacity" json:"capacity"`
	RoomType   string `db:"room_type" json:"room_type"`
}

// ClassroomOption is a (id, label) pair used when listing available rooms.
type ClassroomOption struct {
	ID    string `db:"room_id" json:"room_id"`
	Label string `db:"label" json:"label"`
}
