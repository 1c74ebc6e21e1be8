package models

// Timeslot represents a weekly recurring time window.
type Timeslot struct {
	ID        int64  `db:"timeslot_id" json:"timeslot_id"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// Label renders the timeslot the way pickers display it.
func (t Timeslot) Label() string {
	return t.DayOfWeek + " " + t.StartTime + "-" + t.EndTime
}

// WeekDays is the accepted day_of_week vocabulary.
var WeekDays = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}
