package plan

import "time"

// WeekRange returns the Monday..Sunday window containing day. The window is
// computed from the trigger date, so a new week opens the moment "today"
// crosses into the next Monday-start week, regardless of what happened to
// the previous week's plan.
func WeekRange(day time.Time) (time.Time, time.Time) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	start := d.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start, end
}
