package model

import "time"

// Day truncates a timestamp to its UTC calendar date. All range arithmetic in
// the rules engine operates on these normalized values.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayIn truncates a timestamp to its calendar date in the given location,
// keeping the result in that location for day-difference arithmetic.
func DayIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the signed number of whole calendar days from a to b
// after normalizing both to dates.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ContainsDay reports whether day falls inside [start, end] with both ends
// inclusive, the containment rule for period rates and policy windows.
func ContainsDay(start, end, day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(start)) && !d.After(Day(end))
}
