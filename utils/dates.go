package utils

import "time"

// DateOnly returns local midnight of t's calendar date in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// CivilDate reinterprets a DATE column value (scanned as UTC midnight) as
// midnight of the same calendar date in loc.
func CivilDate(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek is the most recent Sunday 00:00 in loc, on or before t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := DateOnly(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth is the first of t's month at 00:00 in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// DayBounds returns [start, end) of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DateOnly(t, loc)
	return start, start.AddDate(0, 0, 1)
}
