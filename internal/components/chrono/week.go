package chrono

import "time"

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ISOWeekday numbers Monday as 1 and Sunday as 7.
func ISOWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// MondayOf returns the Monday starting the Monday..Sunday week containing day.
func MondayOf(day time.Time) time.Time {
	day = Date(day)
	return day.AddDate(0, 0, 1-ISOWeekday(day.Weekday()))
}

// SameDate compares only the calendar date of two times.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// InCurrentWeek reports whether day falls in the Monday..Sunday week of clock.Now().
func InCurrentWeek(clock API, day time.Time) bool {
	now := clock.Now()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	return SameDate(MondayOf(now), MondayOf(day))
}

// IsWeekend reports Saturday and Sunday.
func IsWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}
