package utils

import "time"

// TruncateToDay normalizes a timestamp to midnight UTC. Booking dates have
// date-only semantics and are stored this way.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RentalDays returns the number of chargeable days between pickup and
// return, rounding any partial day up. Callers must ensure ret is after
// pickup.
func RentalDays(pickup, ret time.Time) int {
	d := ret.Sub(pickup)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// MonthWindow returns the first instant of the month containing t and the
// first instant of the following month.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
