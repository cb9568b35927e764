package utils

import "time"

// CalendarDaysBetween returns the whole-day difference to - from, ignoring
// the time of day. Negative when to precedes from.
func CalendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()

	fromDay := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	toDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	return int(toDay.Sub(fromDay).Hours() / 24)
}
