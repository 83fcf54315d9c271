package patterns

import (
	"time"
)

// DayWindow is an inclusive day-of-month range, e.g. 1-5 for "early month".
type DayWindow struct {
	Start int
	End   int
}

// Contains reports whether day falls in the window.
func (w DayWindow) Contains(day int) bool {
	return day >= w.Start && day <= w.End
}

// Dates returns the window's dates in the month of monthStart that also
// fall inside [from, to). Days past the month's length are dropped.
func (w DayWindow) Dates(monthStart, from, to time.Time) []time.Time {
	y, m, _ := monthStart.Date()
	last := lastDayOfMonth(y, m)

	dates := make([]time.Time, 0, w.End-w.Start+1)
	for d := w.Start; d <= w.End && d <= last; d++ {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if t.Before(from) || !t.Before(to) {
			continue
		}
		dates = append(dates, t)
	}
	return dates
}

// Months returns the first day of every calendar month intersecting
// [start, end).
func Months(start, end time.Time) []time.Time {
	var months []time.Time
	y, m, _ := start.Date()
	cur := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	for cur.Before(end) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// ClampToRange pins t into [from, to). to must be after from.
func ClampToRange(t, from, to time.Time) time.Time {
	if t.Before(from) {
		return from
	}
	if !t.Before(to) {
		return to.AddDate(0, 0, -1)
	}
	return t
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
