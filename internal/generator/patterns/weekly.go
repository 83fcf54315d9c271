package patterns

import (
	"time"
)

// WeeklyPattern nudges random dates toward the days people actually spend
// money on.
type WeeklyPattern struct {
	// WeekdayBias is the chance a date lands on Mon-Fri.
	WeekdayBias float64
}

// NewWeeklyPattern returns a pattern with the given weekday bias.
func NewWeeklyPattern(weekdayBias float64) *WeeklyPattern {
	return &WeeklyPattern{WeekdayBias: weekdayBias}
}

// IsWeekend returns true for Saturday and Sunday.
func IsWeekend(weekday time.Weekday) bool {
	return weekday == time.Saturday || weekday == time.Sunday
}

// TargetWeekday picks the day of week a candidate should move to.
// biasValue decides weekday vs weekend against WeekdayBias; pickValue
// chooses uniformly within the group. Both are uniform in [0, 1).
func (wp *WeeklyPattern) TargetWeekday(biasValue, pickValue float64) time.Weekday {
	if biasValue < wp.WeekdayBias {
		return time.Monday + time.Weekday(int(pickValue*5)%5)
	}
	if int(pickValue*2)%2 == 0 {
		return time.Saturday
	}
	return time.Sunday
}

// ShiftForward moves date ahead by 0-6 days so it falls on target.
func ShiftForward(date time.Time, target time.Weekday) time.Time {
	delta := (int(target) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, delta)
}
