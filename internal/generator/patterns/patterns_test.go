package patterns

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSpendingPatternShape(t *testing.T) {
	dp := NewSpendingPattern()

	sum := 0.0
	for _, w := range dp.hourlyWeights {
		sum += w
	}
	if math.Abs(sum-dp.total) > 1e-9 {
		t.Errorf("weights sum to %f, total is %f", sum, dp.total)
	}

	w := dp.hourlyWeights
	if w[12] <= w[3]*10 {
		t.Errorf("midday (%f) should dwarf 03:00 (%f)", w[12], w[3])
	}
	if w[18] < w[16] {
		t.Errorf("evening peak missing: 18h=%f 16h=%f", w[18], w[16])
	}
	for _, h := range []int{12, 13, 18} {
		if share := w[h] / dp.total; share < 0.07 {
			t.Errorf("hour %d carries %.3f of the day, want a peak", h, share)
		}
	}

	neg := [24]float64{}
	neg[0] = -1
	neg[1] = 2
	if p := NewDailyPattern(neg); p.total != 2 || p.hourlyWeights[0] != 0 {
		t.Errorf("negative weight not clamped: total=%f w0=%f", p.total, p.hourlyWeights[0])
	}
}

func TestPickHour(t *testing.T) {
	dp := NewSpendingPattern()

	if h := dp.PickHour(0); h != 0 {
		t.Errorf("PickHour(0) = %d, want 0", h)
	}
	if h := dp.PickHour(0.999999); h != 23 {
		t.Errorf("PickHour(~1) = %d, want 23", h)
	}

	// Walk the CDF: every hour must be reachable and results monotone.
	prev := -1
	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		h := dp.PickHour(float64(i) / 10000)
		if h < prev {
			t.Fatalf("PickHour not monotone at %d: %d < %d", i, h, prev)
		}
		prev = h
		seen[h] = true
	}
	if len(seen) != 24 {
		t.Errorf("only %d hours reachable", len(seen))
	}

	zeroNight := [24]float64{}
	zeroNight[9] = 1
	if h := NewDailyPattern(zeroNight).PickHour(0.5); h != 9 {
		t.Errorf("single-hour pattern picked %d", h)
	}
}

func TestTargetWeekday(t *testing.T) {
	wp := NewWeeklyPattern(0.7)

	for i := 0; i < 100; i++ {
		v := float64(i) / 100
		if d := wp.TargetWeekday(0.1, v); IsWeekend(d) {
			t.Errorf("bias hit should give weekday, got %v", d)
		}
		if d := wp.TargetWeekday(0.9, v); !IsWeekend(d) {
			t.Errorf("bias miss should give weekend, got %v", d)
		}
	}
}

func TestShiftForward(t *testing.T) {
	wed := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		target time.Weekday
		days   int
	}{
		{time.Wednesday, 0},
		{time.Friday, 2},
		{time.Sunday, 4},
		{time.Tuesday, 6},
	}
	for _, tt := range tests {
		got := ShiftForward(wed, tt.target)
		if got.Weekday() != tt.target {
			t.Errorf("ShiftForward to %v landed on %v", tt.target, got.Weekday())
		}
		if d := int(got.Sub(wed).Hours() / 24); d != tt.days {
			t.Errorf("ShiftForward to %v moved %d days, want %d", tt.target, d, tt.days)
		}
	}
}

func TestMonths(t *testing.T) {
	start := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	months := Months(start, end)
	if len(months) != 4 {
		t.Fatalf("expected Sep-Dec (4 months), got %d", len(months))
	}
	if months[0].Month() != time.September || months[3].Month() != time.December {
		t.Errorf("unexpected months %v", months)
	}

	exact := Months(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	if len(exact) != 2 {
		t.Errorf("two whole months should give 2, got %d", len(exact))
	}
}

func TestDayWindowDates(t *testing.T) {
	w := DayWindow{Start: 28, End: 31}
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	from := feb
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	dates := w.Dates(feb, from, to)
	if len(dates) != 1 || dates[0].Day() != 28 {
		t.Errorf("February 2025 window 28-31 should give only the 28th, got %v", dates)
	}

	// Range starting mid-window trims the early days.
	from = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := w.Dates(feb, from, to); len(got) != 0 {
		t.Errorf("expected no dates before range start, got %v", got)
	}

	if !w.Contains(30) || w.Contains(27) {
		t.Error("Contains is wrong")
	}
}

func TestAmountRange(t *testing.T) {
	r := NewAmountRangeFloat(-30, -2)

	if got := r.GenerateAmount(0); !got.Equal(decimal.RequireFromString("-30")) {
		t.Errorf("GenerateAmount(0) = %s", got)
	}
	top := r.GenerateAmount(0.9999999)
	if !top.LessThan(r.High()) {
		t.Errorf("upper bound must be exclusive, got %s", top)
	}
	if !top.Equal(decimal.RequireFromString("-2.01")) {
		t.Errorf("GenerateAmount(~1) = %s, want -2.01", top)
	}

	point := NewAmountRangeFloat(5, 5)
	if got := point.GenerateAmount(0.5); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("degenerate range gave %s", got)
	}
}

func TestCardPaymentTiers(t *testing.T) {
	td := NewCardPaymentTiers()

	tests := []struct {
		tierValue float64
		tier      string
	}{
		{0.0, "small"},
		{0.74, "small"},
		{0.76, "medium"},
		{0.91, "medium"},
		{0.93, "large"},
		{0.999, "large"},
	}
	for _, tt := range tests {
		i := td.PickTier(tt.tierValue)
		if td.Tiers()[i].Name != tt.tier {
			t.Errorf("PickTier(%v) = %s, want %s", tt.tierValue, td.Tiers()[i].Name, tt.tier)
		}
	}

	a := td.GenerateAmount(0.95, 0.5)
	if a.LessThan(decimal.NewFromInt(-145)) || !a.LessThan(decimal.NewFromInt(-72)) {
		t.Errorf("large tier amount %s out of range", a)
	}

	empty := NewTieredDistribution(nil)
	if empty.PickTier(0.5) != -1 || !empty.GenerateAmount(0.5, 0.5).IsZero() {
		t.Error("empty distribution should pick nothing")
	}
}
