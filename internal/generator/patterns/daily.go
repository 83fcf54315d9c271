package patterns

// DailyPattern weights each hour of the day for placing a transaction.
// Weights are relative; they are normalized when drawing.
type DailyPattern struct {
	hourlyWeights [24]float64
	total         float64
}

// NewSpendingPattern returns the personal-spending curve: near zero
// overnight, a midday peak, and a second peak in the early evening.
func NewSpendingPattern() *DailyPattern {
	return NewDailyPattern([24]float64{
		0.010, // 00:00
		0.010, // 01:00
		0.005, // 02:00
		0.005, // 03:00
		0.005, // 04:00
		0.010, // 05:00
		0.020, // 06:00
		0.030, // 07:00
		0.040, // 08:00
		0.050, // 09:00
		0.060, // 10:00
		0.070, // 11:00
		0.080, // 12:00 - lunch
		0.080, // 13:00
		0.070, // 14:00
		0.070, // 15:00
		0.060, // 16:00
		0.060, // 17:00
		0.080, // 18:00 - after work
		0.070, // 19:00
		0.050, // 20:00
		0.040, // 21:00
		0.030, // 22:00
		0.020, // 23:00
	})
}

// NewDailyPattern builds a pattern from raw weights. Negative weights are
// treated as zero.
func NewDailyPattern(weights [24]float64) *DailyPattern {
	dp := &DailyPattern{}
	for h, w := range weights {
		if w < 0 {
			w = 0
		}
		dp.hourlyWeights[h] = w
		dp.total += w
	}
	return dp
}

// PickHour maps a uniform value in [0, 1) onto an hour.
func (dp *DailyPattern) PickHour(rngValue float64) int {
	if dp.total <= 0 {
		return 12
	}
	target := rngValue * dp.total
	cumulative := 0.0
	last := 0
	for h, w := range dp.hourlyWeights {
		if w <= 0 {
			continue
		}
		last = h
		cumulative += w
		if target < cumulative {
			return h
		}
	}
	return last
}
