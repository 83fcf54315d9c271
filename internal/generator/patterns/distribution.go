package patterns

import (
	"math"

	"github.com/shopspring/decimal"
)

// AmountRange is a uniform distribution of signed amounts over [Low, High),
// drawn in whole cents.
type AmountRange struct {
	lowCents  int64
	highCents int64
}

// NewAmountRange creates a uniform range. Bounds are rounded to cents.
func NewAmountRange(low, high decimal.Decimal) AmountRange {
	return AmountRange{
		lowCents:  low.Shift(2).Round(0).IntPart(),
		highCents: high.Shift(2).Round(0).IntPart(),
	}
}

// NewAmountRangeFloat is NewAmountRange for configuration values.
func NewAmountRangeFloat(low, high float64) AmountRange {
	return NewAmountRange(decimal.NewFromFloat(low), decimal.NewFromFloat(high))
}

// Low returns the inclusive lower bound.
func (r AmountRange) Low() decimal.Decimal { return decimal.New(r.lowCents, -2) }

// High returns the exclusive upper bound.
func (r AmountRange) High() decimal.Decimal { return decimal.New(r.highCents, -2) }

// GenerateAmount maps a uniform value in [0, 1) onto the range.
func (r AmountRange) GenerateAmount(rngValue float64) decimal.Decimal {
	span := r.highCents - r.lowCents
	if span <= 0 {
		return decimal.New(r.lowCents, -2)
	}
	offset := int64(math.Floor(rngValue * float64(span)))
	if offset >= span {
		offset = span - 1
	}
	if offset < 0 {
		offset = 0
	}
	return decimal.New(r.lowCents+offset, -2)
}

// AmountTier is one band of a tiered distribution.
type AmountTier struct {
	Name   string
	Weight float64
	Range  AmountRange
}

// TieredDistribution picks a tier by weight, then draws uniformly inside it.
// Many small amounts and a thin tail of large ones.
type TieredDistribution struct {
	tiers []AmountTier
	total float64
}

// NewTieredDistribution builds a distribution from tiers. Tiers with a
// non-positive weight are never chosen.
func NewTieredDistribution(tiers []AmountTier) *TieredDistribution {
	td := &TieredDistribution{tiers: tiers}
	for _, t := range tiers {
		if t.Weight > 0 {
			td.total += t.Weight
		}
	}
	return td
}

// NewCardPaymentTiers returns the default 75/17/8 card payment split.
func NewCardPaymentTiers() *TieredDistribution {
	return NewTieredDistribution([]AmountTier{
		{Name: "small", Weight: 0.75, Range: NewAmountRangeFloat(-30, -2)},
		{Name: "medium", Weight: 0.17, Range: NewAmountRangeFloat(-72, -30)},
		{Name: "large", Weight: 0.08, Range: NewAmountRangeFloat(-145, -72)},
	})
}

// Tiers returns the configured tiers.
func (td *TieredDistribution) Tiers() []AmountTier {
	return td.tiers
}

// PickTier maps a uniform value in [0, 1) onto a tier index, or -1 when no
// tier has weight.
func (td *TieredDistribution) PickTier(rngValue float64) int {
	if td.total <= 0 {
		return -1
	}
	target := rngValue * td.total
	cumulative := 0.0
	last := -1
	for i, t := range td.tiers {
		if t.Weight <= 0 {
			continue
		}
		last = i
		cumulative += t.Weight
		if target < cumulative {
			return i
		}
	}
	return last
}

// GenerateAmount picks a tier with tierValue and draws from it with
// amountValue.
func (td *TieredDistribution) GenerateAmount(tierValue, amountValue float64) decimal.Decimal {
	i := td.PickTier(tierValue)
	if i < 0 {
		return decimal.Zero
	}
	return td.tiers[i].Range.GenerateAmount(amountValue)
}
