package generator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/willfong/ledgergen/internal/config"
	"github.com/willfong/ledgergen/internal/generator/patterns"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

// TransferModel shapes Transfer amounts: mostly outgoing rent and bills,
// sometimes small incoming payments.
type TransferModel struct {
	OutgoingProbability float64
	RentProbability     float64
	RentWindow          patterns.DayWindow
	Rent                patterns.AmountRange
	Bills               patterns.AmountRange
	Incoming            patterns.AmountRange
}

// AmountModel maps a kind, country and date to a signed amount.
type AmountModel struct {
	uniform     map[models.TransactionType]patterns.AmountRange
	cardTiers   *patterns.TieredDistribution
	transfer    TransferModel
	multipliers map[string]decimal.Decimal

	stipendLow  decimal.Decimal
	stipendHigh decimal.Decimal
	lumpLow     decimal.Decimal
	lumpHigh    decimal.Decimal
}

// NewAmountModel builds the model from generation settings and the type
// table's uniform ranges.
func NewAmountModel(cfg config.GenerateConfig, types *TypeTable) *AmountModel {
	m := &AmountModel{
		uniform:     make(map[models.TransactionType]patterns.AmountRange),
		multipliers: make(map[string]decimal.Decimal),
	}

	for _, s := range types.Specs() {
		m.uniform[s.Type] = patterns.NewAmountRange(s.AmountLow, s.AmountHigh)
	}

	tiers := make([]patterns.AmountTier, 0, len(cfg.CardTiers))
	for _, t := range cfg.CardTiers {
		tiers = append(tiers, patterns.AmountTier{
			Name:   t.Name,
			Weight: t.Weight,
			Range:  patterns.NewAmountRangeFloat(t.Low, t.High),
		})
	}
	m.cardTiers = patterns.NewTieredDistribution(tiers)

	tc := cfg.Transfer
	m.transfer = TransferModel{
		OutgoingProbability: tc.OutgoingProbability,
		RentProbability:     tc.RentProbability,
		RentWindow:          patterns.DayWindow{Start: 1, End: tc.RentWindowEnd},
		Rent:                patterns.NewAmountRangeFloat(tc.RentLow, tc.RentHigh),
		Bills:               patterns.NewAmountRangeFloat(tc.BillLow, tc.BillHigh),
		Incoming:            patterns.NewAmountRangeFloat(tc.IncomingLow, tc.IncomingHigh),
	}

	for _, cm := range cfg.CountryMultipliers {
		m.multipliers[cm.Country] = decimal.NewFromFloat(cm.Multiplier)
	}

	floor := decimal.NewFromFloat(cfg.Stipend.Floor)
	m.stipendLow = floor
	m.stipendHigh = floor.Add(decimal.NewFromFloat(cfg.Stipend.Spread))
	m.lumpLow = decimal.NewFromFloat(cfg.LumpSum.Low)
	m.lumpHigh = decimal.NewFromFloat(cfg.LumpSum.High)

	return m
}

// Multiplier returns the cost-of-living factor for country, 1.0 if unknown.
func (m *AmountModel) Multiplier(country string) decimal.Decimal {
	if v, ok := m.multipliers[country]; ok {
		return v
	}
	return decimal.NewFromInt(1)
}

// StipendFloor is the lowest possible stipend amount.
func (m *AmountModel) StipendFloor() decimal.Decimal {
	return m.stipendLow
}

// StipendAmount draws a monthly stipend in [floor, floor+spread].
func (m *AmountModel) StipendAmount(rng *utils.Random) decimal.Decimal {
	return utils.RandomAmountInclusive(rng, m.stipendLow, m.stipendHigh)
}

// LumpSumAmount draws a one-off income in [low, high].
func (m *AmountModel) LumpSumAmount(rng *utils.Random) decimal.Decimal {
	return utils.RandomAmountInclusive(rng, m.lumpLow, m.lumpHigh)
}

// Amount draws the signed amount for one event.
func (m *AmountModel) Amount(kind Kind, event models.EventKind, country string, date time.Time, rng *utils.Random) decimal.Decimal {
	var base decimal.Decimal

	switch kind.Strategy {
	case StrategyIncome:
		switch event {
		case models.EventLumpSum:
			return m.LumpSumAmount(rng)
		default:
			return m.StipendAmount(rng)
		}
	case StrategyTiered:
		base = m.cardTiers.GenerateAmount(rng.Float64(), rng.Float64())
	case StrategyTransfer:
		base = m.transferAmount(date, rng)
	default:
		base = m.uniform[kind.Type].GenerateAmount(rng.Float64())
	}

	if kind.CostOfLiving {
		return utils.Round2(base.Mul(m.Multiplier(country)))
	}
	return base
}

func (m *AmountModel) transferAmount(date time.Time, rng *utils.Random) decimal.Decimal {
	t := m.transfer
	if !rng.Probability(t.OutgoingProbability) {
		return t.Incoming.GenerateAmount(rng.Float64())
	}
	if t.RentWindow.Contains(date.Day()) && rng.Probability(t.RentProbability) {
		return t.Rent.GenerateAmount(rng.Float64())
	}
	return t.Bills.GenerateAmount(rng.Float64())
}
