package generator

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/generator/patterns"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

// MerchantSource resolves merchant names for a country and category. An
// empty result means nothing is available, including after any fallback.
type MerchantSource interface {
	Merchants(country, category string) []string
}

// Synthesizer turns scheduled events into ledger rows.
type Synthesizer struct {
	timeline  *LocationTimeline
	amounts   *AmountModel
	types     *TypeTable
	merchants MerchantSource
	hours     *patterns.DailyPattern
	workers   int
}

// NewSynthesizer wires the resolution components. workers <= 0 means one
// worker per CPU.
func NewSynthesizer(timeline *LocationTimeline, amounts *AmountModel, types *TypeTable, merchants MerchantSource, workers int) *Synthesizer {
	return &Synthesizer{
		timeline:  timeline,
		amounts:   amounts,
		types:     types,
		merchants: merchants,
		hours:     patterns.NewSpendingPattern(),
		workers:   GetWorkerCount(workers),
	}
}

// Resolve fills in every field of one event except the balance. Draws happen
// in a fixed order so a given rng always yields the same row.
func (s *Synthesizer) Resolve(ev Event, rng *utils.Random) (models.Transaction, error) {
	txType := ForcedType
	if !ev.Kind.Forced() {
		txType = s.types.Draw(rng)
	}
	kind, ok := KindFor(txType)
	if !ok {
		return models.Transaction{}, apperrors.New(apperrors.CategoryInternal, apperrors.CodeUnexpected,
			"type "+string(txType)+" has no kind")
	}

	product := kind.PickProduct(rng)
	country, city := s.timeline.Lookup(ev.Date)
	amount := s.amounts.Amount(kind, ev.Kind, country, ev.Date, rng)
	category := kind.PickCategory(rng)

	candidates := s.merchants.Merchants(country, category)
	if len(candidates) == 0 {
		return models.Transaction{}, apperrors.Configuration(apperrors.CodeMissingMerchants,
			"no merchants for category %q in %s", category, country)
	}
	merchant := candidates[rng.IntN(len(candidates))]
	hour := s.hours.PickHour(rng.Float64())

	return models.Transaction{
		Type:     txType,
		Product:  product,
		Amount:   amount,
		Date:     ev.Date,
		Hour:     hour,
		Merchant: merchant,
		Category: category,
		Country:  country,
		City:     city,
		Kind:     ev.Kind,
	}, nil
}

// Synthesize resolves events on the worker pool and threads the running
// balance through them in schedule order. One rng stream is forked per event
// before any work starts, so the output does not depend on the worker count.
// It returns the rows and the closing balance.
func (s *Synthesizer) Synthesize(ctx context.Context, events []Event, rng *utils.Random, initial decimal.Decimal) ([]models.Transaction, decimal.Decimal, error) {
	streams := rng.ForkN(len(events))
	txs := make([]models.Transaction, len(events))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range events {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tx, err := s.Resolve(events[i], streams[i])
			if err != nil {
				return err
			}
			txs[i] = tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	final := FoldBalances(txs, initial)
	return txs, final, nil
}

// FoldBalances sets each row's Balance to the previous balance plus its
// amount, starting from initial, and returns the closing balance.
func FoldBalances(txs []models.Transaction, initial decimal.Decimal) decimal.Decimal {
	balance := initial
	for i := range txs {
		balance = balance.Add(txs[i].Amount)
		txs[i].Balance = balance
	}
	return balance
}

// CheckCoverage verifies that every category reachable from every kind that
// can occur resolves to at least one merchant in every timeline country.
func (s *Synthesizer) CheckCoverage() error {
	var missing []string
	for _, country := range s.timeline.Countries() {
		for _, k := range s.types.Reachable() {
			for _, category := range k.ReachableCategories() {
				if len(s.merchants.Merchants(country, category)) == 0 {
					missing = append(missing, country+"/"+category)
				}
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	missing = dedupe(missing)
	return apperrors.Configuration(apperrors.CodeMissingMerchants,
		"%d country/category pairs have no merchants", len(missing)).
		WithContext("missing", missing)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
