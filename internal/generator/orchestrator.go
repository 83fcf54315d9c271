package generator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/willfong/ledgergen/internal/config"
	"github.com/willfong/ledgergen/internal/data"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/logging"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

// Orchestrator runs schedule building, event resolution and serialization
// for one ledger.
type Orchestrator struct {
	rng         *utils.Random
	config      config.GenerateConfig
	schedule    ScheduleConfig
	synthesizer *Synthesizer
	onProgress  func(done, total int64)
	log         logging.Logger
}

// OrchestratorOptions holds optional settings for the orchestrator
type OrchestratorOptions struct {
	// Merchants overrides the embedded catalog.
	Merchants MerchantSource
	// OnProgress is called while rows are written.
	OnProgress func(done, total int64)
}

// Ledger is a fully resolved ledger held in memory.
type Ledger struct {
	Transactions   []models.Transaction
	Schedule       *Schedule
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
}

// GenerationResult holds statistics from the generation run
type GenerationResult struct {
	Rows           int
	ByKind         map[models.EventKind]int
	ByType         map[models.TransactionType]int
	Collisions     int
	Overflow       int
	SkippedAnchors int
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	Currency       string
	Seed           uint64
	Path           string
	Duration       time.Duration
}

// NewOrchestrator validates the configuration and builds every component.
// Timeline, type table and merchant coverage problems surface here, before
// anything is written.
func NewOrchestrator(cfg config.GenerateConfig, opts OrchestratorOptions) (*Orchestrator, error) {
	schedCfg, err := ScheduleConfigFrom(cfg)
	if err != nil {
		return nil, err
	}

	timeline, err := TimelineFromConfig(cfg.Timeline, schedCfg.Start, schedCfg.End)
	if err != nil {
		return nil, err
	}

	types, err := TypeTableFromConfig(cfg.TransactionTypes)
	if err != nil {
		return nil, err
	}

	merchants := opts.Merchants
	if merchants == nil {
		catalog, err := data.Load()
		if err != nil {
			return nil, apperrors.Internal("loading merchant catalog", err)
		}
		merchants = catalog
	}

	amounts := NewAmountModel(cfg, types)
	synth := NewSynthesizer(timeline, amounts, types, merchants, cfg.Workers)
	if err := synth.CheckCoverage(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		rng:         utils.NewRandom(cfg.Seed),
		config:      cfg,
		schedule:    schedCfg,
		synthesizer: synth,
		onProgress:  opts.OnProgress,
		log:         logging.Component("orchestrator"),
	}, nil
}

// Seed returns the seed in use, which is random when none was configured.
func (o *Orchestrator) Seed() uint64 {
	return o.rng.Seed()
}

// Build schedules and resolves the ledger without writing it.
func (o *Orchestrator) Build(ctx context.Context) (*Ledger, error) {
	schedRNG := o.rng.Fork()
	synthRNG := o.rng.Fork()

	o.log.Debugf("building schedule for %s..%s, target %d",
		o.config.StartDate, o.config.EndDate, o.schedule.Target)
	schedule, err := BuildSchedule(o.schedule, schedRNG)
	if err != nil {
		return nil, err
	}
	o.log.WithFields(logging.Fields{
		"stipends":   schedule.Stipends,
		"lump_sums":  schedule.LumpSums,
		"free":       schedule.Free,
		"collisions": schedule.Collisions,
		"overflow":   schedule.Overflow,
	}).Debugf("schedule ready with %d events", len(schedule.Events))

	initial := utils.Round2(decimal.NewFromFloat(o.config.InitialBalance))
	txs, final, err := o.synthesizer.Synthesize(ctx, schedule.Events, synthRNG, initial)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Transactions:   txs,
		Schedule:       schedule,
		InitialBalance: initial,
		FinalBalance:   final,
	}, nil
}

// Generate builds the ledger and writes it to the configured file.
func (o *Orchestrator) Generate(ctx context.Context) (*GenerationResult, error) {
	startTime := time.Now()

	if o.config.Compress {
		if err := CheckXZAvailable(); err != nil {
			return nil, err
		}
	}

	ledger, err := o.Build(ctx)
	if err != nil {
		return nil, err
	}

	writer, err := NewLedgerWriter(o.config.OutputDir, o.config.Filename, o.config.Compress)
	if err != nil {
		return nil, err
	}
	if err := o.write(writer, ledger.Transactions); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	o.log.Infof("wrote %d rows to %s", writer.RowCount(), writer.Path())

	result := Summarize(ledger)
	result.Currency = o.config.Currency
	result.Seed = o.rng.Seed()
	result.Path = writer.Path()
	result.Duration = time.Since(startTime)
	return result, nil
}

func (o *Orchestrator) write(w *CSVWriter, txs []models.Transaction) error {
	total := int64(len(txs))
	chunk := ChunkSize(len(txs))
	for start := 0; start < len(txs); start += chunk {
		end := start + chunk
		if end > len(txs) {
			end = len(txs)
		}
		if err := w.WriteTransactions(txs[start:end]); err != nil {
			return err
		}
		if o.onProgress != nil {
			o.onProgress(int64(end), total)
		}
	}
	return w.Flush()
}

// Summarize computes row counts and totals for a ledger.
func Summarize(l *Ledger) *GenerationResult {
	r := &GenerationResult{
		Rows:           len(l.Transactions),
		ByKind:         make(map[models.EventKind]int),
		ByType:         make(map[models.TransactionType]int),
		InitialBalance: l.InitialBalance,
		FinalBalance:   l.FinalBalance,
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
	}
	if l.Schedule != nil {
		r.Collisions = l.Schedule.Collisions
		r.Overflow = l.Schedule.Overflow
		r.SkippedAnchors = len(l.Schedule.SkippedAnchors)
	}
	for i := range l.Transactions {
		tx := &l.Transactions[i]
		r.ByKind[tx.Kind]++
		r.ByType[tx.Type]++
		if tx.Amount.IsPositive() {
			r.TotalIncome = r.TotalIncome.Add(tx.Amount)
		} else {
			r.TotalExpenses = r.TotalExpenses.Add(tx.Amount.Abs())
		}
	}
	return r
}

// PrintSummary writes a plain-text summary, used when styled output is off.
func PrintSummary(w io.Writer, result *GenerationResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Generation Complete ===")
	fmt.Fprintf(w, "Rows:           %d\n", result.Rows)
	fmt.Fprintf(w, "Stipends:       %d\n", result.ByKind[models.EventMonthlyStipend])
	fmt.Fprintf(w, "Lump sums:      %d\n", result.ByKind[models.EventLumpSum])
	fmt.Fprintf(w, "Free:           %d\n", result.ByKind[models.EventFree])
	fmt.Fprintf(w, "Collisions:     %d\n", result.Collisions)
	fmt.Fprintf(w, "Overflow:       %d\n", result.Overflow)
	fmt.Fprintf(w, "Final balance:  %s\n", utils.FormatMoney(result.FinalBalance, result.Currency))
	fmt.Fprintf(w, "Total income:   %s\n", utils.FormatMoney(result.TotalIncome, result.Currency))
	fmt.Fprintf(w, "Total expenses: %s\n", utils.FormatMoney(result.TotalExpenses, result.Currency))
	fmt.Fprintf(w, "Seed:           %d\n", result.Seed)
	fmt.Fprintf(w, "Output:         %s\n", result.Path)
	fmt.Fprintf(w, "Duration:       %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)
}
