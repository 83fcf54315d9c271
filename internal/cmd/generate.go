package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/generator"
	"github.com/willfong/ledgergen/internal/logging"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/ui"
	"github.com/willfong/ledgergen/internal/utils"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic ledger CSV",
	Long: `Generate a synthetic transaction ledger for one account holder.

The ledger contains:
- One stipend on a fixed window of days in every month
- Lump sums in the configured anchor months
- Card payments, transfers, fees, rewards and other activity on random days,
  biased toward weekdays
- Merchants and amounts that follow where the holder lives at the time
- A running balance that is exact to the cent

The same seed and settings always produce a byte-identical file, whatever
the number of workers.

Example:
  ledgergen generate --seed 42
  ledgergen generate --count 2000 --start 2024-01-01 --end 2025-01-01
  ledgergen generate --compress --output ./data     # writes ledger.csv.xz`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.Int("count", config.NumTransactions, "target number of transactions")
	f.String("start", config.StartDate, "first day of the ledger (YYYY-MM-DD, inclusive)")
	f.String("end", config.EndDate, "end of the ledger (YYYY-MM-DD, exclusive)")
	f.Int64("seed", 0, "random seed for reproducibility (0 = random)")
	f.String("output", config.OutputDir, "output directory")
	f.String("filename", config.Filename, "output file name")
	f.Float64("initial-balance", config.InitialBalance, "balance before the first row")
	f.Float64("stipend-floor", config.StipendFloor, "lowest monthly stipend")
	f.Float64("weekday-bias", config.WeekdayBias, "probability a random day falls on Mon-Fri")
	f.Int("workers", 0, "number of parallel workers (0 = auto-detect CPUs)")
	f.Bool("compress", false, "compress output with xz (creates .csv.xz)")

}

var generateFlagKeys = map[string]string{
	"count":           "generate.num_transactions",
	"start":           "generate.start_date",
	"end":             "generate.end_date",
	"seed":            "generate.seed",
	"output":          "generate.output_dir",
	"filename":        "generate.filename",
	"initial-balance": "generate.initial_balance",
	"stipend-floor":   "generate.stipend.floor",
	"weekday-bias":    "generate.weekday_bias",
	"workers":         "generate.workers",
	"compress":        "generate.compress",
}

// bindFlags binds each flag to a viper key. Only flags the user sets take
// precedence over the config file and environment. Commands bind when they
// run since several share a key.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return apperrors.Internal("binding flag "+flag, err)
		}
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, generateFlagKeys); err != nil {
		return err
	}
	u := newUI()
	log := logging.Component("cli")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g := cfg.Generate

	fmt.Println(u.Header("Ledger Generator"))
	fmt.Println()
	fmt.Println(u.KeyValue("Target", fmt.Sprintf("%d transactions", g.NumTransactions)))
	fmt.Println(u.KeyValue("Range", fmt.Sprintf("%s to %s", g.StartDate, g.EndDate)))
	fmt.Println(u.KeyValue("Opening", u.Amount(utils.Round2(decimal.NewFromFloat(g.InitialBalance)), g.Currency)))
	fmt.Println(u.KeyValue("Timeline", fmt.Sprintf("%d periods", len(g.Timeline))))
	fmt.Println(u.KeyValue("Workers", fmt.Sprintf("%d", generator.GetWorkerCount(g.Workers))))
	if g.Compress {
		fmt.Println(u.KeyValue("Compression", "xz (.csv.xz)"))
	}
	fmt.Println()

	var bar *ui.ProgressBar
	orchestrator, err := generator.NewOrchestrator(g, generator.OrchestratorOptions{
		OnProgress: func(done, total int64) {
			if bar == nil {
				bar = u.NewProgressBar("Writing rows", total)
			}
			bar.Update(done, total)
		},
	})
	if err != nil {
		return err
	}
	log.WithField("seed", orchestrator.Seed()).Debugf("orchestrator ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := orchestrator.Generate(ctx)
	if err != nil {
		if bar != nil {
			bar.Fail(err)
		}
		return err
	}
	if bar != nil {
		bar.Complete()
	}

	if !u.Styled() {
		generator.PrintSummary(os.Stdout, result)
	} else {
		printGenerateSummary(u, result)
	}
	fmt.Println()
	path, _ := filepath.Abs(result.Path)
	fmt.Println(u.Success("Ledger written to: " + path))
	if result.Collisions > 0 || result.SkippedAnchors > 0 {
		fmt.Println(u.Warning(fmt.Sprintf("%d free rows dropped on forced dates, %d lump-sum anchors outside the range",
			result.Collisions, result.SkippedAnchors)))
	}
	return nil
}

// printGenerateSummary prints a styled generation summary
func printGenerateSummary(u *ui.UI, result *generator.GenerationResult) {
	items := []ui.KV{
		{Key: "Rows", Value: fmt.Sprintf("%d", result.Rows)},
		{Key: "Stipends", Value: fmt.Sprintf("%d", result.ByKind[models.EventMonthlyStipend])},
		{Key: "Lump sums", Value: fmt.Sprintf("%d", result.ByKind[models.EventLumpSum])},
		{Key: "Free", Value: fmt.Sprintf("%d", result.ByKind[models.EventFree])},
		{Key: "Collisions", Value: fmt.Sprintf("%d", result.Collisions)},
		{Key: "Income", Value: u.Amount(result.TotalIncome, result.Currency), Raw: true},
		{Key: "Expenses", Value: u.Amount(result.TotalExpenses.Neg(), result.Currency), Raw: true},
		{Key: "Closing", Value: u.Amount(result.FinalBalance, result.Currency), Raw: true},
		{Key: "Seed", Value: fmt.Sprintf("%d", result.Seed)},
		{Key: "Duration", Value: result.Duration.Round(1e6).String()},
		{Key: "Status", Value: "Success"},
	}

	fmt.Println(u.SummaryBox("Generation Complete", items))
}
