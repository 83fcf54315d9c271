package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willfong/ledgergen/internal/config"
	"github.com/willfong/ledgergen/internal/database"
	"github.com/willfong/ledgergen/internal/generator"
	"github.com/willfong/ledgergen/internal/logging"
	"github.com/willfong/ledgergen/internal/ui"
)

var (
	importInput       string
	importCreateTable bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a ledger CSV into MySQL/MariaDB",
	Long: `Load a generated ledger into a MySQL/MariaDB table using LOAD DATA LOCAL INFILE.

Both plain CSV and xz-compressed files (.csv.xz) are accepted. Each import
is tagged with a batch id (a UUID) in the import_batch column, so a load
can be inspected or deleted as a unit. Ledgers without Country and City
columns load with 'Unknown' in both.

The server must allow local_infile.

Examples:
  ledgergen import --db "user:pass@tcp(localhost:3306)/ledger"
  ledgergen import --db "user:pass@tcp(localhost:3306)/ledger" --input ./output/ledger.csv.xz
  LEDGERGEN_DATABASE_DSN="user:pass@tcp(db:3306)/ledger" ledgergen import --table ledger_2024`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()
	f.String("db", "", "database connection string (user:pass@tcp(host:port)/db)")
	f.String("table", "ledger_transactions", "target table")
	f.Int("db-max-open", 4, "max open database connections")
	f.Int("db-max-idle", 2, "max idle database connections")
	f.StringVar(&importInput, "input", filepath.Join(config.OutputDir, config.Filename), "ledger file (.csv or .csv.xz)")
	f.BoolVar(&importCreateTable, "create-table", true, "create the table if it does not exist")

}

var importFlagKeys = map[string]string{
	"db":          "database.dsn",
	"table":       "database.table",
	"db-max-open": "database.max_open_conns",
	"db-max-idle": "database.max_idle_conns",
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, importFlagKeys); err != nil {
		return err
	}
	u := newUI()
	log := logging.Component("import")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dbCfg := cfg.Database

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(u.Header("Ledger Import"))
	fmt.Println()
	fmt.Println(u.KeyValue("Database", database.MaskDSN(dbCfg.DSN)))
	fmt.Println(u.KeyValue("Table", dbCfg.Table))
	fmt.Println(u.KeyValue("Input", importInput))
	fmt.Println()

	pool, err := database.NewPool(dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	queries, err := database.NewQueries(pool, dbCfg.Table)
	if err != nil {
		return err
	}

	src := importInput
	if generator.IsCompressed(importInput) {
		err := u.Step("Decompressing", func() (string, error) {
			if err := generator.CheckXZAvailable(); err != nil {
				return "", err
			}
			tmp, err := generator.DecompressXZ(ctx, importInput)
			if err != nil {
				return "", err
			}
			src = tmp
			return filepath.Base(tmp), nil
		})
		if err != nil {
			return err
		}
		defer os.Remove(src)
	}

	if err := u.Step("Connecting", func() (string, error) {
		return "connected", pool.Connect(ctx)
	}); err != nil {
		return err
	}

	if importCreateTable {
		if err := u.Step("Creating table", func() (string, error) {
			return dbCfg.Table, queries.CreateTable(ctx)
		}); err != nil {
			return err
		}
	}

	start := time.Now()
	var loaded *database.LoadResult
	if err := u.Step("Loading rows", func() (string, error) {
		var err error
		loaded, err = queries.LoadLedger(ctx, src)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d rows", loaded.Rows), nil
	}); err != nil {
		return err
	}
	log.WithFields(logging.Fields{"batch": loaded.BatchID, "rows": loaded.Rows}).Infof("ledger loaded")

	stats, err := queries.BatchSummary(ctx, loaded.BatchID)
	if err != nil {
		return err
	}
	poolStats := pool.Stats()

	items := []ui.KV{
		{Key: "Batch", Value: stats.BatchID},
		{Key: "Rows", Value: fmt.Sprintf("%d", stats.Rows)},
	}
	if !stats.FirstDay.IsZero() {
		items = append(items, ui.KV{
			Key:   "Dates",
			Value: fmt.Sprintf("%s to %s", stats.FirstDay.Format("2006-01-02"), stats.LastDay.Format("2006-01-02")),
		})
	}
	items = append(items,
		ui.KV{Key: "Net amount", Value: u.Amount(stats.NetAmount, cfg.Generate.Currency), Raw: true},
		ui.KV{Key: "Queries", Value: fmt.Sprintf("%d (%d failed)", poolStats.TotalQueries, poolStats.FailedQueries)},
		ui.KV{Key: "Duration", Value: time.Since(start).Round(time.Millisecond).String()},
		ui.KV{Key: "Status", Value: "Success"},
	)
	fmt.Println(u.SummaryBox("Import Complete", items))
	return nil
}
