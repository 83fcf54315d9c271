package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/utils"
)

// Config holds all configuration for the ledger generator
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// LogConfig selects logrus level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds database connection settings for 'import'.
type DatabaseConfig struct {
	// Format: user:password@tcp(host:port)/database
	DSN string `mapstructure:"dsn"`

	// Table receives the loaded rows.
	Table string `mapstructure:"table"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// GenerateConfig holds ledger generation settings
type GenerateConfig struct {
	// Random seed for reproducibility (0 = random)
	Seed int64 `mapstructure:"seed"`

	NumTransactions int     `mapstructure:"num_transactions"`
	StartDate       string  `mapstructure:"start_date"`
	EndDate         string  `mapstructure:"end_date"`
	InitialBalance  float64 `mapstructure:"initial_balance"`
	WeekdayBias     float64 `mapstructure:"weekday_bias"`
	Currency        string  `mapstructure:"currency"`

	OutputDir string `mapstructure:"output_dir"`
	Filename  string `mapstructure:"filename"`
	Compress  bool   `mapstructure:"compress"`

	// Workers resolving events in parallel (0 = number of CPUs)
	Workers int `mapstructure:"workers"`

	Stipend  StipendConfig  `mapstructure:"stipend"`
	LumpSum  LumpSumConfig  `mapstructure:"lump_sum"`
	Transfer TransferConfig `mapstructure:"transfer"`

	CardTiers          []TierConfig              `mapstructure:"card_tiers"`
	TransactionTypes   []TransactionTypeConfig   `mapstructure:"transaction_types"`
	CountryMultipliers []CountryMultiplierConfig `mapstructure:"country_multipliers"`
	Timeline           []PeriodConfig            `mapstructure:"timeline"`
}

// StipendConfig describes the monthly stipend.
type StipendConfig struct {
	Floor       float64 `mapstructure:"floor"`
	Spread      float64 `mapstructure:"spread"`
	WindowStart int     `mapstructure:"window_start"`
	WindowEnd   int     `mapstructure:"window_end"`
}

// LumpSumConfig describes one-off income events.
type LumpSumConfig struct {
	Low         float64        `mapstructure:"low"`
	High        float64        `mapstructure:"high"`
	WindowStart int            `mapstructure:"window_start"`
	WindowEnd   int            `mapstructure:"window_end"`
	Anchors     []AnchorConfig `mapstructure:"anchors"`
}

// AnchorConfig is a year/month a lump sum lands in.
type AnchorConfig struct {
	Year  int `mapstructure:"year"`
	Month int `mapstructure:"month"`
}

// TransferConfig shapes the Transfer amount strategy.
type TransferConfig struct {
	OutgoingProbability float64 `mapstructure:"outgoing_probability"`
	RentProbability     float64 `mapstructure:"rent_probability"`
	RentWindowEnd       int     `mapstructure:"rent_window_end"`
	RentLow             float64 `mapstructure:"rent_low"`
	RentHigh            float64 `mapstructure:"rent_high"`
	BillLow             float64 `mapstructure:"bill_low"`
	BillHigh            float64 `mapstructure:"bill_high"`
	IncomingLow         float64 `mapstructure:"incoming_low"`
	IncomingHigh        float64 `mapstructure:"incoming_high"`
}

// TierConfig is one card payment size tier.
type TierConfig struct {
	Name   string  `mapstructure:"name"`
	Weight float64 `mapstructure:"weight"`
	Low    float64 `mapstructure:"low"`
	High   float64 `mapstructure:"high"`
}

// TransactionTypeConfig is a row of the type probability table. AmountLow and
// AmountHigh are ignored for types with their own strategy (card payments,
// transfers and top-ups).
type TransactionTypeConfig struct {
	Name        string  `mapstructure:"name"`
	Probability float64 `mapstructure:"probability"`
	AmountLow   float64 `mapstructure:"amount_low"`
	AmountHigh  float64 `mapstructure:"amount_high"`
}

// CountryMultiplierConfig scales cost-of-living sensitive amounts.
type CountryMultiplierConfig struct {
	Country    string  `mapstructure:"country"`
	Multiplier float64 `mapstructure:"multiplier"`
}

// PeriodConfig is one stay on the location timeline, End exclusive.
type PeriodConfig struct {
	Country string `mapstructure:"country"`
	City    string `mapstructure:"city"`
	Start   string `mapstructure:"start"`
	End     string `mapstructure:"end"`
}

// DefaultConfig returns a configuration reproducing the reference ledger.
func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{
			Seed:            0,
			NumTransactions: NumTransactions,
			StartDate:       StartDate,
			EndDate:         EndDate,
			InitialBalance:  InitialBalance,
			WeekdayBias:     WeekdayBias,
			Currency:        Currency,
			OutputDir:       OutputDir,
			Filename:        Filename,
			Workers:         0,
			Stipend: StipendConfig{
				Floor:       StipendFloor,
				Spread:      StipendSpread,
				WindowStart: StipendWindowStart,
				WindowEnd:   StipendWindowEnd,
			},
			LumpSum: LumpSumConfig{
				Low:         LumpSumLow,
				High:        LumpSumHigh,
				WindowStart: LumpSumWindowStart,
				WindowEnd:   LumpSumWindowEnd,
				Anchors: []AnchorConfig{
					{Year: 2024, Month: 9},
					{Year: 2025, Month: 8},
				},
			},
			Transfer: TransferConfig{
				OutgoingProbability: TransferOutgoingProbability,
				RentProbability:     RentProbability,
				RentWindowEnd:       RentWindowEnd,
				RentLow:             RentLow,
				RentHigh:            RentHigh,
				BillLow:             BillLow,
				BillHigh:            BillHigh,
				IncomingLow:         IncomingLow,
				IncomingHigh:        IncomingHigh,
			},
			CardTiers: []TierConfig{
				{Name: "small", Weight: 0.75, Low: -30, High: -2},
				{Name: "medium", Weight: 0.17, Low: -72, High: -30},
				{Name: "large", Weight: 0.08, Low: -145, High: -72},
			},
			TransactionTypes: []TransactionTypeConfig{
				{Name: "Card Payment", Probability: 0.60},
				{Name: "Transfer", Probability: 0.25},
				{Name: "Topup", Probability: 0.02},
				{Name: "Fee", Probability: 0.04, AmountLow: -15, AmountHigh: -1},
				{Name: "Reward", Probability: 0.03, AmountLow: 1, AmountHigh: 5},
				{Name: "Interest", Probability: 0.02, AmountLow: 0.1, AmountHigh: 1},
				{Name: "Card Refund", Probability: 0.02, AmountLow: 1, AmountHigh: 80},
				{Name: "Exchange", Probability: 0.02, AmountLow: -200, AmountHigh: 200},
			},
			CountryMultipliers: []CountryMultiplierConfig{
				{Country: "Belgium", Multiplier: 1.2},
				{Country: "Spain", Multiplier: 0.85},
				{Country: "Germany", Multiplier: 1.0},
				{Country: "France", Multiplier: 1.15},
			},
			Timeline: []PeriodConfig{
				{Country: "Belgium", City: "Brussels", Start: "2024-09-01", End: "2025-03-01"},
				{Country: "Spain", City: "Barcelona", Start: "2025-03-01", End: "2025-09-01"},
				{Country: "Germany", City: "Berlin", Start: "2025-09-01", End: "2025-11-01"},
				{Country: "France", City: "Paris", Start: "2025-11-01", End: "2026-05-01"},
			},
		},
		Database: DatabaseConfig{
			Table:           "ledger_transactions",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// SetDefaults registers the scalar defaults with viper so that
// LEDGERGEN_* environment variables can override them. List-valued settings
// only come from a config file.
func SetDefaults() {
	d := DefaultConfig()
	g := d.Generate
	for key, value := range map[string]interface{}{
		"generate.seed":                          g.Seed,
		"generate.num_transactions":              g.NumTransactions,
		"generate.start_date":                    g.StartDate,
		"generate.end_date":                      g.EndDate,
		"generate.initial_balance":               g.InitialBalance,
		"generate.weekday_bias":                  g.WeekdayBias,
		"generate.currency":                      g.Currency,
		"generate.output_dir":                    g.OutputDir,
		"generate.filename":                      g.Filename,
		"generate.compress":                      g.Compress,
		"generate.workers":                       g.Workers,
		"generate.stipend.floor":                 g.Stipend.Floor,
		"generate.stipend.spread":                g.Stipend.Spread,
		"generate.stipend.window_start":          g.Stipend.WindowStart,
		"generate.stipend.window_end":            g.Stipend.WindowEnd,
		"generate.lump_sum.low":                  g.LumpSum.Low,
		"generate.lump_sum.high":                 g.LumpSum.High,
		"generate.lump_sum.window_start":         g.LumpSum.WindowStart,
		"generate.lump_sum.window_end":           g.LumpSum.WindowEnd,
		"generate.transfer.outgoing_probability": g.Transfer.OutgoingProbability,
		"generate.transfer.rent_probability":     g.Transfer.RentProbability,
		"generate.transfer.rent_window_end":      g.Transfer.RentWindowEnd,
		"database.dsn":                           d.Database.DSN,
		"database.table":                         d.Database.Table,
		"database.max_open_conns":                d.Database.MaxOpenConns,
		"database.max_idle_conns":                d.Database.MaxIdleConns,
		"database.conn_max_lifetime":             d.Database.ConnMaxLifetime,
		"log.level":                              d.Log.Level,
		"log.format":                             d.Log.Format,
	} {
		viper.SetDefault(key, value)
	}
}

// Load reads configuration from viper into a Config struct. Lists given in a
// config file replace the defaults wholesale.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"failed to unmarshal config")
	}

	return cfg, nil
}

// Range returns the parsed [start, end) generation range.
func (g *GenerateConfig) Range() (time.Time, time.Time, error) {
	start, err := utils.ParseDate(g.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := utils.ParseDate(g.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Validate checks field-level settings. Cross-component rules (timeline
// contiguity, schedule feasibility, merchant coverage) are checked where the
// components are built.
func (c *Config) Validate() error {
	var errs []string
	g := c.Generate

	if g.NumTransactions <= 0 {
		errs = append(errs, "generate.num_transactions must be positive")
	}
	start, end, err := g.Range()
	if err != nil {
		errs = append(errs, err.Error())
	} else if !end.After(start) {
		errs = append(errs, fmt.Sprintf("generate.end_date (%s) must be after start_date (%s)", g.EndDate, g.StartDate))
	}
	if g.WeekdayBias < 0 || g.WeekdayBias > 1 {
		errs = append(errs, "generate.weekday_bias must be between 0.0 and 1.0")
	}
	if g.Workers < 0 {
		errs = append(errs, "generate.workers must be non-negative")
	}
	if strings.TrimSpace(g.Filename) == "" {
		errs = append(errs, "generate.filename must not be empty")
	}

	if g.Stipend.Floor <= 0 {
		errs = append(errs, "generate.stipend.floor must be positive")
	}
	if g.Stipend.Spread < 0 {
		errs = append(errs, "generate.stipend.spread must be non-negative")
	}
	errs = append(errs, validateWindow("generate.stipend", g.Stipend.WindowStart, g.Stipend.WindowEnd)...)

	if g.LumpSum.Low > g.LumpSum.High {
		errs = append(errs, "generate.lump_sum.low must not exceed high")
	}
	errs = append(errs, validateWindow("generate.lump_sum", g.LumpSum.WindowStart, g.LumpSum.WindowEnd)...)
	for i, a := range g.LumpSum.Anchors {
		if a.Month < 1 || a.Month > 12 {
			errs = append(errs, fmt.Sprintf("generate.lump_sum.anchors[%d].month must be 1-12", i))
		}
	}

	t := g.Transfer
	if t.OutgoingProbability < 0 || t.OutgoingProbability > 1 {
		errs = append(errs, "generate.transfer.outgoing_probability must be between 0.0 and 1.0")
	}
	if t.RentProbability < 0 || t.RentProbability > 1 {
		errs = append(errs, "generate.transfer.rent_probability must be between 0.0 and 1.0")
	}

	tierWeight := 0.0
	for i, tier := range g.CardTiers {
		if tier.Weight < 0 {
			errs = append(errs, fmt.Sprintf("generate.card_tiers[%d].weight must be non-negative", i))
		}
		if tier.Low > tier.High {
			errs = append(errs, fmt.Sprintf("generate.card_tiers[%d].low must not exceed high", i))
		}
		tierWeight += tier.Weight
	}
	if len(g.CardTiers) == 0 || tierWeight <= 0 {
		errs = append(errs, "generate.card_tiers needs at least one tier with positive weight")
	}

	seen := make(map[string]bool)
	for i, tt := range g.TransactionTypes {
		if tt.Probability < 0 {
			errs = append(errs, fmt.Sprintf("generate.transaction_types[%d] (%s) probability must be non-negative", i, tt.Name))
		}
		if tt.AmountLow > tt.AmountHigh {
			errs = append(errs, fmt.Sprintf("generate.transaction_types[%d] (%s) amount_low must not exceed amount_high", i, tt.Name))
		}
		if seen[tt.Name] {
			errs = append(errs, fmt.Sprintf("generate.transaction_types lists %q twice", tt.Name))
		}
		seen[tt.Name] = true
	}

	for i, m := range g.CountryMultipliers {
		if m.Multiplier <= 0 {
			errs = append(errs, fmt.Sprintf("generate.country_multipliers[%d] (%s) must be positive", i, m.Country))
		}
	}

	if len(g.Timeline) == 0 {
		errs = append(errs, "generate.timeline must have at least one period")
	}

	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, "database.max_open_conns must be >= 1")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "database.max_idle_conns should not exceed max_open_conns")
	}

	if len(errs) > 0 {
		return apperrors.Configuration(apperrors.CodeInvalidConfig, "validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateWindow(prefix string, start, end int) []string {
	if start < 1 || end > 31 || start > end {
		return []string{fmt.Sprintf("%s window must satisfy 1 <= window_start <= window_end <= 31", prefix)}
	}
	return nil
}
