package cmd

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willfong/ledgergen/internal/config"
	"github.com/willfong/ledgergen/internal/logging"
	"github.com/willfong/ledgergen/internal/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ledgergen",
	Short: "Synthetic personal-finance ledger generator",
	Long: `Generate a reproducible, realistic bank account ledger for a single
account holder who moves between cities over time.

Every month carries exactly one stipend, lump sums land in configured
months, and the running balance is exact to the cent. The same seed
always produces the same file.

Defaults live in internal/config/defaults.go. Any scalar setting can be
overridden from a config file (--config) or a LEDGERGEN_* environment
variable, for example LEDGERGEN_GENERATE_SEED=42.

Example usage:
  ledgergen generate --seed 42
  ledgergen verify --input ./output/ledger.csv
  ledgergen import --db "user:pass@tcp(host:3306)/ledger"`,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./ledgergen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and animations")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Errors are rendered by the caller with exit codes
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// initConfig reads .env, the config file and LEDGERGEN_* variables.
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	config.SetDefaults()
	viper.SetEnvPrefix("LEDGERGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ledgergen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/ledgergen")
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if err := readConfigFile(); err != nil {
		return err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = viper.GetString("log.level")
	cfg.Format = logging.Format(viper.GetString("log.format"))
	if verbose {
		cfg.Level = "debug"
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return configError(err)
	}
	logging.SetGlobal(logger)
	return nil
}

func readConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		logging.Component("cli").Debugf("using config file %s", viper.ConfigFileUsed())
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && cfgFile == "" {
		return nil
	}
	return configError(err)
}

// loadConfig returns the merged, validated configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newUI() *ui.UI {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}
	return u
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}
