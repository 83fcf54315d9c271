package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willfong/ledgergen/internal/database"
	apperrors "github.com/willfong/ledgergen/internal/errors"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Output the ledger table schema",
	Long: `Output the SQL that creates the ledger table.

The schema targets MariaDB 10.6+ and MySQL 8+. The table name comes from
--table, database.table in the config file, or LEDGERGEN_DATABASE_TABLE.

Examples:
  ledgergen schema                           # Print to stdout
  ledgergen schema -o ledger.sql             # Save to a file
  ledgergen schema | mysql -u root ledger    # Create the table directly`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

var schemaOutputFile string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputFile, "output", "o", "", "output file (default: stdout)")
	schemaCmd.Flags().String("table", "ledger_transactions", "table name")
}

func runSchema(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"table": "database.table"}); err != nil {
		return err
	}
	table := viper.GetString("database.table")
	if !database.ValidTableName(table) {
		return apperrors.Configuration(apperrors.CodeInvalidConfig, "invalid table name %q", table)
	}
	ddl, err := database.SchemaSQL(table)
	if err != nil {
		return apperrors.Internal("rendering schema", err)
	}

	if schemaOutputFile == "" {
		fmt.Print(ddl)
		return nil
	}

	if err := os.WriteFile(schemaOutputFile, []byte(ddl), 0644); err != nil {
		return apperrors.IO(apperrors.CodeFileWrite, schemaOutputFile, err)
	}
	u := newUI()
	fmt.Fprintln(os.Stderr, u.Success("Schema written to "+schemaOutputFile))
	return nil
}
