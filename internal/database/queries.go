// Package database loads generated ledgers into MySQL or MariaDB.
//
// FILE: queries.go
// PURPOSE: Base Queries struct, the embedded table schema and the SQL
// builders shared by the loader.
//
// KEY TYPES:
// - Queries: Main struct holding the pool and target table
//
// RELATED FILES:
// - pool.go: Connection pool and DSN handling
// - queries_ledger.go: Table creation, bulk load and batch summary
// - scanners.go: Row scanning helper functions
package database

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	apperrors "github.com/willfong/ledgergen/internal/errors"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidTableName reports whether name can be spliced into SQL unquoted.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// Queries provides database operations against one ledger table
type Queries struct {
	pool  *Pool
	table string
}

// NewQueries creates a new Queries instance
func NewQueries(pool *Pool, table string) (*Queries, error) {
	if !ValidTableName(table) {
		return nil, apperrors.Configuration(apperrors.CodeInvalidConfig, "invalid table name %q", table)
	}
	return &Queries{pool: pool, table: table}, nil
}

// Table returns the target table name.
func (q *Queries) Table() string {
	return q.table
}

// SchemaSQL renders the ledger DDL for table.
func SchemaSQL(table string) (string, error) {
	if !ValidTableName(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	raw, err := schemaFS.ReadFile("schema/ledger.sql")
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("ledger").Parse(string(raw))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Table string }{table}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SplitStatements splits a SQL script on semicolons, dropping comment-only
// and empty statements.
func SplitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return statements
}

// csvToColumn maps ledger CSV headers onto table columns.
var csvToColumn = map[string]string{
	"Type":              "type",
	"Product":           "product",
	"Amount":            "amount",
	"Balance":           "balance",
	"Year":              "year",
	"Month":             "month",
	"Day":               "day",
	"Weekday":           "weekday",
	"Hour":              "hour",
	"Amount_Abs":        "amount_abs",
	"Description_Anon":  "description_anon",
	"Merchant_Category": "merchant_category",
	"Country":           "country",
	"City":              "city",
}

// ColumnsForHeader maps a CSV header row onto table columns in file order.
// Files written before Country and City existed load with the column
// defaults.
func ColumnsForHeader(header []string) ([]string, error) {
	columns := make([]string, 0, len(header))
	for _, h := range header {
		col, ok := csvToColumn[strings.TrimSpace(h)]
		if !ok {
			return nil, fmt.Errorf("unexpected ledger column %q", h)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// LoadDataSQL builds the LOAD DATA statement for a ledger CSV at path,
// tagging every row with batchID.
func LoadDataSQL(table, path, batchID string, columns []string) string {
	return fmt.Sprintf(`LOAD DATA LOCAL INFILE '%s'
INTO TABLE `+"`%s`"+`
CHARACTER SET utf8mb4
FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '"'
LINES TERMINATED BY '\n'
IGNORE 1 LINES
(%s)
SET import_batch = '%s'`,
		escapeLiteral(path), table, strings.Join(columns, ", "), escapeLiteral(batchID))
}

func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
