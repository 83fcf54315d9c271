// Package verify re-reads ledger files and checks them against the
// generator's invariants.
package verify

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/generator"
	"github.com/willfong/ledgergen/internal/models"
)

// Unknown fills Country and City for ledgers written before those columns
// existed.
const Unknown = "Unknown"

var requiredColumns = []string{
	"Type", "Product", "Amount", "Balance",
	"Year", "Month", "Day", "Weekday", "Hour",
	"Amount_Abs", "Description_Anon", "Merchant_Category",
}

// Row is one parsed ledger line. Line is the 1-based file line, header
// included.
type Row struct {
	models.Transaction
	Line        int
	WeekdayName string
	AbsAmount   decimal.Decimal
}

// ReadFile parses a ledger CSV, decompressing .xz files first.
func ReadFile(ctx context.Context, path string) ([]Row, error) {
	src := path
	if generator.IsCompressed(path) {
		if err := generator.CheckXZAvailable(); err != nil {
			return nil, err
		}
		tmp, err := generator.DecompressXZ(ctx, path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		src = tmp
	}

	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.IO(apperrors.CodeFileNotFound, path, err)
		}
		return nil, apperrors.IO(apperrors.CodeFileRead, path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		if le, ok := apperrors.AsLedgerError(err); ok {
			le.WithContext("path", path)
		}
		return nil, err
	}
	return rows, nil
}

// Read parses ledger rows from r. Columns are matched by header name.
func Read(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, formatError(1, "missing header: %v", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, formatError(1, "missing column %q", name)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatError(line, "%v", err)
		}
		if len(record) != len(header) {
			return nil, formatError(line, "expected %d fields, got %d", len(header), len(record))
		}
		row, err := parseRow(record, index, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, index map[string]int, line int) (Row, error) {
	get := func(name string) string {
		if i, ok := index[name]; ok {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	num := func(name string) (int, error) {
		v, err := strconv.Atoi(get(name))
		if err != nil {
			return 0, formatError(line, "column %s: %v", name, err)
		}
		return v, nil
	}
	money := func(name string) (decimal.Decimal, error) {
		v, err := decimal.NewFromString(get(name))
		if err != nil {
			return decimal.Zero, formatError(line, "column %s: %v", name, err)
		}
		return v, nil
	}

	row := Row{Line: line, WeekdayName: get("Weekday")}
	var err error
	if row.Amount, err = money("Amount"); err != nil {
		return row, err
	}
	if row.Balance, err = money("Balance"); err != nil {
		return row, err
	}
	if row.AbsAmount, err = money("Amount_Abs"); err != nil {
		return row, err
	}

	year, err := num("Year")
	if err != nil {
		return row, err
	}
	month, err := num("Month")
	if err != nil {
		return row, err
	}
	day, err := num("Day")
	if err != nil {
		return row, err
	}
	row.Date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if row.Date.Year() != year || int(row.Date.Month()) != month || row.Date.Day() != day {
		return row, formatError(line, "invalid date %04d-%02d-%02d", year, month, day)
	}
	if row.Hour, err = num("Hour"); err != nil {
		return row, err
	}

	row.Type = models.TransactionType(get("Type"))
	row.Product = models.Product(get("Product"))
	row.Merchant = get("Description_Anon")
	row.Category = get("Merchant_Category")
	row.Country = get("Country")
	if row.Country == "" {
		row.Country = Unknown
	}
	row.City = get("City")
	if row.City == "" {
		row.City = Unknown
	}
	return row, nil
}

func formatError(line int, format string, args ...interface{}) error {
	return apperrors.New(apperrors.CategoryFile, apperrors.CodeInvalidFormat,
		fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...)).
		WithSuggestion("regenerate the file with 'ledgergen generate'").
		WithContext("line", line)
}
