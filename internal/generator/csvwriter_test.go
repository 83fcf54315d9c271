package generator

import (
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
)

func TestLedgerWriterRows(t *testing.T) {
	w, err := NewLedgerWriter(t.TempDir(), "ledger.csv", false)
	if err != nil {
		t.Fatal(err)
	}
	txs := []models.Transaction{
		{Type: models.TxTypeTopup, Product: models.ProductCurrent, Amount: decimal.NewFromInt(1000),
			Balance: decimal.NewFromInt(2500), Date: day(2024, 9, 2), Hour: 9,
			Merchant: "Bank Transfer", Category: models.CategoryIncome, Country: "Belgium", City: "Brussels"},
		{Type: models.TxTypeCardPayment, Product: models.ProductCurrent, Amount: decimal.RequireFromString("-12.4"),
			Balance: decimal.RequireFromString("2487.6"), Date: day(2024, 9, 3), Hour: 12,
			Merchant: "Delhaize", Category: models.CategoryFood, Country: "Belgium", City: "Brussels"},
	}
	if err := w.WriteTransactions(txs); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", w.RowCount())
	}

	raw, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 || lines[0] != strings.Join(models.CSVHeaders, ",") {
		t.Errorf("unexpected file:\n%s", raw)
	}
}

func TestWriteAfterCloseIsFileError(t *testing.T) {
	w, err := NewLedgerWriter(t.TempDir(), "ledger.csv", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	err = w.WriteTransactions([]models.Transaction{{Date: day(2024, 9, 2)}})
	if !apperrors.Is(err, apperrors.CodeFileWrite) {
		t.Errorf("expected file write error, got %v", err)
	}
	if apperrors.ExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", apperrors.ExitCode(err))
	}
	if err := w.WriteRows([][]string{{"x"}}); apperrors.ExitCode(err) != 2 {
		t.Errorf("WriteRows after close: %v", err)
	}
}
