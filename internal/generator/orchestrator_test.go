package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/utils"
)

func testGenerateConfig(t *testing.T) config.GenerateConfig {
	t.Helper()
	g := config.DefaultConfig().Generate
	g.Seed = 42
	g.OutputDir = t.TempDir()
	return g
}

func TestBuildDefaultLedgerInvariants(t *testing.T) {
	g := testGenerateConfig(t)
	o, err := NewOrchestrator(g, OrchestratorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ledger, err := o.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	txs := ledger.Transactions
	if len(txs) == 0 || len(txs) > g.NumTransactions {
		t.Fatalf("got %d rows for a target of %d", len(txs), g.NumTransactions)
	}

	tl := defaultTimeline(t)
	prev := ledger.InitialBalance
	stipends := make(map[string]int)
	lumpSums := 0
	for i := range txs {
		tx := &txs[i]

		if !tx.Balance.Equal(prev.Add(tx.Amount)) {
			t.Fatalf("row %d: balance %s != %s + %s", i, tx.Balance, prev, tx.Amount)
		}
		prev = tx.Balance

		if i > 0 && tx.Date.Before(txs[i-1].Date) {
			t.Fatalf("row %d is out of order", i)
		}

		country, city := tl.Lookup(tx.Date)
		if tx.Country != country || tx.City != city {
			t.Errorf("row %d on %s is in %s/%s, timeline says %s/%s",
				i, tx.Date.Format(utils.DateLayout), tx.Country, tx.City, country, city)
		}
		if tx.Merchant == "" {
			t.Errorf("row %d has no merchant", i)
		}

		switch tx.Kind {
		case models.EventMonthlyStipend:
			stipends[tx.Date.Format("2006-01")]++
			if tx.Amount.LessThan(o.synthesizer.amounts.StipendFloor()) {
				t.Errorf("row %d: stipend %s below floor", i, tx.Amount)
			}
		case models.EventLumpSum:
			lumpSums++
		}
	}
	if !prev.Equal(ledger.FinalBalance) {
		t.Errorf("final balance %s, last row %s", ledger.FinalBalance, prev)
	}

	// 2024-09 through 2026-04.
	if len(stipends) != 20 {
		t.Errorf("stipends in %d months, want 20", len(stipends))
	}
	for month, n := range stipends {
		if n != 1 {
			t.Errorf("%s has %d stipends", month, n)
		}
	}
	if lumpSums != 2 {
		t.Errorf("lump sums = %d, want 2", lumpSums)
	}

	r := Summarize(ledger)
	if !r.TotalIncome.Sub(r.TotalExpenses).Equal(r.FinalBalance.Sub(r.InitialBalance)) {
		t.Errorf("income %s - expenses %s != balance change", r.TotalIncome, r.TotalExpenses)
	}
	if r.Rows+r.Collisions+r.Overflow != g.NumTransactions {
		t.Errorf("rows %d + collisions %d + overflow %d != %d", r.Rows, r.Collisions, r.Overflow, g.NumTransactions)
	}
}

func generateFile(t *testing.T, g config.GenerateConfig) []byte {
	t.Helper()
	o, err := NewOrchestrator(g, OrchestratorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	result, err := o.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestGenerateByteIdentical(t *testing.T) {
	g := testGenerateConfig(t)
	g.Workers = 1
	single := generateFile(t, g)

	g.OutputDir = t.TempDir()
	g.Workers = 6
	parallel := generateFile(t, g)

	if !bytes.Equal(single, parallel) {
		t.Error("output differs between 1 and 6 workers")
	}

	g.OutputDir = t.TempDir()
	g.Seed = 43
	if bytes.Equal(single, generateFile(t, g)) {
		t.Error("different seeds produced the same ledger")
	}
}

func TestGenerateWritesCSV(t *testing.T) {
	g := testGenerateConfig(t)
	var lastDone, lastTotal int64
	o, err := NewOrchestrator(g, OrchestratorOptions{
		OnProgress: func(done, total int64) { lastDone, lastTotal = done, total },
	})
	if err != nil {
		t.Fatal(err)
	}
	result, err := o.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Path != filepath.Join(g.OutputDir, "ledger.csv") {
		t.Errorf("Path = %s", result.Path)
	}
	if result.Seed != 42 {
		t.Errorf("Seed = %d", result.Seed)
	}
	if lastDone != lastTotal || lastTotal != int64(result.Rows) {
		t.Errorf("progress ended at %d/%d for %d rows", lastDone, lastTotal, result.Rows)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if lines[0] != strings.Join(models.CSVHeaders, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines)-1 != result.Rows {
		t.Errorf("%d data lines, result says %d", len(lines)-1, result.Rows)
	}

	var buf bytes.Buffer
	PrintSummary(&buf, result)
	if !strings.Contains(buf.String(), "Seed:           42") {
		t.Errorf("summary missing seed:\n%s", buf.String())
	}
}

func TestGenerateUnwritableDestination(t *testing.T) {
	g := testGenerateConfig(t)
	blocker := filepath.Join(g.OutputDir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	g.OutputDir = filepath.Join(blocker, "sub")

	o, err := NewOrchestrator(g, OrchestratorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = o.Generate(context.Background())
	if apperrors.ExitCode(err) != 2 {
		t.Errorf("expected a file error (exit 2), got %v", err)
	}
}

func TestNewOrchestratorRejectsBadSetup(t *testing.T) {
	g := testGenerateConfig(t)
	_, err := NewOrchestrator(g, OrchestratorOptions{
		Merchants: fixedMerchants{missing: map[string]bool{"France/" + models.CategoryEducation: true}},
	})
	if !apperrors.Is(err, apperrors.CodeMissingMerchants) {
		t.Errorf("expected coverage failure, got %v", err)
	}

	g = testGenerateConfig(t)
	g.TransactionTypes = append(g.TransactionTypes, config.TransactionTypeConfig{Name: "Cheque", Probability: 0.1})
	if _, err := NewOrchestrator(g, OrchestratorOptions{}); !apperrors.Is(err, apperrors.CodeUnknownType) {
		t.Errorf("expected unknown type, got %v", err)
	}

	g = testGenerateConfig(t)
	g.Timeline = g.Timeline[1:]
	if _, err := NewOrchestrator(g, OrchestratorOptions{}); !apperrors.Is(err, apperrors.CodeInvalidTimeline) {
		t.Errorf("expected timeline error, got %v", err)
	}
}

func TestBuildTargetBelowForced(t *testing.T) {
	g := testGenerateConfig(t)
	g.NumTransactions = 10

	o, err := NewOrchestrator(g, OrchestratorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Build(context.Background()); !apperrors.Is(err, apperrors.CodeInvalidSchedule) {
		t.Errorf("expected schedule error, got %v", err)
	}
}
