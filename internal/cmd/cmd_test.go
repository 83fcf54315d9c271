package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
	"github.com/willfong/ledgergen/internal/verify"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText []string
	}{
		{"nil", nil, 0, nil},
		{"plain", errors.New("unknown flag"), 1, []string{"unknown flag"}},
		{
			name:     "file",
			err:      apperrors.IO(apperrors.CodeFileNotFound, "/tmp/x.csv", nil),
			wantCode: 2,
			wantText: []string{"file not found", "path: /tmp/x.csv", "hint: check the file path"},
		},
		{
			name:     "verification",
			err:      apperrors.Verification(apperrors.CodeBalanceMismatch, 12, "balance off"),
			wantCode: 3,
			wantText: []string{"balance off", "row: 12"},
		},
		{
			name:     "configuration",
			err:      configError(errors.New("bad yaml")),
			wantCode: 4,
			wantText: []string{"invalid configuration: bad yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := HandleError(&buf, tt.err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d", got, tt.wantCode)
			}
			for _, want := range tt.wantText {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("nil error printed %q", buf.String())
			}
		})
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append(args, "--no-color"))
	return rootCmd.Execute()
}

func TestGenerateThenVerify(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, "generate", "--seed", "42", "--output", dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(dir, "ledger.csv")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("ledger not written: %v", err)
	}

	if err := execute(t, "verify", "--input", path); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := os.WriteFile(path, []byte("Type,Amount\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := execute(t, "verify", "--input", path)
	if apperrors.ExitCode(err) != 2 {
		t.Errorf("malformed file: exit code %d, err %v", apperrors.ExitCode(err), err)
	}
}

func TestSchemaToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ledger.sql")
	if err := execute(t, "schema", "-o", out, "--table", "ledger_test"); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "`ledger_test`") {
		t.Errorf("schema does not use the table flag:\n%s", raw)
	}

	err = execute(t, "schema", "-o", out, "--table", "bad-name")
	if apperrors.ExitCode(err) != 4 {
		t.Errorf("bad table name: exit code %d", apperrors.ExitCode(err))
	}
}

func TestImportRequiresDSN(t *testing.T) {
	t.Setenv("LEDGERGEN_DATABASE_DSN", "")
	err := execute(t, "import", "--input", filepath.Join(t.TempDir(), "ledger.csv"))
	if apperrors.ExitCode(err) != 4 {
		t.Errorf("missing DSN: exit code %d, err %v", apperrors.ExitCode(err), err)
	}
}

func TestVerifyOptionsKeepFractionalFloor(t *testing.T) {
	g := config.DefaultConfig().Generate
	g.Stipend.Floor = 1000.004

	opts, err := verifyOptions(g, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("1000.004"); !opts.StipendFloor.Equal(want) {
		t.Fatalf("StipendFloor = %s, want %s", opts.StipendFloor, want)
	}

	rows := []verify.Row{{
		Transaction: models.Transaction{
			Type:   models.TxTypeTopup,
			Amount: decimal.RequireFromString("1000.00"),
		},
		Line: 2,
	}}
	checked := false
	for _, c := range verify.Run(rows, opts).Checks {
		if c.Name != "stipend floor" {
			continue
		}
		checked = true
		if c.Passed {
			t.Errorf("stipend 1000.00 passed against floor 1000.004: %s", c.Detail)
		}
	}
	if !checked {
		t.Error("no stipend floor check in the report")
	}
}
