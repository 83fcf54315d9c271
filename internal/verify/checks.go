package verify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/generator/patterns"
	"github.com/willfong/ledgergen/internal/models"
)

// Locator answers where the account holder was on a date.
type Locator interface {
	Lookup(date time.Time) (country, city string)
}

// Options tunes the checks to the configuration the ledger was generated
// with.
type Options struct {
	// InitialBalance, when set, anchors the first row's balance.
	InitialBalance *decimal.Decimal
	// StipendFloor is the lowest legal stipend.
	StipendFloor decimal.Decimal
	// LumpSumLow separates stipends from lump sums among top-ups.
	LumpSumLow decimal.Decimal
	// Start and End bound the months that must carry a stipend. When zero
	// the months of the first and last rows are used.
	Start time.Time
	End   time.Time
	// Timeline enables the location check.
	Timeline Locator
}

// Check is the outcome of one invariant.
type Check struct {
	Name   string
	Passed bool
	Detail string
	// Line of the first offending row, 0 when not row-specific.
	Line int
	code apperrors.Code
}

// Report collects the results of every check.
type Report struct {
	Rows   int
	Checks []Check
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Err returns a verification error for the first failed check, or nil.
func (r *Report) Err() error {
	for _, c := range r.Checks {
		if !c.Passed {
			return apperrors.Verification(c.code, c.Line, "%s: %s", c.Name, c.Detail)
		}
	}
	return nil
}

// Run applies every check to rows.
func Run(rows []Row, opts Options) *Report {
	r := &Report{Rows: len(rows)}
	r.Checks = append(r.Checks,
		checkOrdering(rows),
		checkBalances(rows, opts.InitialBalance),
		checkRowFields(rows),
		checkStipendFloor(rows, opts),
		checkStipendPerMonth(rows, opts),
	)
	if opts.Timeline != nil {
		r.Checks = append(r.Checks, checkLocations(rows, opts.Timeline))
	}
	return r
}

func pass(name, detail string) Check {
	return Check{Name: name, Passed: true, Detail: detail}
}

func fail(name string, code apperrors.Code, line int, format string, args ...interface{}) Check {
	return Check{Name: name, Detail: fmt.Sprintf(format, args...), Line: line, code: code}
}

func checkOrdering(rows []Row) Check {
	const name = "ordering"
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Before(rows[i-1].Date) {
			return fail(name, apperrors.CodeOrdering, rows[i].Line,
				"line %d dated %s precedes line %d dated %s",
				rows[i].Line, rows[i].Date.Format("2006-01-02"),
				rows[i-1].Line, rows[i-1].Date.Format("2006-01-02"))
		}
	}
	return pass(name, "rows are in date order")
}

func checkBalances(rows []Row, initial *decimal.Decimal) Check {
	const name = "balance continuity"
	if len(rows) == 0 {
		return pass(name, "empty ledger")
	}
	if initial != nil {
		if want := initial.Add(rows[0].Amount); !rows[0].Balance.Equal(want) {
			return fail(name, apperrors.CodeBalanceMismatch, rows[0].Line,
				"first balance %s, expected %s + %s = %s",
				rows[0].Balance.StringFixed(2), initial.StringFixed(2), rows[0].Amount.StringFixed(2), want.StringFixed(2))
		}
	}
	for i := 1; i < len(rows); i++ {
		want := rows[i-1].Balance.Add(rows[i].Amount)
		if !rows[i].Balance.Equal(want) {
			return fail(name, apperrors.CodeBalanceMismatch, rows[i].Line,
				"balance %s, expected %s + %s = %s",
				rows[i].Balance.StringFixed(2), rows[i-1].Balance.StringFixed(2),
				rows[i].Amount.StringFixed(2), want.StringFixed(2))
		}
	}
	return pass(name, fmt.Sprintf("closing balance %s", rows[len(rows)-1].Balance.StringFixed(2)))
}

func checkRowFields(rows []Row) Check {
	const name = "row fields"
	for _, r := range rows {
		if !r.AbsAmount.Equal(r.Amount.Abs()) {
			return fail(name, apperrors.CodeInvalidFormat, r.Line,
				"Amount_Abs %s does not match Amount %s", r.AbsAmount.StringFixed(2), r.Amount.StringFixed(2))
		}
		if r.WeekdayName != r.Date.Weekday().String() {
			return fail(name, apperrors.CodeInvalidFormat, r.Line,
				"Weekday %s but %s is a %s", r.WeekdayName, r.Date.Format("2006-01-02"), r.Date.Weekday())
		}
		if r.Hour < 0 || r.Hour > 23 {
			return fail(name, apperrors.CodeInvalidFormat, r.Line, "hour %d out of range", r.Hour)
		}
	}
	return pass(name, "amounts, weekdays and hours consistent")
}

// isStipend classifies a row. Top-ups below the lump-sum band are stipends.
func isStipend(r Row, opts Options) bool {
	return r.Type == models.TxTypeTopup && r.Amount.LessThan(opts.LumpSumLow)
}

func checkStipendFloor(rows []Row, opts Options) Check {
	const name = "stipend floor"
	n := 0
	for _, r := range rows {
		if !isStipend(r, opts) {
			continue
		}
		n++
		if r.Amount.LessThan(opts.StipendFloor) {
			return fail(name, apperrors.CodeStipend, r.Line,
				"stipend %s below floor %s", r.Amount.StringFixed(2), opts.StipendFloor)
		}
	}
	return pass(name, fmt.Sprintf("%d stipends at or above %s", n, opts.StipendFloor))
}

func checkStipendPerMonth(rows []Row, opts Options) Check {
	const name = "one stipend per month"
	if len(rows) == 0 {
		return pass(name, "empty ledger")
	}

	start, end := opts.Start, opts.End
	if start.IsZero() {
		start = rows[0].Date
	}
	if end.IsZero() {
		end = rows[len(rows)-1].Date.AddDate(0, 0, 1)
	}

	counts := make(map[time.Time]int)
	firstLine := make(map[time.Time]int)
	for _, r := range rows {
		if !isStipend(r, opts) {
			continue
		}
		m := time.Date(r.Date.Year(), r.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[m]++
		if counts[m] == 2 {
			firstLine[m] = r.Line
		}
	}

	months := patterns.Months(start, end)
	for _, m := range months {
		switch counts[m] {
		case 1:
		case 0:
			return fail(name, apperrors.CodeStipend, 0, "no stipend in %s", m.Format("2006-01"))
		default:
			return fail(name, apperrors.CodeStipend, firstLine[m],
				"%d stipends in %s", counts[m], m.Format("2006-01"))
		}
	}
	return pass(name, fmt.Sprintf("%d months covered", len(months)))
}

func checkLocations(rows []Row, tl Locator) Check {
	const name = "location"
	checked := 0
	for _, r := range rows {
		if r.Country == Unknown {
			continue
		}
		country, city := tl.Lookup(r.Date)
		if r.Country != country || r.City != city {
			return fail(name, apperrors.CodeInvalidFormat, r.Line,
				"%s/%s on %s, timeline says %s/%s",
				r.Country, r.City, r.Date.Format("2006-01-02"), country, city)
		}
		checked++
	}
	return pass(name, fmt.Sprintf("%d rows match the timeline", checked))
}
