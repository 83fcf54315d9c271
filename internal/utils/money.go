package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits carried by every amount.
const MoneyPlaces = 2

// Currency represents a currency with its formatting rules
type Currency struct {
	Code         string
	Symbol       string
	SymbolFirst  bool
	ThousandsSep string
	DecimalSep   string
}

// Currencies the ledger can be displayed in. Amounts themselves carry no
// currency; this only affects terminal output.
var Currencies = map[string]Currency{
	"EUR": {Code: "EUR", Symbol: "€", SymbolFirst: true, ThousandsSep: ".", DecimalSep: ","},
	"USD": {Code: "USD", Symbol: "$", SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
	"GBP": {Code: "GBP", Symbol: "£", SymbolFirst: true, ThousandsSep: ",", DecimalSep: "."},
	"CHF": {Code: "CHF", Symbol: "CHF", SymbolFirst: true, ThousandsSep: "'", DecimalSep: "."},
}

// DefaultCurrency is used when a currency code is not found
var DefaultCurrency = Currencies["EUR"]

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RandomAmountInclusive draws a uniform amount in [low, high] in cents.
// Bounds with sub-cent parts are tightened inward so the result never leaves
// the band; a band holding no whole cent yields the cent just above low.
func RandomAmountInclusive(rng *Random, low, high decimal.Decimal) decimal.Decimal {
	lo := low.Shift(MoneyPlaces).Ceil().IntPart()
	hi := high.Shift(MoneyPlaces).Floor().IntPart()
	if lo >= hi {
		return decimal.New(lo, -MoneyPlaces)
	}
	return decimal.New(rng.Int64Range(lo, hi), -MoneyPlaces)
}

// FormatMoney renders d using the named currency's separators and symbol.
func FormatMoney(d decimal.Decimal, code string) string {
	c, ok := Currencies[code]
	if !ok {
		c = DefaultCurrency
	}

	neg := d.IsNegative()
	s := d.Abs().StringFixed(MoneyPlaces)
	whole, frac, _ := strings.Cut(s, ".")
	formatted := formatWithSeparator(whole, c.ThousandsSep) + c.DecimalSep + frac

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if c.SymbolFirst {
		b.WriteString(c.Symbol)
		b.WriteString(formatted)
	} else {
		b.WriteString(formatted)
		b.WriteByte(' ')
		b.WriteString(c.Symbol)
	}
	return b.String()
}

func formatWithSeparator(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
