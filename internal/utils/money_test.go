package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRandomAmountInclusive(t *testing.T) {
	rng := NewRandom(7)
	low := decimal.RequireFromString("1000")
	high := decimal.RequireFromString("1000.02")

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		a := RandomAmountInclusive(rng, low, high)
		if a.LessThan(low) || a.GreaterThan(high) {
			t.Fatalf("out of range: %s", a)
		}
		seen[a.StringFixed(2)] = true
	}
	for _, want := range []string{"1000.00", "1000.01", "1000.02"} {
		if !seen[want] {
			t.Errorf("never drew %s", want)
		}
	}
}

func TestRandomAmountInclusiveSubCentBounds(t *testing.T) {
	rng := NewRandom(3)
	tests := []struct {
		name      string
		low, high string
		want      string
	}{
		{"floor rounds up", "1000.004", "1000.004", "1000.01"},
		{"band without a whole cent", "1000.001", "1000.009", "1000.01"},
		{"negative bounds", "-2.005", "-2.005", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low := decimal.RequireFromString(tt.low)
			got := RandomAmountInclusive(rng, low, decimal.RequireFromString(tt.high))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if got.LessThan(low) {
				t.Errorf("%s is below the low bound %s", got, low)
			}
		})
	}

	high := decimal.RequireFromString("1000.029")
	for i := 0; i < 200; i++ {
		a := RandomAmountInclusive(rng, decimal.RequireFromString("1000.004"), high)
		if a.LessThan(decimal.RequireFromString("1000.01")) || a.GreaterThan(decimal.RequireFromString("1000.02")) {
			t.Fatalf("out of tightened band: %s", a)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"12.345", "12.35"},
		{"-12.345", "-12.35"},
		{"0.004", "0"},
		{"7", "7"},
	}
	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1234.5", "EUR", "€1.234,50"},
		{"-625.00", "EUR", "-€625,00"},
		{"1234567.89", "USD", "$1,234,567.89"},
		{"12", "XXX", "€12,00"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount), tt.code)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2024-09-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Location() != time.UTC || d.Day() != 1 {
		t.Errorf("unexpected parse result %v", d)
	}
	if _, err := ParseDate("01/09/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}

	end := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(d, end); got != 61 {
		t.Errorf("DaysBetween = %d, want 61", got)
	}
	if got := DaysInMonth(2024, time.February); got != 29 {
		t.Errorf("DaysInMonth(2024-02) = %d, want 29", got)
	}
}
