// Package config holds the generator's settings and their compile-time
// defaults. The defaults reproduce the reference ledger: a student moving
// Brussels -> Barcelona -> Berlin -> Paris between September 2024 and May 2026.
package config

// Volume and range
const (
	// NumTransactions is the target row count. Collisions between free and
	// forced dates are dropped, so the real count can be lower.
	NumTransactions = 720

	// StartDate is the first day of the generated range (inclusive).
	StartDate = "2024-09-01"

	// EndDate is the end of the generated range (exclusive).
	EndDate = "2026-05-01"

	// InitialBalance is the account balance before the first row.
	InitialBalance = 1500.0

	// WeekdayBias is the probability a free date is shifted onto Mon-Fri
	// rather than a weekend.
	WeekdayBias = 0.7

	// Currency is used for terminal summaries only.
	Currency = "EUR"
)

// Monthly stipend
const (
	// StipendFloor is the nominal stipend. Stipend rows never go below it.
	StipendFloor = 1000.0

	// StipendSpread is the width of the band above the floor.
	StipendSpread = 5.0

	// StipendWindowStart and StipendWindowEnd bound the day of month.
	StipendWindowStart = 1
	StipendWindowEnd   = 5
)

// Lump sums
const (
	LumpSumLow         = 1995.0
	LumpSumHigh        = 2005.0
	LumpSumWindowStart = 1
	LumpSumWindowEnd   = 5
)

// Transfers
const (
	// TransferOutgoingProbability is the share of transfers leaving the account.
	TransferOutgoingProbability = 0.9

	// RentProbability is the chance an outgoing transfer inside the rent
	// window is a rent payment.
	RentProbability = 0.25

	// RentWindowEnd is the last day of month rent can be paid on.
	RentWindowEnd = 5

	RentLow      = -625.0
	RentHigh     = -618.0
	BillLow      = -112.0
	BillHigh     = -10.0
	IncomingLow  = 1.0
	IncomingHigh = 40.0
)

// Output
const (
	OutputDir = "./output"
	Filename  = "ledger.csv"
)
