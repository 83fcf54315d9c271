// Package database loads generated ledgers into MySQL or MariaDB.
//
// FILE: scanners.go
// PURPOSE: Row scanning helper functions for converting query results to
// structs.
//
// KEY FUNCTIONS:
// - scanBatchStats: Scans the batch summary row
//
// RELATED FILES:
// - queries_ledger.go: Uses scanBatchStats
package database

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// BatchStats summarizes the rows of one import batch.
type BatchStats struct {
	BatchID   string
	Rows      int64
	NetAmount decimal.Decimal
	FirstDay  time.Time
	LastDay   time.Time
}

func scanBatchStats(row *sql.Row) (*BatchStats, error) {
	s := &BatchStats{}

	// MIN/MAX are NULL for an empty batch
	var first, last sql.NullTime
	if err := row.Scan(&s.Rows, &s.NetAmount, &first, &last); err != nil {
		return nil, err
	}
	if first.Valid {
		s.FirstDay = first.Time
	}
	if last.Valid {
		s.LastDay = last.Time
	}
	return s, nil
}
