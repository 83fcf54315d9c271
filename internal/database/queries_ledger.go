// Package database loads generated ledgers into MySQL or MariaDB.
//
// FILE: queries_ledger.go
// PURPOSE: Ledger table operations: create the table, bulk load a CSV with
// LOAD DATA LOCAL INFILE, and summarize a loaded batch.
//
// KEY FUNCTIONS:
// - CreateTable: Applies the embedded schema
// - LoadLedger: Streams a ledger CSV into the table under a batch id
// - BatchSummary: Row count and totals for one batch
//
// RELATED FILES:
// - queries.go: Base Queries struct and SQL builders
// - scanners.go: Row scanning utilities
package database

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	apperrors "github.com/willfong/ledgergen/internal/errors"
)

// LoadResult describes one completed bulk load.
type LoadResult struct {
	BatchID string
	Rows    int64
}

// CreateTable creates the ledger table if it does not exist.
func (q *Queries) CreateTable(ctx context.Context) error {
	ddl, err := SchemaSQL(q.table)
	if err != nil {
		return apperrors.Internal("rendering schema", err)
	}
	for _, stmt := range SplitStatements(ddl) {
		if _, err := q.pool.ExecContext(ctx, stmt); err != nil {
			return apperrors.Database(apperrors.CodeLoadFailed, "failed to create table "+q.table, err)
		}
	}
	return nil
}

// LoadLedger bulk loads an uncompressed ledger CSV. Every row is tagged
// with a fresh batch id so a load can be inspected or rolled back as a
// unit.
func (q *Queries) LoadLedger(ctx context.Context, path string) (*LoadResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.IO(apperrors.CodeFileRead, path, err)
	}

	header, err := readHeader(absPath)
	if err != nil {
		return nil, err
	}
	columns, err := ColumnsForHeader(header)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryFile, apperrors.CodeInvalidFormat,
			"ledger header not recognized").WithContext("path", absPath)
	}

	mysql.RegisterLocalFile(absPath)
	defer mysql.DeregisterLocalFile(absPath)

	batchID := uuid.New().String()
	result, err := q.pool.ExecContext(ctx, LoadDataSQL(q.table, absPath, batchID, columns))
	if err != nil {
		return nil, apperrors.Database(apperrors.CodeLoadFailed, "LOAD DATA failed", err).
			WithContext("table", q.table).
			WithContext("batch", batchID)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.Database(apperrors.CodeLoadFailed, "failed to read affected rows", err)
	}
	return &LoadResult{BatchID: batchID, Rows: rows}, nil
}

// BatchSummary reports what a load put into the table.
func (q *Queries) BatchSummary(ctx context.Context, batchID string) (*BatchStats, error) {
	query := "SELECT COUNT(*), COALESCE(SUM(amount), 0), MIN(booked_on), MAX(booked_on) FROM `" +
		q.table + "` WHERE import_batch = ?"

	stats, err := scanBatchStats(q.pool.QueryRowContext(ctx, query, batchID))
	if err != nil {
		return nil, apperrors.Database(apperrors.CodeLoadFailed, "failed to summarize batch", err).
			WithContext("batch", batchID)
	}
	stats.BatchID = batchID
	return stats, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.IO(apperrors.CodeFileNotFound, path, err)
		}
		return nil, apperrors.IO(apperrors.CodeFileRead, path, err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, apperrors.IO(apperrors.CodeInvalidFormat, path, err)
	}
	return header, nil
}
