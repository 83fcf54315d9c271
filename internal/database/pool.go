package database

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/willfong/ledgergen/internal/config"
	apperrors "github.com/willfong/ledgergen/internal/errors"
)

// prepareDSN parses dsn and turns on the options the ledger loader needs:
// parseTime for DATE columns and multiStatements so the schema can be
// applied in one call. Local infile access goes through RegisterLocalFile,
// so allowAllFiles stays off.
func prepareDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

// MaskDSN hides the password in a DSN for display.
func MaskDSN(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "(invalid DSN)"
	}
	if cfg.Passwd != "" {
		cfg.Passwd = "****"
	}
	return cfg.FormatDSN()
}

// Pool wraps a sql.DB with query counters and lifecycle management
type Pool struct {
	db     *sql.DB
	config config.DatabaseConfig

	totalQueries   atomic.Int64
	failedQueries  atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewPool creates a new database connection pool with the given configuration
func NewPool(cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.DSN == "" {
		return nil, apperrors.Configuration(apperrors.CodeInvalidConfig, "database DSN is required").
			WithSuggestion("pass --db or set LEDGERGEN_DATABASE_DSN")
	}

	dsn, err := prepareDSN(cfg.DSN)
	if err != nil {
		return nil, apperrors.Configuration(apperrors.CodeInvalidConfig, "invalid DSN: %v", err).
			WithSuggestion("expected user:password@tcp(host:port)/database")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, apperrors.Database(apperrors.CodeConnectionFailed, "failed to open database", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Pool{
		db:     db,
		config: cfg,
	}, nil
}

// Connect verifies the database connection is working
func (p *Pool) Connect(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return apperrors.Database(apperrors.CodeConnectionFailed, "failed to ping database", err).
			WithContext("dsn", MaskDSN(p.config.DSN))
	}
	return nil
}

// Close gracefully shuts down the connection pool
func (p *Pool) Close() error {
	return p.db.Close()
}

// DB returns the underlying sql.DB for direct access when needed
func (p *Pool) DB() *sql.DB {
	return p.db
}

// QueryRowContext executes a query expected to return at most one row
func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := p.db.QueryRowContext(ctx, query, args...)
	p.recordQuery(time.Since(start), row.Err())
	return row
}

// ExecContext executes a query that doesn't return rows
func (p *Pool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := p.db.ExecContext(ctx, query, args...)
	p.recordQuery(time.Since(start), err)
	return result, err
}

func (p *Pool) recordQuery(duration time.Duration, err error) {
	p.totalQueries.Add(1)
	p.totalLatencyNs.Add(duration.Nanoseconds())
	if err != nil {
		p.failedQueries.Add(1)
	}
}

// Stats returns current pool statistics
func (p *Pool) Stats() PoolStats {
	dbStats := p.db.Stats()
	total := p.totalQueries.Load()
	var avg time.Duration
	if total > 0 {
		avg = time.Duration(p.totalLatencyNs.Load() / total)
	}
	return PoolStats{
		OpenConnections: dbStats.OpenConnections,
		InUse:           dbStats.InUse,
		Idle:            dbStats.Idle,
		TotalQueries:    total,
		FailedQueries:   p.failedQueries.Load(),
		AvgLatency:      avg,
	}
}

// PoolStats contains connection pool and query statistics
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int

	TotalQueries  int64
	FailedQueries int64
	AvgLatency    time.Duration
}
