package generator

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/willfong/ledgergen/internal/errors"
	"github.com/willfong/ledgergen/internal/models"
)

var errWriterClosed = errors.New("writer is closed")

// CSVWriter provides a buffered CSV writer for the ledger file.
// Optionally supports xz compression via external xz process.
type CSVWriter struct {
	file       *os.File  // Only used for uncompressed output
	xzWriter   *XZWriter // Only used for compressed output
	buffer     *bufio.Writer
	writer     *csv.Writer
	mu         sync.Mutex
	rowCount   int64
	path       string
	closed     bool
	compressed bool
}

// CSVWriterConfig holds configuration for creating a CSV writer
type CSVWriterConfig struct {
	// Directory where the file will be created
	OutputDir string
	// Filename including extension (e.g., "ledger.csv")
	Filename string
	// Column headers
	Headers []string
	// Buffer size in bytes (default: 64KB)
	BufferSize int
	// Enable xz compression (appends .xz to the filename)
	Compress bool
	// XZ compression preset 0-9 (default: 6). Higher = smaller but slower
	XZPreset int
}

// OutputPath returns where a writer with cfg will put its file.
func (cfg CSVWriterConfig) OutputPath() string {
	name := cfg.Filename
	if cfg.Compress && !strings.HasSuffix(name, ".xz") {
		name += ".xz"
	}
	return filepath.Join(cfg.OutputDir, name)
}

// NewCSVWriter creates the output file and writes the header row.
// If Compress is true, output is piped through xz for compression.
func NewCSVWriter(cfg CSVWriterConfig) (*CSVWriter, error) {
	path := cfg.OutputPath()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, apperrors.IO(apperrors.CodeFileWrite, cfg.OutputDir, err)
	}

	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	var underlying io.Writer
	var file *os.File
	var xzWriter *XZWriter

	if cfg.Compress {
		var err error
		xzWriter, err = NewXZWriter(XZWriterConfig{
			Path:   path,
			Preset: cfg.XZPreset,
		})
		if err != nil {
			return nil, err
		}
		underlying = xzWriter
	} else {
		var err error
		file, err = os.Create(path)
		if err != nil {
			return nil, apperrors.IO(apperrors.CodeFileWrite, path, err)
		}
		underlying = file
	}

	buffer := bufio.NewWriterSize(underlying, bufSize)
	writer := csv.NewWriter(buffer)

	cw := &CSVWriter{
		file:       file,
		xzWriter:   xzWriter,
		buffer:     buffer,
		writer:     writer,
		path:       path,
		compressed: cfg.Compress,
	}

	if len(cfg.Headers) > 0 {
		if err := writer.Write(cfg.Headers); err != nil {
			cw.closeUnderlying()
			return nil, apperrors.IO(apperrors.CodeFileWrite, path, err)
		}
	}

	return cw, nil
}

// NewLedgerWriter opens a CSV writer with the ledger column headers.
func NewLedgerWriter(outputDir, filename string, compress bool) (*CSVWriter, error) {
	return NewCSVWriter(CSVWriterConfig{
		OutputDir: outputDir,
		Filename:  filename,
		Headers:   models.CSVHeaders,
		Compress:  compress,
	})
}

// WriteRows writes multiple rows to the CSV file.
// This method is thread-safe.
func (w *CSVWriter) WriteRows(rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return apperrors.IO(apperrors.CodeFileWrite, w.path, errWriterClosed)
	}

	for _, row := range rows {
		if err := w.writer.Write(row); err != nil {
			return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
		}
		w.rowCount++
	}

	return nil
}

// WriteTransactions writes ledger rows in order.
func (w *CSVWriter) WriteTransactions(txs []models.Transaction) error {
	rows := make([][]string, len(txs))
	for i := range txs {
		rows[i] = txs[i].ToCSVRow()
	}
	return w.WriteRows(rows)
}

// Flush forces any buffered data to be written to disk.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
	}
	if err := w.buffer.Flush(); err != nil {
		return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
	}
	return nil
}

// Close flushes remaining data and closes the file.
// Always call Close when done writing.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.closeUnderlying()
		return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
	}

	if err := w.buffer.Flush(); err != nil {
		w.closeUnderlying()
		return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
	}

	return w.closeUnderlying()
}

// closeUnderlying closes the underlying writer (file or xz process)
func (w *CSVWriter) closeUnderlying() error {
	if w.compressed {
		return w.xzWriter.Close()
	}
	if err := w.file.Close(); err != nil {
		return apperrors.IO(apperrors.CodeFileWrite, w.path, err)
	}
	return nil
}

// RowCount returns the number of data rows written (excludes header).
func (w *CSVWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the full path to the output file (.csv or .csv.xz)
func (w *CSVWriter) Path() string {
	return w.path
}
