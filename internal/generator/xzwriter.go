package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	apperrors "github.com/willfong/ledgergen/internal/errors"
)

// XZWriter streams data through the xz compressor to produce .xz files.
// It spawns an external xz process and pipes data through stdin.
type XZWriter struct {
	file    *os.File       // Output .xz file
	cmd     *exec.Cmd      // xz subprocess
	stdin   io.WriteCloser // Pipe to xz stdin
	path    string         // Full path to output file
	mu      sync.Mutex
	closed  bool
	waitErr error         // Error from xz process
	waitCh  chan struct{} // Signal when xz completes
}

// XZWriterConfig holds configuration for the XZ writer
type XZWriterConfig struct {
	// Full path of the compressed file, e.g. "output/ledger.csv.xz"
	Path string
	// Compression preset 0-9 (default: 6). Higher = smaller but slower
	Preset int
}

// NewXZWriter creates a streaming XZ compressor that pipes data through
// the external xz command.
func NewXZWriter(cfg XZWriterConfig) (*XZWriter, error) {
	path := cfg.Path
	file, err := os.Create(path)
	if err != nil {
		return nil, apperrors.IO(apperrors.CodeFileWrite, path, err)
	}

	preset := cfg.Preset
	if preset < 0 || preset > 9 {
		preset = 6
	}

	// -c = write to stdout, -<N> = compression level
	cmd := exec.Command("xz", "-c", fmt.Sprintf("-%d", preset))
	cmd.Stdout = file
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, apperrors.IO(apperrors.CodeCompressorFail, path, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		file.Close()
		os.Remove(path)
		return nil, apperrors.IO(apperrors.CodeCompressorFail, path, err)
	}

	w := &XZWriter{
		file:   file,
		cmd:    cmd,
		stdin:  stdin,
		path:   path,
		waitCh: make(chan struct{}),
	}

	go func() {
		w.waitErr = cmd.Wait()
		close(w.waitCh)
	}()

	return w, nil
}

// Write implements io.Writer, streaming data to the xz compressor
func (w *XZWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, fmt.Errorf("writer is closed")
	}

	return w.stdin.Write(p)
}

// Close finishes compression and waits for xz to exit.
func (w *XZWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	// EOF tells xz to finish the stream.
	if err := w.stdin.Close(); err != nil {
		w.file.Close()
		return apperrors.IO(apperrors.CodeCompressorFail, w.path, err)
	}

	<-w.waitCh

	fileErr := w.file.Close()

	// xz error takes precedence
	if w.waitErr != nil {
		return apperrors.IO(apperrors.CodeCompressorFail, w.path, w.waitErr)
	}
	if fileErr != nil {
		return apperrors.IO(apperrors.CodeFileWrite, w.path, fileErr)
	}

	return nil
}

// Path returns the full path to the .xz file
func (w *XZWriter) Path() string {
	return w.path
}

// IsCompressed reports whether path names an xz file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".xz")
}

// DecompressXZ expands src into a new temporary file and returns its path.
// The caller removes the file.
func DecompressXZ(ctx context.Context, src string) (string, error) {
	tmp, err := os.CreateTemp("", "ledgergen-*.csv")
	if err != nil {
		return "", apperrors.IO(apperrors.CodeFileWrite, os.TempDir(), err)
	}

	cmd := exec.CommandContext(ctx, "xz", "-d", "-c", src)
	cmd.Stdout = tmp
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	closeErr := tmp.Close()
	if runErr != nil {
		os.Remove(tmp.Name())
		return "", apperrors.IO(apperrors.CodeCompressorFail, src, runErr)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", apperrors.IO(apperrors.CodeFileWrite, tmp.Name(), closeErr)
	}
	return tmp.Name(), nil
}

// CheckXZAvailable verifies that xz is installed and accessible.
// Returns nil if xz is available, or an error with installation guidance.
func CheckXZAvailable() error {
	cmd := exec.Command("xz", "--version")
	if err := cmd.Run(); err != nil {
		return apperrors.IO(apperrors.CodeCompressorFail, "xz", err).
			WithSuggestion("install with: apt install xz-utils (Linux) or brew install xz (macOS)")
	}
	return nil
}
