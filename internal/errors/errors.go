package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category groups errors by what the user has to fix.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryFile          Category = "file"
	CategoryVerification  Category = "verification"
	CategoryDatabase      Category = "database"
	CategoryInternal      Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// Configuration
	CodeInvalidConfig    Code = "invalid_config"
	CodeInvalidTimeline  Code = "invalid_timeline"
	CodeInvalidSchedule  Code = "invalid_schedule"
	CodeUnknownType      Code = "unknown_transaction_type"
	CodeMissingMerchants Code = "missing_merchants"

	// File
	CodeFileNotFound   Code = "file_not_found"
	CodeFileWrite      Code = "file_write"
	CodeFileRead       Code = "file_read"
	CodeInvalidFormat  Code = "invalid_format"
	CodeCompressorFail Code = "compressor_failed"

	// Verification
	CodeBalanceMismatch Code = "balance_mismatch"
	CodeOrdering        Code = "ordering"
	CodeStipend         Code = "stipend"

	// Database
	CodeConnectionFailed Code = "connection_failed"
	CodeLoadFailed       Code = "load_failed"

	// Internal
	CodeUnexpected Code = "unexpected"
)

// Context carries extra key/value detail for the CLI to print.
type Context map[string]interface{}

// LedgerError is the error type returned across package boundaries.
type LedgerError struct {
	Category   Category
	Code       Code
	Message    string
	Suggestion string
	Context    Context
	Cause      error
	StackTrace errors.StackTrace
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *LedgerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the category onto the process exit status.
func (e *LedgerError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryVerification:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryInternal:
		return 5
	case CategoryDatabase:
		return 6
	default:
		return 1
	}
}

// WithContext adds a key/value pair and returns the receiver.
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion sets the hint printed after the message.
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

// New creates a LedgerError with a stack trace captured at the call site.
func New(category Category, code Code, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap attaches category and code to an existing error. Returns nil for a nil err.
func Wrap(err error, category Category, code Code, message string) *LedgerError {
	if err == nil {
		return nil
	}
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// Configuration reports an invalid setting.
func Configuration(code Code, format string, args ...interface{}) *LedgerError {
	return New(CategoryConfiguration, code, fmt.Sprintf(format, args...)).
		WithSuggestion("check the config file, LEDGERGEN_* environment variables and flags")
}

// IO wraps a file system failure for path.
func IO(code Code, path string, err error) *LedgerError {
	var message, suggestion string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check the file path"
	case CodeFileWrite:
		message = fmt.Sprintf("cannot write %s", path)
		suggestion = "check that the output directory exists and is writable"
	case CodeFileRead:
		message = fmt.Sprintf("cannot read %s", path)
		suggestion = "check file permissions"
	case CodeInvalidFormat:
		message = fmt.Sprintf("malformed ledger file %s", path)
		suggestion = "regenerate the file with 'ledgergen generate'"
	case CodeCompressorFail:
		message = fmt.Sprintf("xz failed for %s", path)
		suggestion = "install xz-utils or run without --compress"
	default:
		message = fmt.Sprintf("file error: %s", path)
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}
	return result.WithSuggestion(suggestion).WithContext("path", path)
}

// Verification reports a broken ledger invariant at a given row.
func Verification(code Code, row int, format string, args ...interface{}) *LedgerError {
	return New(CategoryVerification, code, fmt.Sprintf(format, args...)).
		WithContext("row", row)
}

// Database wraps a driver failure.
func Database(code Code, message string, err error) *LedgerError {
	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryDatabase, code, message)
	} else {
		result = New(CategoryDatabase, code, message)
	}
	switch code {
	case CodeConnectionFailed:
		result.WithSuggestion("check the DSN and that the server is reachable")
	case CodeLoadFailed:
		result.WithSuggestion("make sure local_infile is enabled on the server")
	}
	return result
}

// Internal wraps an unexpected failure.
func Internal(operation string, err error) *LedgerError {
	return Wrap(err, CategoryInternal, CodeUnexpected, fmt.Sprintf("unexpected error during %s", operation))
}

// AsLedgerError extracts a LedgerError from an error chain.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	le, ok := AsLedgerError(err)
	return ok && le.Code == code
}

// ExitCode returns the exit status for any error; nil is 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if le, ok := AsLedgerError(err); ok {
		return le.ExitCode()
	}
	return 1
}
