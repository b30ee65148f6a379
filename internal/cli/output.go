package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"orders-management/internal/apperr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitRejected     = 1 // Business rule rejected the request (validation, not found, stock)
	ExitCommandError = 2 // Usage or operational error (bad flags, database unreachable, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err, choosing the exit code from its kind: business
// outcomes exit with ExitRejected, anything else with ExitCommandError.
func WrapExitError(message string, err error) *ExitError {
	code := ExitCommandError
	if apperr.IsBusiness(err) && !apperr.IsConsistency(err) {
		code = ExitRejected
	}
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitCommandError if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// errorCode names an error for JSON output.
func errorCode(err error) string {
	switch {
	case apperr.IsConsistency(err):
		return "consistency"
	case apperr.IsValidation(err):
		return "validation"
	case apperr.IsNotFound(err):
		return "not_found"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case apperr.IsPersistence(err):
		return "persistence"
	default:
		return "command"
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	printer   *message.Printer
}

// NewOutputFormatter creates a formatter; amounts in text output use English
// digit grouping.
func NewOutputFormatter(format string, w, errW io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    format,
		Writer:    w,
		ErrWriter: errW,
		printer:   message.NewPrinter(language.English),
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Success(data any, text func(p *message.Printer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.printer)
	return nil
}

// Error reports err in the configured format.
func (f *OutputFormatter) Error(err error) {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errorCode(err), Message: err.Error()},
		})
		return
	}
	fmt.Fprintf(f.ErrWriter, "Error: %v\n", err)
}

// Amount formats a money amount with two decimals and digit grouping.
func Amount(p *message.Printer, v float64) string {
	return p.Sprintf("%.2f", v)
}
