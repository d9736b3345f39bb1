package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/filedb/filedb"
	"github.com/arthur-debert/filedb/filedb/codec"
	"github.com/arthur-debert/filedb/filedb/collection"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "insert", "find")
	Cause       string   // The underlying cause (e.g., "document not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}

	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError creates an error for invalid user input
func NewValidationError(operation, field, value string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid %s: %q", field, value),
		Suggestions: suggestions,
	}
}

// NewNotFoundError creates an error for missing documents
func NewNotFoundError(operation string, id int64, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("document with _id %d not found", id),
		Suggestions: suggestions,
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewStoreError maps library errors to user-facing causes
func NewStoreError(operation string, underlying error, suggestions ...string) *CLIError {
	cause := "store operation failed"
	details := ""

	if underlying != nil {
		details = underlying.Error()

		switch {
		case errors.Is(underlying, filedb.ErrLocationNotFound), errors.Is(underlying, filedb.ErrNoLocation):
			cause = "location not found"
			suggestions = append(suggestions, CommonSuggestions.CheckLocation)
		case errors.Is(underlying, filedb.ErrNoCipher):
			cause = "collection is encrypted but no passphrase was given"
			suggestions = append(suggestions, CommonSuggestions.CheckPassphrase)
		case errors.Is(underlying, codec.ErrCiphertext):
			cause = "cannot decrypt collection"
			suggestions = append(suggestions, CommonSuggestions.CheckPassphrase)
		case errors.Is(underlying, collection.ErrLoadFailed):
			cause = "cannot read collection file"
			suggestions = append(suggestions, CommonSuggestions.CheckFlags)
		case errors.Is(underlying, collection.ErrPersistFailed):
			cause = "cannot write collection file"
			suggestions = append(suggestions, CommonSuggestions.CheckPerms)
		case errors.Is(underlying, collection.ErrQueryFailed):
			cause = "query failed"
			suggestions = append(suggestions, CommonSuggestions.CheckQuery)
		case errors.Is(underlying, collection.ErrInvalidArgument):
			cause = "invalid data provided"
		}
	}

	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	return NewStoreError(operation, err, suggestions...)
}

// CommonSuggestions holds suggestions shared by several errors
var CommonSuggestions = struct {
	CheckLocation   string
	CheckPassphrase string
	CheckQuery      string
	CheckID         string
	CheckConfig     string
	CheckFlags      string
	CheckPerms      string
}{
	CheckLocation:   "Verify --location points to an existing directory",
	CheckPassphrase: "Set --passphrase or FILEDB_PASSPHRASE to the collection passphrase",
	CheckQuery:      "Check the path expression, e.g. $[?(@.age > 30)]",
	CheckID:         "Verify the _id exists (try the 'all' command first)",
	CheckConfig:     "Check your configuration file or environment variables",
	CheckFlags:      "Check --encrypted and --compressed match how the collection was created",
	CheckPerms:      "Check file permissions and directory access",
}
