// Package parsererror holds the typed errors returned by the import pipeline
// and the stores.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrEmptyAccountName    = errors.New("account name must not be empty")
	ErrEmptyCategory       = errors.New("category must not be empty")
	ErrEmptyGroup          = errors.New("group must not be empty")
	ErrLastGroup           = errors.New("cannot remove the last group")
	ErrGroupNotFound       = errors.New("group not found")
)

// DecodeError is returned when no candidate encoding could decode the input.
type DecodeError struct {
	FilePath  string
	Encodings []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode '%s': tried encodings %s",
		e.FilePath, strings.Join(e.Encodings, ", "))
}

// SchemaNotFoundError is returned when no header line was found in the
// scanned window.
type SchemaNotFoundError struct {
	FilePath     string
	ScannedLines int
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("no header line with a date and an amount column in the first %d lines of '%s'",
		e.ScannedLines, e.FilePath)
}

// MissingRequiredColumnError is returned when the mapped header lacks a date
// column, or lacks both an amount column and a debit/credit pair.
type MissingRequiredColumnError struct {
	FilePath string
	Missing  string
	Columns  []string
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("missing %s column in '%s'; columns found: [%s]",
		e.Missing, e.FilePath, strings.Join(e.Columns, ", "))
}

// ParseError describes one field that could not be parsed. Row is the
// 1-based data row index, 0 when not applicable.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Row    int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
			e.Parser, e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure of one of the file-backed stores.
type StoreError struct {
	Store string
	Path  string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s '%s': %v", e.Store, e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CategorizationError represents a categorization failure
type CategorizationError struct {
	Transaction string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v",
		e.Transaction, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err aborts a whole import, as opposed to a
// storage failure or a per-row diagnostic.
func IsStructural(err error) bool {
	var decodeErr *DecodeError
	var schemaErr *SchemaNotFoundError
	var columnErr *MissingRequiredColumnError
	return errors.As(err, &decodeErr) || errors.As(err, &schemaErr) || errors.As(err, &columnErr)
}
