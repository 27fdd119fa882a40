// Package errors provides the error taxonomy shared by the parsers, the
// citation normalizer and the entity resolver.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a stored document was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedDocument indicates a markup document with no sensible structure
	ErrMalformedDocument = errors.New("malformed document")
	// ErrUnresolved indicates every resolution strategy was exhausted
	ErrUnresolved = errors.New("unresolved entity")
	// ErrSkipped indicates a row or record that could not produce an entry
	ErrSkipped = errors.New("skipped")
)

// MalformedDocumentError reports a structural impossibility in a markup
// document. It aborts the parse of that document.
type MalformedDocumentError struct {
	Line    int    // 1-based line number, 0 if unknown
	Marker  string // Marker that triggered the failure (e.g., "v")
	Message string
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed document at line %d: \\%s: %s", e.Line, e.Marker, e.Message)
	}
	return fmt.Sprintf("malformed document: %s", e.Message)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

// UnresolvedError is returned at the request boundary when a requested
// book or collection could not be matched to a canonical identifier.
type UnresolvedError struct {
	Kind      string // "book", "collection"
	Requested string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Requested)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

// SkipError describes a row or record dropped during ingestion.
type SkipError struct {
	Source string // Row label, record index, or file name
	Reason string
}

func (e *SkipError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("skipped %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("skipped: %s", e.Reason)
}

func (e *SkipError) Unwrap() error {
	return ErrSkipped
}

// NotFoundError represents a stored document that does not exist
type NotFoundError struct {
	Resource string // Type of resource (e.g., "topic", "verse", "chapter")
	ID       string // Identifier or path of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "decompress")
	Path      string // File or document path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "ODS", "JSON", "citation")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewMalformed creates a MalformedDocumentError
func NewMalformed(line int, marker, message string) *MalformedDocumentError {
	return &MalformedDocumentError{
		Line:    line,
		Marker:  marker,
		Message: message,
	}
}

// NewUnresolved creates an UnresolvedError
func NewUnresolved(kind, requested string) *UnresolvedError {
	return &UnresolvedError{
		Kind:      kind,
		Requested: requested,
	}
}

// NewSkip creates a SkipError
func NewSkip(source, reason string) *SkipError {
	return &SkipError{
		Source: source,
		Reason: reason,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
