// Package errors provides the structured error type used across the
// ingestion core, classifying failures by category and severity so callers
// can distinguish section-fatal conditions from recoverable per-item ones.
package errors

import "fmt"

// Category classifies where an ingestion error originates.
type Category string

const (
	CategoryConfig  Category = "config"  // configuration and input errors
	CategoryMarkup  Category = "markup"  // malformed or unexpected markup
	CategoryStore   Category = "store"   // persistence failures
	CategoryResolve Category = "resolve" // cross-reference resolution failures
	CategoryContext Category = "context" // missing required processing context
	CategoryRuntime Category = "runtime" // unexpected failures (recovered panics)
)

// Severity indicates how a failure affects processing.
type Severity string

const (
	// SeverityFatal aborts the current section; siblings continue.
	SeverityFatal Severity = "fatal"
	// SeverityError is recorded in the aggregated result; processing continues.
	SeverityError Severity = "error"
	// SeverityWarning marks a skipped item (resolution miss, dangling
	// reference, malformed identifier).
	SeverityWarning Severity = "warning"
)

// IngestError is a structured error with category, severity, cause, and
// free-form context fields (document, section, entity being built).
type IngestError struct {
	Category Category
	Severity Severity
	Message  string
	Cause    error
	Fields   map[string]any
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *IngestError) Unwrap() error {
	return e.Cause
}

// WithField attaches one context field, returning the error for chaining.
func (e *IngestError) WithField(key string, value any) *IngestError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// IsFatal reports whether the error aborts the current section.
func (e *IngestError) IsFatal() bool {
	return e.Severity == SeverityFatal
}
