package errors

// NewConfig returns a fatal configuration error.
func NewConfig(message string, cause error) *IngestError {
	return &IngestError{Category: CategoryConfig, Severity: SeverityFatal, Message: message, Cause: cause}
}

// NewMarkup returns a recoverable markup error.
func NewMarkup(message string, cause error) *IngestError {
	return &IngestError{Category: CategoryMarkup, Severity: SeverityError, Message: message, Cause: cause}
}

// NewStore returns a fatal persistence error: a failed store round-trip
// leaves the section in an unknown state.
func NewStore(message string, cause error) *IngestError {
	return &IngestError{Category: CategoryStore, Severity: SeverityFatal, Message: message, Cause: cause}
}

// NewResolve returns a warning-level resolution miss.
func NewResolve(message string) *IngestError {
	return &IngestError{Category: CategoryResolve, Severity: SeverityWarning, Message: message}
}

// NewContext returns a fatal missing-context error (no owning section or no
// store access).
func NewContext(message string) *IngestError {
	return &IngestError{Category: CategoryContext, Severity: SeverityFatal, Message: message}
}

// NewRuntime wraps an unexpected failure recovered during one item's
// processing; the item is abandoned and siblings continue.
func NewRuntime(message string, cause error) *IngestError {
	return &IngestError{Category: CategoryRuntime, Severity: SeverityError, Message: message, Cause: cause}
}
