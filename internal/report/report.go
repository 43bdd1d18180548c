// Package report defines the aggregated result every ingestion step returns:
// a created-record count plus warning and error message lists. Reports merge
// upward through each recursive call boundary; a step succeeded when it
// produced no errors (warnings are skipped items, not failures).
package report

import "fmt"

// Report accumulates the outcome of one ingestion invocation.
type Report struct {
	Created  int
	Warnings []string
	Errors   []string
}

// AddCreated counts newly persisted records.
func (r *Report) AddCreated(n int) {
	r.Created += n
}

// Warnf records a recoverable per-item condition (resolution miss, dangling
// reference, malformed identifier, empty content).
func (r *Report) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Errorf records a failure that aborted part of the processing.
func (r *Report) Errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Merge folds a child invocation's report into this one.
func (r *Report) Merge(child Report) {
	r.Created += child.Created
	r.Warnings = append(r.Warnings, child.Warnings...)
	r.Errors = append(r.Errors, child.Errors...)
}

// Success reports whether the invocation completed without errors.
func (r *Report) Success() bool {
	return len(r.Errors) == 0
}
