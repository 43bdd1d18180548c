// Package metrics defines the ingestion metrics surface. Components receive
// a Recorder through dependency injection and default to NoopRecorder, so
// metrics collection never requires nil checks and costs nothing when
// disabled. PrometheusRecorder is the real implementation.
package metrics

import "time"

// Recorder receives ingestion observations.
type Recorder interface {
	// RecordCreated counts a newly persisted record of the given entity.
	RecordCreated(entity string)
	// RecordDedupHit counts a find-or-create that landed on an existing row.
	RecordDedupHit(entity string)
	// RecordResolutionMiss counts a cross-reference that found no target.
	RecordResolutionMiss(kind string)
	// RecordDanglingMedia counts a media reference with no matching asset.
	RecordDanglingMedia()
	// RecordDocument records one completed document ingestion.
	RecordDocument(duration time.Duration, success bool)
	// RecordSection records one processed section by outcome.
	RecordSection(success bool)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

func (NoopRecorder) RecordCreated(string)              {}
func (NoopRecorder) RecordDedupHit(string)             {}
func (NoopRecorder) RecordResolutionMiss(string)       {}
func (NoopRecorder) RecordDanglingMedia()              {}
func (NoopRecorder) RecordDocument(time.Duration, bool) {}
func (NoopRecorder) RecordSection(bool)                {}

var _ Recorder = NoopRecorder{}
