package model

import "time"

// PendingRefKind names the reference kinds that may fail to resolve at
// ingest time and are re-attempted later.
type PendingRefKind string

const (
	PendingEquivalence       PendingRefKind = "product_concept_equivalence"
	PendingInteractionFactor PendingRefKind = "interaction_factor"
)

// PendingReference is one unresolved cross-document reference. NaturalKey is
// the textual form of the missing entity's key; SourceID is the record the
// reference originates from (application concept or interaction issue). The
// entry stays open until a resolution pass finds the target.
type PendingReference struct {
	ID         int64
	RefKind    PendingRefKind
	NaturalKey string
	SourceID   int64
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Key returns the pending reference's dedup key: the same miss recorded
// twice collapses to one open entry.
func (p PendingReference) Key() PendingReferenceKey {
	return PendingReferenceKey{RefKind: p.RefKind, NaturalKey: p.NaturalKey, SourceID: p.SourceID}
}

// PendingReferenceKey is the dedup key for a pending reference.
type PendingReferenceKey struct {
	RefKind    PendingRefKind
	NaturalKey string
	SourceID   int64
}
