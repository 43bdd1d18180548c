// Package resolve implements cross-document index resolution: pharmacologic
// class graphs, product-concept equivalences, interaction issues, and
// ancillary regulatory links. All lookups go through the natural-key store;
// a reference whose target does not exist yet is recorded in the pending
// ledger and retried by ResolvePending once later documents arrive.
package resolve

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/metrics"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// Resolver builds the index-side records of a section. A single resolver is
// safe to reuse across sections and documents.
type Resolver struct {
	store store.Store
	rec   metrics.Recorder
}

// NewResolver returns a resolver over the given store. A nil recorder
// disables metrics.
func NewResolver(s store.Store, rec metrics.Recorder) *Resolver {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Resolver{store: s, rec: rec}
}

// ResolveSection runs the full resolution pass for one section: substance
// classification, class graph population, product concepts, interactions,
// and ancillary links. Reference misses and malformed identifiers are
// reported as warnings and never abort sibling references; only store
// failures propagate as errors.
func (r *Resolver) ResolveSection(ctx context.Context, documentID, sectionID int64, sectionNode *markup.Node, rep *report.Report) error {
	if err := r.resolveSubstances(ctx, sectionID, sectionNode, rep); err != nil {
		return err
	}
	if err := r.resolveProductConcepts(ctx, sectionID, sectionNode, rep); err != nil {
		return err
	}
	if err := r.resolveInteractions(ctx, sectionID, sectionNode, rep); err != nil {
		return err
	}
	return r.resolveAncillary(ctx, sectionID, sectionNode, rep)
}

func (r *Resolver) count(created bool, entity string, rep *report.Report) {
	if created {
		rep.AddCreated(1)
		r.rec.RecordCreated(entity)
		return
	}
	r.rec.RecordDedupHit(entity)
}
