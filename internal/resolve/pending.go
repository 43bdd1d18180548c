package resolve

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// ResolvePending re-attempts every open entry of the pending-reference
// ledger and closes the ones whose target now exists. Entries whose target
// is still missing stay open for the next pass. Returns the number of
// entries closed.
func (r *Resolver) ResolvePending(ctx context.Context, rep *report.Report) (int, error) {
	open, err := r.store.ListOpenPendingReferences(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, pending := range open {
		resolved, err := r.resolveOne(ctx, pending, rep)
		if err != nil {
			return closed, err
		}
		if !resolved {
			continue
		}
		if err := r.store.ClosePendingReference(ctx, pending.ID); err != nil {
			return closed, err
		}
		closed++
		observability.Info(ctx, "pending reference resolved",
			logfields.RefKind(string(pending.RefKind)),
			logfields.NaturalKey(pending.NaturalKey))
	}
	return closed, nil
}

func (r *Resolver) resolveOne(ctx context.Context, pending model.PendingReference, rep *report.Report) (bool, error) {
	switch pending.RefKind {
	case model.PendingEquivalence:
		abstract, err := r.store.FindProductConcept(ctx, model.ProductConceptKey{ConceptCode: pending.NaturalKey})
		if err != nil || abstract.IsNone() {
			return false, err
		}
		_, created, err := store.GetOrCreateProductConceptEquivalence(ctx, r.store, model.ProductConceptEquivalence{
			ApplicationConceptID: pending.SourceID,
			AbstractConceptID:    abstract.MustGet().ID,
		})
		if err != nil {
			return false, err
		}
		r.count(created, "product_concept_equivalence", rep)
		return true, nil

	case model.PendingInteractionFactor:
		ident, ok := parseFactorKey(pending.NaturalKey)
		if !ok {
			rep.Warnf("unparsable pending factor key %q", pending.NaturalKey)
			return false, nil
		}
		substance, err := r.store.FindSubstanceByIdentifier(ctx, ident)
		if err != nil || substance.IsNone() {
			return false, err
		}
		_, created, err := store.GetOrCreateContributingFactor(ctx, r.store, model.ContributingFactor{
			IssueID:           pending.SourceID,
			FactorSubstanceID: substance.MustGet().ID,
		})
		if err != nil {
			return false, err
		}
		r.count(created, "contributing_factor", rep)
		return true, nil

	default:
		rep.Warnf("unknown pending reference kind %q", pending.RefKind)
		return false, nil
	}
}
