package resolve

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// resolveProductConcepts persists one ProductConcept per manufacturedProduct
// declaration. A concept carrying an asEquivalentEntity reference is an
// application concept; the referenced abstract concept may live in a
// document that has not been ingested yet, so an equivalence miss is a
// warning plus a pending-ledger entry, never an error.
func (r *Resolver) resolveProductConcepts(ctx context.Context, sectionID int64, sectionNode *markup.Node, rep *report.Report) error {
	for _, subject := range sectionNode.ChildrenNamed("subject") {
		outer := subject.Child("manufacturedProduct")
		if outer == nil {
			continue
		}
		product := primaryProduct(outer)

		code := product.Child("code")
		if code == nil || code.Attr("code") == "" {
			rep.Warnf("product concept without code skipped")
			continue
		}
		equivalent := product.Child("asEquivalentEntity")

		concept := model.ProductConcept{
			SectionID:     sectionID,
			ConceptCode:   code.Attr("code"),
			ConceptSystem: code.Attr("codeSystem"),
			ConceptKind:   model.ConceptAbstract,
		}
		if equivalent != nil {
			concept.ConceptKind = model.ConceptApplication
		}
		if form := product.Child("formCode"); form != nil {
			concept.FormCode = optionalAttr(form, "code")
			concept.FormCodeSystem = optionalAttr(form, "codeSystem")
		}

		persisted, created, err := store.GetOrCreateProductConcept(ctx, r.store, concept)
		if err != nil {
			return err
		}
		r.count(created, "product_concept", rep)

		if equivalent != nil {
			if err := r.resolveEquivalence(ctx, persisted, equivalent, rep); err != nil {
				return err
			}
		}
	}
	return nil
}

// primaryProduct unwraps the nested manufacturedProduct element when the
// source double-wraps it.
func primaryProduct(outer *markup.Node) *markup.Node {
	if inner := outer.Child("manufacturedProduct"); inner != nil {
		return inner
	}
	return outer
}

// resolveEquivalence links an application concept to the abstract concept
// named by its asEquivalentEntity reference. On a miss the concept stands
// alone and the miss is recorded for a later resolution pass.
func (r *Resolver) resolveEquivalence(ctx context.Context, application model.ProductConcept, equivalent *markup.Node, rep *report.Report) error {
	defining := equivalent.Child("definingMaterialKind")
	if defining == nil {
		rep.Warnf("equivalence reference without defining concept on %s skipped", application.ConceptCode)
		return nil
	}
	targetCode := defining.Child("code")
	if targetCode == nil || targetCode.Attr("code") == "" {
		rep.Warnf("equivalence reference without target code on %s skipped", application.ConceptCode)
		return nil
	}
	target := targetCode.Attr("code")

	abstract, err := r.store.FindProductConcept(ctx, model.ProductConceptKey{ConceptCode: target})
	if err != nil {
		return err
	}
	if abstract.IsNone() {
		rep.Warnf("abstract concept %s not found for %s", target, application.ConceptCode)
		r.rec.RecordResolutionMiss(string(model.PendingEquivalence))
		observability.Warn(ctx, "product concept equivalence unresolved",
			logfields.RefKind(string(model.PendingEquivalence)),
			logfields.NaturalKey(target))
		return r.recordPending(ctx, model.PendingEquivalence, target, application.ID, rep)
	}

	link := model.ProductConceptEquivalence{
		ApplicationConceptID: application.ID,
		AbstractConceptID:    abstract.MustGet().ID,
	}
	if eqCode := equivalent.Child("code"); eqCode != nil {
		link.EquivalenceCode = optionalAttr(eqCode, "code")
		link.EquivalenceSystem = optionalAttr(eqCode, "codeSystem")
	}
	_, created, err := store.GetOrCreateProductConceptEquivalence(ctx, r.store, link)
	if err != nil {
		return err
	}
	r.count(created, "product_concept_equivalence", rep)
	return nil
}

// recordPending adds one open ledger entry for an unresolved reference.
// Recording the same miss again is a dedup hit, not a second entry.
func (r *Resolver) recordPending(ctx context.Context, kind model.PendingRefKind, naturalKey string, sourceID int64, rep *report.Report) error {
	_, created, err := store.GetOrCreatePendingReference(ctx, r.store, model.PendingReference{
		RefKind:    kind,
		NaturalKey: naturalKey,
		SourceID:   sourceID,
	})
	if err != nil {
		return err
	}
	r.count(created, "pending_reference", rep)
	return nil
}

func optionalAttr(node *markup.Node, name string) *string {
	if v := node.Attr(name); v != "" {
		return &v
	}
	return nil
}
