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

// resolveSubstances locates each primary identified-substance declaration
// under a subject element and classifies it by identifier system: the active
// moiety system marks an indexing moiety (branch A), any other system marks
// a pharmacologic class definition (branch B).
func (r *Resolver) resolveSubstances(ctx context.Context, sectionID int64, sectionNode *markup.Node, rep *report.Report) error {
	for _, subject := range sectionNode.ChildrenNamed("subject") {
		outer := subject.Child("identifiedSubstance")
		if outer == nil {
			continue
		}
		inner := primarySubstance(outer)

		code := inner.Child("code")
		if code == nil || code.Attr("code") == "" {
			rep.Warnf("identified substance without code skipped")
			continue
		}
		value := code.Attr("code")
		system := code.Attr("codeSystem")

		sub := model.IdentifiedSubstance{
			SectionID:        sectionID,
			IdentifierValue:  value,
			IdentifierSystem: system,
		}
		if system == model.OIDActiveMoietySystem {
			sub.SubjectKind = model.SubjectActiveMoiety
		} else {
			sub.SubjectKind = model.SubjectPharmClass
			sub.IsDefinition = true
		}

		persisted, created, err := store.GetOrCreateIdentifiedSubstance(ctx, r.store, sub)
		if err != nil {
			return err
		}
		r.count(created, "identified_substance", rep)

		if persisted.SubjectKind == model.SubjectActiveMoiety {
			if err := r.resolveMoietyClasses(ctx, persisted, inner, rep); err != nil {
				return err
			}
		} else {
			if err := r.resolveClassDefinition(ctx, persisted, inner, rep); err != nil {
				return err
			}
		}
	}
	return nil
}

// primarySubstance unwraps the double-nested identifiedSubstance element;
// some sources flatten the nesting, so the outer element is used directly
// when no inner one exists.
func primarySubstance(outer *markup.Node) *markup.Node {
	if inner := outer.Child("identifiedSubstance"); inner != nil {
		return inner
	}
	return outer
}

// resolveMoietyClasses handles branch A: every asSpecializedKind reference
// on an active moiety is a class association. The class is created un-owned,
// its names are ingested, the moiety-class link is persisted, and nested
// class references one level down become hierarchy edges.
func (r *Resolver) resolveMoietyClasses(ctx context.Context, moiety model.IdentifiedSubstance, substanceNode *markup.Node, rep *report.Report) error {
	for _, specialized := range substanceNode.ChildrenNamed("asSpecializedKind") {
		kind := specialized.Child("generalizedMaterialKind")
		if kind == nil {
			continue
		}
		class, err := r.getOrCreateClass(ctx, kind, nil, rep)
		if err != nil {
			return err
		}
		if class == nil {
			continue
		}
		if err := r.ingestClassNames(ctx, class.ID, kind, rep); err != nil {
			return err
		}

		_, created, err := store.GetOrCreatePharmacologicClassLink(ctx, r.store, model.PharmacologicClassLink{
			SubstanceID: moiety.ID,
			ClassID:     class.ID,
		})
		if err != nil {
			return err
		}
		r.count(created, "pharmacologic_class_link", rep)

		// One level of nesting: a class reference inside the class
		// reference names the parent in the hierarchy.
		if err := r.ingestSuperClasses(ctx, class.ID, kind, rep); err != nil {
			return err
		}
	}
	return nil
}

// resolveClassDefinition handles branch B: the substance itself is a
// pharmacologic class. The class record is owned by the defining substance,
// all name records are ingested, and each asSpecializedKind reference names
// a super-class edge.
func (r *Resolver) resolveClassDefinition(ctx context.Context, definer model.IdentifiedSubstance, substanceNode *markup.Node, rep *report.Report) error {
	class, err := r.getOrCreateClass(ctx, substanceNode, &definer.ID, rep)
	if err != nil || class == nil {
		return err
	}
	if err := r.ingestClassNames(ctx, class.ID, substanceNode, rep); err != nil {
		return err
	}
	return r.ingestSuperClasses(ctx, class.ID, substanceNode, rep)
}

// getOrCreateClass persists the pharmacologic class referenced by the code
// child of kindNode. Returns nil without error when the reference carries no
// code; the caller skips it.
func (r *Resolver) getOrCreateClass(ctx context.Context, kindNode *markup.Node, definerID *int64, rep *report.Report) (*model.PharmacologicClass, error) {
	code := kindNode.Child("code")
	if code == nil || code.Attr("code") == "" {
		rep.Warnf("class reference without code skipped")
		return nil, nil
	}
	class := model.PharmacologicClass{
		DefiningSubstanceID: definerID,
		ClassCode:           code.Attr("code"),
		ClassSystem:         code.Attr("codeSystem"),
	}
	if dn := code.Attr("displayName"); dn != "" {
		class.DisplayName = &dn
	}
	persisted, created, err := store.GetOrCreatePharmacologicClass(ctx, r.store, class)
	if err != nil {
		return nil, err
	}
	r.count(created, "pharmacologic_class", rep)
	if !created && definerID != nil && persisted.DefiningSubstanceID == nil {
		// The class was first seen as a bare reference and is now being
		// defined. The record keeps its original un-owned form; see the
		// ledger notes in DESIGN.md.
		observability.Debug(ctx, "class already present without definer",
			logfields.Entity("pharmacologic_class"),
			logfields.NaturalKey(persisted.ClassCode))
	}
	return &persisted, nil
}

// ingestClassNames persists the name children of owner as class name
// records. The use attribute "L" marks the preferred name; everything else
// is an alternate.
func (r *Resolver) ingestClassNames(ctx context.Context, classID int64, owner *markup.Node, rep *report.Report) error {
	for _, name := range owner.ChildrenNamed("name") {
		text := name.FlattenText()
		if text == "" {
			continue
		}
		_, created, err := store.GetOrCreatePharmacologicClassName(ctx, r.store, model.PharmacologicClassName{
			ClassID: classID,
			Text:    text,
			Use:     nameUse(name.Attr("use")),
		})
		if err != nil {
			return err
		}
		r.count(created, "pharmacologic_class_name", rep)
	}
	return nil
}

// ingestSuperClasses turns each asSpecializedKind reference under owner into
// a child-to-parent hierarchy edge. The same edge arriving from two
// documents persists once.
func (r *Resolver) ingestSuperClasses(ctx context.Context, childClassID int64, owner *markup.Node, rep *report.Report) error {
	for _, specialized := range owner.ChildrenNamed("asSpecializedKind") {
		kind := specialized.Child("generalizedMaterialKind")
		if kind == nil {
			continue
		}
		parent, err := r.getOrCreateClass(ctx, kind, nil, rep)
		if err != nil {
			return err
		}
		if parent == nil {
			continue
		}
		_, created, err := store.GetOrCreatePharmacologicClassHierarchy(ctx, r.store, model.PharmacologicClassHierarchy{
			ChildClassID:  childClassID,
			ParentClassID: parent.ID,
		})
		if err != nil {
			return err
		}
		r.count(created, "pharmacologic_class_hierarchy", rep)
	}
	return nil
}

func nameUse(attr string) model.NameUse {
	if attr == "L" {
		return model.NamePreferred
	}
	return model.NameAlternate
}
