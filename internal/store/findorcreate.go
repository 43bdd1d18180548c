package store

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/model"
)

// Find-or-create helpers. Each returns the persisted record plus a created
// flag (false when the natural key already existed). Every builder and
// resolver writes through these; nothing mutates storage directly.

func GetOrCreateDocument(ctx context.Context, s Store, d model.Document) (model.Document, bool, error) {
	if existing, err := s.FindDocument(ctx, d.Key()); err != nil {
		return model.Document{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertDocument(ctx, d)
	return created, err == nil, err
}

func GetOrCreateSection(ctx context.Context, s Store, sec model.Section) (model.Section, bool, error) {
	if existing, err := s.FindSection(ctx, sec.Key()); err != nil {
		return model.Section{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertSection(ctx, sec)
	return created, err == nil, err
}

func GetOrCreateContentBlock(ctx context.Context, s Store, b model.ContentBlock) (model.ContentBlock, bool, error) {
	if existing, err := s.FindContentBlock(ctx, b.Key()); err != nil {
		return model.ContentBlock{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertContentBlock(ctx, b)
	return created, err == nil, err
}

func GetOrCreateListRecord(ctx context.Context, s Store, l model.ListRecord) (model.ListRecord, bool, error) {
	if existing, err := s.FindListRecord(ctx, l.ContentBlockID); err != nil {
		return model.ListRecord{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertListRecord(ctx, l)
	return created, err == nil, err
}

func GetOrCreateListItem(ctx context.Context, s Store, i model.ListItem) (model.ListItem, bool, error) {
	key := model.ListItemKey{ListID: i.ListID, SequenceNumber: i.SequenceNumber}
	if existing, err := s.FindListItem(ctx, key); err != nil {
		return model.ListItem{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertListItem(ctx, i)
	return created, err == nil, err
}

func GetOrCreateTableRecord(ctx context.Context, s Store, t model.TableRecord) (model.TableRecord, bool, error) {
	if existing, err := s.FindTableRecord(ctx, t.ContentBlockID); err != nil {
		return model.TableRecord{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertTableRecord(ctx, t)
	return created, err == nil, err
}

func GetOrCreateTableRow(ctx context.Context, s Store, r model.TableRow) (model.TableRow, bool, error) {
	key := model.TableRowKey{TableID: r.TableID, RowGroup: r.RowGroup, SequenceNumber: r.SequenceNumber}
	if existing, err := s.FindTableRow(ctx, key); err != nil {
		return model.TableRow{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertTableRow(ctx, r)
	return created, err == nil, err
}

func GetOrCreateTableCell(ctx context.Context, s Store, c model.TableCell) (model.TableCell, bool, error) {
	key := model.TableCellKey{RowID: c.RowID, SequenceNumber: c.SequenceNumber}
	if existing, err := s.FindTableCell(ctx, key); err != nil {
		return model.TableCell{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertTableCell(ctx, c)
	return created, err == nil, err
}

func GetOrCreateMediaAsset(ctx context.Context, s Store, m model.MediaAsset) (model.MediaAsset, bool, error) {
	if existing, err := s.FindMediaAsset(ctx, m.Key()); err != nil {
		return model.MediaAsset{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertMediaAsset(ctx, m)
	return created, err == nil, err
}

func GetOrCreateMediaLink(ctx context.Context, s Store, l model.MediaLink) (model.MediaLink, bool, error) {
	key := model.MediaLinkKey{ContentBlockID: l.ContentBlockID, SequencePosition: l.SequencePosition}
	if existing, err := s.FindMediaLink(ctx, key); err != nil {
		return model.MediaLink{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertMediaLink(ctx, l)
	return created, err == nil, err
}

func GetOrCreateHighlightSpan(ctx context.Context, s Store, h model.HighlightSpan) (model.HighlightSpan, bool, error) {
	key := model.HighlightSpanKey{OwnerBlockID: h.OwnerBlockID, Text: h.Text}
	if existing, err := s.FindHighlightSpan(ctx, key); err != nil {
		return model.HighlightSpan{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertHighlightSpan(ctx, h)
	return created, err == nil, err
}

func GetOrCreateIdentifiedSubstance(ctx context.Context, s Store, sub model.IdentifiedSubstance) (model.IdentifiedSubstance, bool, error) {
	if existing, err := s.FindIdentifiedSubstance(ctx, sub.Key()); err != nil {
		return model.IdentifiedSubstance{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertIdentifiedSubstance(ctx, sub)
	return created, err == nil, err
}

func GetOrCreatePharmacologicClass(ctx context.Context, s Store, c model.PharmacologicClass) (model.PharmacologicClass, bool, error) {
	if existing, err := s.FindPharmacologicClass(ctx, c.Key()); err != nil {
		return model.PharmacologicClass{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertPharmacologicClass(ctx, c)
	return created, err == nil, err
}

func GetOrCreatePharmacologicClassName(ctx context.Context, s Store, n model.PharmacologicClassName) (model.PharmacologicClassName, bool, error) {
	key := model.PharmacologicClassNameKey{ClassID: n.ClassID, Text: n.Text, Use: n.Use}
	if existing, err := s.FindPharmacologicClassName(ctx, key); err != nil {
		return model.PharmacologicClassName{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertPharmacologicClassName(ctx, n)
	return created, err == nil, err
}

func GetOrCreatePharmacologicClassLink(ctx context.Context, s Store, l model.PharmacologicClassLink) (model.PharmacologicClassLink, bool, error) {
	key := model.PharmacologicClassLinkKey{SubstanceID: l.SubstanceID, ClassID: l.ClassID}
	if existing, err := s.FindPharmacologicClassLink(ctx, key); err != nil {
		return model.PharmacologicClassLink{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertPharmacologicClassLink(ctx, l)
	return created, err == nil, err
}

func GetOrCreatePharmacologicClassHierarchy(ctx context.Context, s Store, h model.PharmacologicClassHierarchy) (model.PharmacologicClassHierarchy, bool, error) {
	key := model.PharmacologicClassHierarchyKey{ChildClassID: h.ChildClassID, ParentClassID: h.ParentClassID}
	if existing, err := s.FindPharmacologicClassHierarchy(ctx, key); err != nil {
		return model.PharmacologicClassHierarchy{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertPharmacologicClassHierarchy(ctx, h)
	return created, err == nil, err
}

func GetOrCreateProductConcept(ctx context.Context, s Store, c model.ProductConcept) (model.ProductConcept, bool, error) {
	if existing, err := s.FindProductConcept(ctx, c.Key()); err != nil {
		return model.ProductConcept{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertProductConcept(ctx, c)
	return created, err == nil, err
}

func GetOrCreateProductConceptEquivalence(ctx context.Context, s Store, e model.ProductConceptEquivalence) (model.ProductConceptEquivalence, bool, error) {
	key := model.ProductConceptEquivalenceKey{ApplicationConceptID: e.ApplicationConceptID, AbstractConceptID: e.AbstractConceptID}
	if existing, err := s.FindProductConceptEquivalence(ctx, key); err != nil {
		return model.ProductConceptEquivalence{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertProductConceptEquivalence(ctx, e)
	return created, err == nil, err
}

func GetOrCreateInteractionIssue(ctx context.Context, s Store, i model.InteractionIssue) (model.InteractionIssue, bool, error) {
	if existing, err := s.FindInteractionIssue(ctx, i.Key()); err != nil {
		return model.InteractionIssue{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertInteractionIssue(ctx, i)
	return created, err == nil, err
}

func GetOrCreateContributingFactor(ctx context.Context, s Store, f model.ContributingFactor) (model.ContributingFactor, bool, error) {
	key := model.ContributingFactorKey{IssueID: f.IssueID, FactorSubstanceID: f.FactorSubstanceID}
	if existing, err := s.FindContributingFactor(ctx, key); err != nil {
		return model.ContributingFactor{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertContributingFactor(ctx, f)
	return created, err == nil, err
}

func GetOrCreateInteractionConsequence(ctx context.Context, s Store, c model.InteractionConsequence) (model.InteractionConsequence, bool, error) {
	key := model.InteractionConsequenceKey{IssueID: c.IssueID, ConsequenceValueCode: c.ConsequenceValueCode}
	if existing, err := s.FindInteractionConsequence(ctx, key); err != nil {
		return model.InteractionConsequence{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertInteractionConsequence(ctx, c)
	return created, err == nil, err
}

func GetOrCreateClinicalTrialLink(ctx context.Context, s Store, l model.ClinicalTrialLink) (model.ClinicalTrialLink, bool, error) {
	key := model.ClinicalTrialLinkKey{SectionID: l.SectionID, TrialIdentifier: l.TrialIdentifier}
	if existing, err := s.FindClinicalTrialLink(ctx, key); err != nil {
		return model.ClinicalTrialLink{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertClinicalTrialLink(ctx, l)
	return created, err == nil, err
}

func GetOrCreateBillingUnitLink(ctx context.Context, s Store, l model.BillingUnitLink) (model.BillingUnitLink, bool, error) {
	key := model.BillingUnitLinkKey{SectionID: l.SectionID, BillingUnitCode: l.BillingUnitCode}
	if existing, err := s.FindBillingUnitLink(ctx, key); err != nil {
		return model.BillingUnitLink{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertBillingUnitLink(ctx, l)
	return created, err == nil, err
}

func GetOrCreatePendingReference(ctx context.Context, s Store, p model.PendingReference) (model.PendingReference, bool, error) {
	if existing, err := s.FindPendingReference(ctx, p.Key()); err != nil {
		return model.PendingReference{}, false, err
	} else if v, ok := existing.Get(); ok {
		return v, false, nil
	}
	created, err := s.InsertPendingReference(ctx, p)
	return created, err == nil, err
}
