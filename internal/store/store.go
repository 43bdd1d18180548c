// Package store is the natural-key persistence façade for the ingestion
// core. Every entity exposes exactly two operations: find by natural key
// (returning an Option) and insert (returning the record with its assigned
// identity). Inserts are safe upserts: each natural key is a true unique
// index in the backend and an insert conflict re-fetches the existing row,
// so check-then-insert races collapse to one record. All persisted entities
// are append-only; only the pending-reference ledger is ever updated (to
// close an entry).
package store

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/foundation"
	"github.com/chriserikbarnes/medrecpro/internal/model"
)

// Store is the persistence collaborator used by every builder and resolver.
type Store interface {
	FindDocument(ctx context.Context, key model.DocumentKey) (foundation.Option[model.Document], error)
	InsertDocument(ctx context.Context, d model.Document) (model.Document, error)

	FindSection(ctx context.Context, key model.SectionKey) (foundation.Option[model.Section], error)
	InsertSection(ctx context.Context, s model.Section) (model.Section, error)

	FindContentBlock(ctx context.Context, key model.ContentBlockKey) (foundation.Option[model.ContentBlock], error)
	InsertContentBlock(ctx context.Context, b model.ContentBlock) (model.ContentBlock, error)
	ListContentBlocks(ctx context.Context, sectionID int64) ([]model.ContentBlock, error)

	FindListRecord(ctx context.Context, contentBlockID int64) (foundation.Option[model.ListRecord], error)
	InsertListRecord(ctx context.Context, l model.ListRecord) (model.ListRecord, error)

	FindListItem(ctx context.Context, key model.ListItemKey) (foundation.Option[model.ListItem], error)
	InsertListItem(ctx context.Context, i model.ListItem) (model.ListItem, error)
	ListListItems(ctx context.Context, listID int64) ([]model.ListItem, error)

	FindTableRecord(ctx context.Context, contentBlockID int64) (foundation.Option[model.TableRecord], error)
	InsertTableRecord(ctx context.Context, t model.TableRecord) (model.TableRecord, error)

	FindTableRow(ctx context.Context, key model.TableRowKey) (foundation.Option[model.TableRow], error)
	InsertTableRow(ctx context.Context, r model.TableRow) (model.TableRow, error)
	ListTableRows(ctx context.Context, tableID int64) ([]model.TableRow, error)

	FindTableCell(ctx context.Context, key model.TableCellKey) (foundation.Option[model.TableCell], error)
	InsertTableCell(ctx context.Context, c model.TableCell) (model.TableCell, error)
	ListTableCells(ctx context.Context, rowID int64) ([]model.TableCell, error)

	FindMediaAsset(ctx context.Context, key model.MediaAssetKey) (foundation.Option[model.MediaAsset], error)
	InsertMediaAsset(ctx context.Context, m model.MediaAsset) (model.MediaAsset, error)

	FindMediaLink(ctx context.Context, key model.MediaLinkKey) (foundation.Option[model.MediaLink], error)
	InsertMediaLink(ctx context.Context, l model.MediaLink) (model.MediaLink, error)
	ListMediaLinks(ctx context.Context, contentBlockID int64) ([]model.MediaLink, error)

	FindHighlightSpan(ctx context.Context, key model.HighlightSpanKey) (foundation.Option[model.HighlightSpan], error)
	InsertHighlightSpan(ctx context.Context, h model.HighlightSpan) (model.HighlightSpan, error)
	ListHighlightSpans(ctx context.Context, ownerBlockID int64) ([]model.HighlightSpan, error)

	FindIdentifiedSubstance(ctx context.Context, key model.IdentifiedSubstanceKey) (foundation.Option[model.IdentifiedSubstance], error)
	InsertIdentifiedSubstance(ctx context.Context, s model.IdentifiedSubstance) (model.IdentifiedSubstance, error)
	// FindSubstanceByIdentifier is the owner-independent lookup used when
	// resolving cross-document references (interaction factors).
	FindSubstanceByIdentifier(ctx context.Context, ident model.SubstanceIdentifier) (foundation.Option[model.IdentifiedSubstance], error)

	FindPharmacologicClass(ctx context.Context, key model.PharmacologicClassKey) (foundation.Option[model.PharmacologicClass], error)
	InsertPharmacologicClass(ctx context.Context, c model.PharmacologicClass) (model.PharmacologicClass, error)

	FindPharmacologicClassName(ctx context.Context, key model.PharmacologicClassNameKey) (foundation.Option[model.PharmacologicClassName], error)
	InsertPharmacologicClassName(ctx context.Context, n model.PharmacologicClassName) (model.PharmacologicClassName, error)

	FindPharmacologicClassLink(ctx context.Context, key model.PharmacologicClassLinkKey) (foundation.Option[model.PharmacologicClassLink], error)
	InsertPharmacologicClassLink(ctx context.Context, l model.PharmacologicClassLink) (model.PharmacologicClassLink, error)

	FindPharmacologicClassHierarchy(ctx context.Context, key model.PharmacologicClassHierarchyKey) (foundation.Option[model.PharmacologicClassHierarchy], error)
	InsertPharmacologicClassHierarchy(ctx context.Context, h model.PharmacologicClassHierarchy) (model.PharmacologicClassHierarchy, error)
	CountPharmacologicClassHierarchy(ctx context.Context) (int, error)

	FindProductConcept(ctx context.Context, key model.ProductConceptKey) (foundation.Option[model.ProductConcept], error)
	InsertProductConcept(ctx context.Context, c model.ProductConcept) (model.ProductConcept, error)

	FindProductConceptEquivalence(ctx context.Context, key model.ProductConceptEquivalenceKey) (foundation.Option[model.ProductConceptEquivalence], error)
	InsertProductConceptEquivalence(ctx context.Context, e model.ProductConceptEquivalence) (model.ProductConceptEquivalence, error)

	FindInteractionIssue(ctx context.Context, key model.InteractionIssueKey) (foundation.Option[model.InteractionIssue], error)
	InsertInteractionIssue(ctx context.Context, i model.InteractionIssue) (model.InteractionIssue, error)

	FindContributingFactor(ctx context.Context, key model.ContributingFactorKey) (foundation.Option[model.ContributingFactor], error)
	InsertContributingFactor(ctx context.Context, f model.ContributingFactor) (model.ContributingFactor, error)

	FindInteractionConsequence(ctx context.Context, key model.InteractionConsequenceKey) (foundation.Option[model.InteractionConsequence], error)
	InsertInteractionConsequence(ctx context.Context, c model.InteractionConsequence) (model.InteractionConsequence, error)

	FindClinicalTrialLink(ctx context.Context, key model.ClinicalTrialLinkKey) (foundation.Option[model.ClinicalTrialLink], error)
	InsertClinicalTrialLink(ctx context.Context, l model.ClinicalTrialLink) (model.ClinicalTrialLink, error)

	FindBillingUnitLink(ctx context.Context, key model.BillingUnitLinkKey) (foundation.Option[model.BillingUnitLink], error)
	InsertBillingUnitLink(ctx context.Context, l model.BillingUnitLink) (model.BillingUnitLink, error)

	FindPendingReference(ctx context.Context, key model.PendingReferenceKey) (foundation.Option[model.PendingReference], error)
	InsertPendingReference(ctx context.Context, p model.PendingReference) (model.PendingReference, error)
	ListOpenPendingReferences(ctx context.Context) ([]model.PendingReference, error)
	ClosePendingReference(ctx context.Context, id int64) error

	Close() error
}
