package model

// ProductConcept is an abstract or application product concept. ConceptCode
// is globally unique: the same concept may be declared in one document and
// referenced from others.
type ProductConcept struct {
	ID             int64
	SectionID      int64
	ConceptCode    string
	ConceptSystem  string
	ConceptKind    ConceptKind
	FormCode       *string
	FormCodeSystem *string
}

// Key returns the concept's natural key.
func (c ProductConcept) Key() ProductConceptKey {
	return ProductConceptKey{ConceptCode: c.ConceptCode}
}

// ProductConceptKey is the global dedup key for a product concept.
type ProductConceptKey struct {
	ConceptCode string
}

// ProductConceptEquivalence links an application concept to the abstract
// concept it is equivalent to. The abstract side may not exist yet when the
// application document is ingested; the miss is recorded, not fatal.
type ProductConceptEquivalence struct {
	ID                   int64
	ApplicationConceptID int64
	AbstractConceptID    int64
	EquivalenceCode      *string
	EquivalenceSystem    *string
}

// ProductConceptEquivalenceKey is the dedup key for an equivalence link.
type ProductConceptEquivalenceKey struct {
	ApplicationConceptID int64
	AbstractConceptID    int64
}

// InteractionIssue is one drug-interaction issue declared by a section.
type InteractionIssue struct {
	ID              int64
	SectionID       int64
	InteractionCode string
	CodeSystem      string
	Text            *string
}

// Key returns the issue's natural key.
func (i InteractionIssue) Key() InteractionIssueKey {
	return InteractionIssueKey{SectionID: i.SectionID, InteractionCode: i.InteractionCode}
}

// InteractionIssueKey is the dedup key for an interaction issue.
type InteractionIssueKey struct {
	SectionID       int64
	InteractionCode string
}

// ContributingFactor ties an issue to the identified substance that
// contributes to it. FactorSubstanceID is resolved against existing
// substances by identifier; a miss skips the factor.
type ContributingFactor struct {
	ID                int64
	IssueID           int64
	FactorSubstanceID int64
}

// ContributingFactorKey is the dedup key for a contributing factor.
type ContributingFactorKey struct {
	IssueID           int64
	FactorSubstanceID int64
}

// InteractionConsequence is one consequence record of an issue.
type InteractionConsequence struct {
	ID                   int64
	IssueID              int64
	ConsequenceValueCode string
	ConsequenceSystem    *string
	DisplayName          *string
}

// InteractionConsequenceKey is the dedup key for a consequence.
type InteractionConsequenceKey struct {
	IssueID              int64
	ConsequenceValueCode string
}

// ClinicalTrialLink ties a section to a registered trial identifier.
// Identifiers must match the NCT format before persistence.
type ClinicalTrialLink struct {
	ID              int64
	SectionID       int64
	TrialIdentifier string
	Registry        *string
}

// ClinicalTrialLinkKey is the dedup key for a trial link.
type ClinicalTrialLinkKey struct {
	SectionID       int64
	TrialIdentifier string
}

// BillingUnitLink ties a section to an NCPDP billing unit code.
type BillingUnitLink struct {
	ID              int64
	SectionID       int64
	BillingUnitCode string
	PackageCode     *string
}

// BillingUnitLinkKey is the dedup key for a billing unit link.
type BillingUnitLinkKey struct {
	SectionID       int64
	BillingUnitCode string
}
