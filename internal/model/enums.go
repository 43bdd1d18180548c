// Package model defines the persisted record model for SPL ingestion: the
// reconstructed content hierarchy (blocks, lists, tables, media) and the
// cross-document index entities (substances, pharmacologic classes, product
// concepts, interactions). Every entity carries a store-assigned int64 ID and
// a natural key used for idempotent find-or-create.
package model

// BlockType is the closed set of content block kinds. Dispatch on block type
// is exhaustive; adding a kind must touch every switch.
type BlockType string

const (
	BlockParagraph     BlockType = "paragraph"
	BlockList          BlockType = "list"
	BlockTable         BlockType = "table"
	BlockExcerpt       BlockType = "excerpt"
	BlockHighlight     BlockType = "highlight"
	BlockRenderedMedia BlockType = "media"
	BlockGeneric       BlockType = "generic"
)

// IsContainer reports whether the block's children are owned by a
// specialized sub-builder instead of the generic recursion.
func (b BlockType) IsContainer() bool {
	return b == BlockList || b == BlockTable
}

// RowGroup identifies which table band a row belongs to.
type RowGroup string

const (
	RowGroupHeader RowGroup = "header"
	RowGroupBody   RowGroup = "body"
	RowGroupFooter RowGroup = "footer"
)

// CellKind distinguishes header cells from data cells within a row.
type CellKind string

const (
	CellHeader CellKind = "header"
	CellData   CellKind = "data"
)

// SubjectKind classifies an identified substance declaration.
type SubjectKind string

const (
	SubjectActiveMoiety SubjectKind = "active_moiety"
	SubjectPharmClass   SubjectKind = "pharmacologic_class"
)

// NameUse classifies a pharmacologic class name record.
type NameUse string

const (
	NamePreferred NameUse = "preferred"
	NameAlternate NameUse = "alternate"
)

// ConceptKind classifies a product concept.
type ConceptKind string

const (
	ConceptAbstract    ConceptKind = "abstract"
	ConceptApplication ConceptKind = "application"
)

// Well-known SPL code systems and formats.
const (
	// OIDActiveMoietySystem is the FDA UNII code system; an identified
	// substance whose identifier system matches it is an active moiety,
	// anything else is a pharmacologic class definition.
	OIDActiveMoietySystem = "2.16.840.1.113883.4.9"

	// OIDPharmClassSystem is the NDF-RT pharmacologic class code system.
	OIDPharmClassSystem = "2.16.840.1.113883.3.26.1.5"
)
