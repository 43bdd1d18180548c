package model

// ContentBlock is one node of the reconstructed content tree. SectionID is
// the owning section; ParentBlockID is nil for blocks directly under the
// section's text element. Text is nil for container types (List, Table);
// their substructure lives in the sub-builder entities. Append-only: blocks
// are never mutated or deleted after creation.
type ContentBlock struct {
	ID             int64
	SectionID      int64
	ParentBlockID  *int64
	BlockType      BlockType
	StyleHint      *string
	SequenceNumber int
	Text           *string
}

// Key returns the block's natural key. For Paragraph blocks the key includes
// the text: two distinct paragraphs at the same position are otherwise
// indistinguishable on re-ingestion.
func (b ContentBlock) Key() ContentBlockKey {
	k := ContentBlockKey{
		SectionID:      b.SectionID,
		ParentBlockID:  b.ParentBlockID,
		BlockType:      b.BlockType,
		SequenceNumber: b.SequenceNumber,
	}
	if b.BlockType == BlockParagraph {
		k.Text = b.Text
	}
	return k
}

// ContentBlockKey is the dedup key for a content block.
type ContentBlockKey struct {
	SectionID      int64
	ParentBlockID  *int64
	BlockType      BlockType
	SequenceNumber int
	Text           *string
}

// ListRecord is 1:1 with its owning List content block.
type ListRecord struct {
	ID             int64
	ContentBlockID int64
	ListType       *string
	StyleHint      *string
}

// ListItem is one persisted item of a list. Sequence numbers are dense over
// persisted items: empty items are skipped without consuming a number.
type ListItem struct {
	ID             int64
	ListID         int64
	SequenceNumber int
	Caption        *string
	Text           string
}

// ListItemKey is the dedup key for a list item.
type ListItemKey struct {
	ListID         int64
	SequenceNumber int
}

// TableRecord is 1:1 with its owning Table content block.
type TableRecord struct {
	ID             int64
	ContentBlockID int64
	Width          *string
	HasHeader      bool
	HasFooter      bool
}

// TableRow is one row of a table, scoped to a row group. Sequence numbers
// restart at 1 per group.
type TableRow struct {
	ID             int64
	TableID        int64
	RowGroup       RowGroup
	SequenceNumber int
	StyleHint      *string
}

// TableRowKey is the dedup key for a row.
type TableRowKey struct {
	TableID        int64
	RowGroup       RowGroup
	SequenceNumber int
}

// TableCell is one cell of a row. Header and data cells share one sequence
// counter within the row. Span values are absent (nil) when unparsable or
// non-positive.
type TableCell struct {
	ID             int64
	RowID          int64
	CellKind       CellKind
	SequenceNumber int
	Text           string
	RowSpan        *int
	ColSpan        *int
	Align          *string
	VAlign         *string
}

// TableCellKey is the dedup key for a cell.
type TableCellKey struct {
	RowID          int64
	SequenceNumber int
}

// HighlightSpan is one highlighted text span under an excerpt block.
// Identical text within the same owner collapses to one record.
type HighlightSpan struct {
	ID           int64
	OwnerBlockID int64
	Text         string
}

// HighlightSpanKey is the dedup key for a highlight span.
type HighlightSpanKey struct {
	OwnerBlockID int64
	Text         string
}
