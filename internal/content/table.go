package content

import (
	"context"
	"strconv"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// buildTable persists one TableRecord plus its rows and cells. Row sequence
// numbers are scoped per row group; header and data cells within one row
// share a single sequence counter.
func (b *Builder) buildTable(ctx context.Context, block model.ContentBlock, node *markup.Node, rep *report.Report) error {
	header := node.Child("thead")
	footer := node.Child("tfoot")

	rec, created, err := store.GetOrCreateTableRecord(ctx, b.store, model.TableRecord{
		ContentBlockID: block.ID,
		Width:          optionalAttr(node, "width"),
		HasHeader:      header != nil,
		HasFooter:      footer != nil,
	})
	if err != nil {
		return err
	}
	b.count(created, "table_record", rep)

	if header != nil {
		if err := b.buildRowGroup(ctx, rec.ID, model.RowGroupHeader, header.ChildrenNamed("tr"), rep); err != nil {
			return err
		}
	}
	if err := b.buildRowGroup(ctx, rec.ID, model.RowGroupBody, bodyRows(node), rep); err != nil {
		return err
	}
	if footer != nil {
		if err := b.buildRowGroup(ctx, rec.ID, model.RowGroupFooter, footer.ChildrenNamed("tr"), rep); err != nil {
			return err
		}
	}
	return nil
}

// bodyRows collects the table's body rows: tbody children when present,
// otherwise rows sitting directly under the table element.
func bodyRows(table *markup.Node) []*markup.Node {
	var rows []*markup.Node
	for _, body := range table.ChildrenNamed("tbody") {
		rows = append(rows, body.ChildrenNamed("tr")...)
	}
	if len(rows) == 0 {
		rows = table.ChildrenNamed("tr")
	}
	return rows
}

func (b *Builder) buildRowGroup(ctx context.Context, tableID int64, group model.RowGroup, rows []*markup.Node, rep *report.Report) error {
	for i, tr := range rows {
		row, created, err := store.GetOrCreateTableRow(ctx, b.store, model.TableRow{
			TableID:        tableID,
			RowGroup:       group,
			SequenceNumber: i + 1,
			StyleHint:      optionalAttr(tr, "styleCode"),
		})
		if err != nil {
			return err
		}
		b.count(created, "table_row", rep)

		cellSeq := 0
		for _, cell := range tr.Children {
			var kind model.CellKind
			switch cell.Name {
			case "th":
				kind = model.CellHeader
			case "td":
				kind = model.CellData
			default:
				continue
			}
			cellSeq++

			_, created, err := store.GetOrCreateTableCell(ctx, b.store, model.TableCell{
				RowID:          row.ID,
				CellKind:       kind,
				SequenceNumber: cellSeq,
				Text:           cell.FlattenText(),
				RowSpan:        parseSpan(cell.Attr("rowspan")),
				ColSpan:        parseSpan(cell.Attr("colspan")),
				Align:          optionalAttr(cell, "align"),
				VAlign:         optionalAttr(cell, "valign"),
			})
			if err != nil {
				return err
			}
			b.count(created, "table_cell", rep)
		}
	}
	return nil
}

// parseSpan parses a span attribute. Unparsable or non-positive values are
// stored as absent, never as zero.
func parseSpan(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
