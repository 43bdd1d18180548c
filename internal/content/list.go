package content

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// buildList persists one ListRecord for the owning block and its ordered
// items. Items whose text is empty after excising the caption are skipped
// without consuming a sequence number, so persisted sequences stay dense.
func (b *Builder) buildList(ctx context.Context, block model.ContentBlock, node *markup.Node, rep *report.Report) error {
	rec, created, err := store.GetOrCreateListRecord(ctx, b.store, model.ListRecord{
		ContentBlockID: block.ID,
		ListType:       optionalAttr(node, "listType"),
		StyleHint:      optionalAttr(node, "styleCode"),
	})
	if err != nil {
		return err
	}
	b.count(created, "list_record", rep)

	seq := 0
	for _, item := range node.ChildrenNamed("item") {
		text := item.FlattenTextExcluding("caption")
		if text == "" {
			continue
		}
		seq++

		var caption *string
		if c := item.Child("caption"); c != nil {
			if t := c.FlattenText(); t != "" {
				caption = &t
			}
		}

		_, created, err := store.GetOrCreateListItem(ctx, b.store, model.ListItem{
			ListID:         rec.ID,
			SequenceNumber: seq,
			Caption:        caption,
			Text:           text,
		})
		if err != nil {
			return err
		}
		b.count(created, "list_item", rep)
	}
	return nil
}
