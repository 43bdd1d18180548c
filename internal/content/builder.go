package content

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/metrics"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// Builder walks section markup and persists the content hierarchy. It holds
// no per-section state: the owning document and section travel as arguments,
// so one Builder serves a whole ingestion run.
type Builder struct {
	store store.Store
	rec   metrics.Recorder
}

// NewBuilder returns a Builder writing through the given store. A nil
// recorder defaults to the noop implementation.
func NewBuilder(s store.Store, rec metrics.Recorder) *Builder {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{store: s, rec: rec}
}

// BuildSectionContent persists the content tree under the section's text
// element. Returns an error only for store failures; skipped items and
// dangling references land in the report as warnings.
func (b *Builder) BuildSectionContent(ctx context.Context, documentID int64, sectionID int64, textNode *markup.Node, rep *report.Report) error {
	if textNode == nil {
		return nil
	}
	return b.buildChildren(ctx, documentID, sectionID, nil, textNode.Children, rep)
}

// buildChildren walks one sibling level. The sequence counter is 1-based and
// restarts for every parent; skipped (empty) blocks do not consume a number,
// so persisted sequences stay dense.
func (b *Builder) buildChildren(ctx context.Context, documentID, sectionID int64, parentBlockID *int64, nodes []*markup.Node, rep *report.Report) error {
	seq := 0
	for _, node := range nodes {
		kind := Classify(node)

		// Highlight nodes are persisted as spans during excerpt
		// processing; creating blocks for them here would double-record
		// the same text.
		if kind == model.BlockHighlight {
			continue
		}
		if b.skippable(kind, node) {
			continue
		}
		seq++

		block := model.ContentBlock{
			SectionID:      sectionID,
			ParentBlockID:  parentBlockID,
			BlockType:      kind,
			StyleHint:      optionalAttr(node, "styleCode"),
			SequenceNumber: seq,
			Text:           blockText(kind, node),
		}
		persisted, created, err := store.GetOrCreateContentBlock(ctx, b.store, block)
		if err != nil {
			return err
		}
		b.count(created, "content_block", rep)

		switch kind {
		case model.BlockList:
			if err := b.buildList(ctx, persisted, node, rep); err != nil {
				return err
			}
		case model.BlockTable:
			if err := b.buildTable(ctx, persisted, node, rep); err != nil {
				return err
			}
		case model.BlockExcerpt:
			if err := b.buildExcerpt(ctx, documentID, sectionID, persisted, node, rep); err != nil {
				return err
			}
		case model.BlockRenderedMedia:
			// The block is itself a pure media reference: block-level link.
			if err := b.linkMediaRefs(ctx, documentID, persisted.ID, []*markup.Node{node}, false, rep); err != nil {
				return err
			}
		case model.BlockParagraph:
			// Paragraph-like leaf: inline children are already flattened
			// into the text; scan descendants for inline media.
			if err := b.linkMediaRefs(ctx, documentID, persisted.ID, mediaRefs(node), true, rep); err != nil {
				return err
			}
		default:
			if err := b.buildChildren(ctx, documentID, sectionID, &persisted.ID, node.Children, rep); err != nil {
				return err
			}
			if err := b.linkMediaRefs(ctx, documentID, persisted.ID, directMediaRefs(node), true, rep); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildExcerpt persists highlight spans for the excerpt's highlight children
// and recurses generically into the rest. Identical span text within one
// excerpt collapses to a single record.
func (b *Builder) buildExcerpt(ctx context.Context, documentID, sectionID int64, excerpt model.ContentBlock, node *markup.Node, rep *report.Report) error {
	var rest []*markup.Node
	for _, child := range node.Children {
		if child.Name != "highlight" {
			rest = append(rest, child)
			continue
		}
		text := child.FlattenText()
		if text == "" {
			continue
		}
		_, created, err := store.GetOrCreateHighlightSpan(ctx, b.store, model.HighlightSpan{
			OwnerBlockID: excerpt.ID,
			Text:         text,
		})
		if err != nil {
			return err
		}
		b.count(created, "highlight_span", rep)
	}
	return b.buildChildren(ctx, documentID, sectionID, &excerpt.ID, rest, rep)
}

// skippable reports whether a block produces no record: empty non-container
// content with no media reference. Containers are created even when empty.
func (b *Builder) skippable(kind model.BlockType, node *markup.Node) bool {
	if kind.IsContainer() || kind == model.BlockRenderedMedia {
		return false
	}
	return node.FlattenText() == "" && !hasMediaReference(node)
}

func (b *Builder) count(created bool, entity string, rep *report.Report) {
	if created {
		rep.AddCreated(1)
		b.rec.RecordCreated(entity)
		return
	}
	b.rec.RecordDedupHit(entity)
}

func blockText(kind model.BlockType, node *markup.Node) *string {
	switch kind {
	case model.BlockParagraph:
		if t := node.FlattenText(); t != "" {
			return &t
		}
		return nil
	case model.BlockGeneric:
		if t := markup.CollapseSpace(node.Text); t != "" {
			return &t
		}
		return nil
	default:
		// Containers, excerpts, and media blocks carry no text of their
		// own; substructure holds the content.
		return nil
	}
}

func optionalAttr(node *markup.Node, name string) *string {
	if v := node.Attr(name); v != "" {
		return &v
	}
	return nil
}
