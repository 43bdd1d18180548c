// Package content reconstructs the ordered, nested content tree of one
// labeling section: paragraphs, lists, tables, excerpts with highlighted
// spans, and media references. All records are created through the
// natural-key store, so re-running a build over the same markup is a no-op.
package content

import (
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
)

// Classify maps a markup element onto its content block kind. Unknown
// elements fall through to Generic; container kinds (List, Table) hand their
// substructure to a specialized sub-builder.
func Classify(n *markup.Node) model.BlockType {
	switch n.Name {
	case "paragraph":
		return model.BlockParagraph
	case "list":
		return model.BlockList
	case "table":
		return model.BlockTable
	case "excerpt":
		return model.BlockExcerpt
	case "highlight":
		return model.BlockHighlight
	case "renderMultiMedia":
		return model.BlockRenderedMedia
	default:
		return model.BlockGeneric
	}
}

// hasMediaReference reports whether the subtree contains a media reference
// token. A block with no text but a media reference still produces a record.
func hasMediaReference(n *markup.Node) bool {
	found := false
	n.Walk(func(c *markup.Node) bool {
		if c.Name == "renderMultiMedia" {
			found = true
			return false
		}
		return !found
	})
	return found
}
