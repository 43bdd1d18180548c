package content

import (
	"context"

	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// RegisterMediaAssets walks the document tree and persists one MediaAsset
// per observationMedia element, keyed on the element's reference token
// within document scope. Builders resolve renderMultiMedia references
// against this set.
func (b *Builder) RegisterMediaAssets(ctx context.Context, documentID int64, root *markup.Node, rep *report.Report) error {
	for _, node := range root.Find("observationMedia") {
		token := node.Attr("ID")
		if token == "" {
			rep.Warnf("observationMedia without ID attribute skipped")
			continue
		}

		asset := model.MediaAsset{DocumentID: documentID, MediaToken: token}
		if t := node.Child("text"); t != nil {
			if d := t.FlattenText(); d != "" {
				asset.Description = &d
			}
		}
		if value := node.Child("value"); value != nil {
			asset.MediaFormat = optionalAttr(value, "mediaType")
			asset.XSIType = optionalAttr(value, "type")
			if ref := value.Child("reference"); ref != nil {
				asset.FileReference = optionalAttr(ref, "value")
			}
		}

		_, created, err := store.GetOrCreateMediaAsset(ctx, b.store, asset)
		if err != nil {
			return err
		}
		b.count(created, "media_asset", rep)
	}
	return nil
}

// mediaRefs returns every media reference in the subtree, in document order.
func mediaRefs(node *markup.Node) []*markup.Node {
	return node.Find("renderMultiMedia")
}

// directMediaRefs returns only the node's immediate media-reference
// children; nested ones belong to the blocks created by recursion.
func directMediaRefs(node *markup.Node) []*markup.Node {
	return node.ChildrenNamed("renderMultiMedia")
}

// linkMediaRefs resolves reference tokens against the document's registered
// assets and persists one MediaLink per hit, with a 1-based position counter
// per content block. Unresolved references are logged as dangling and
// dropped; the position counter advances only for persisted links.
func (b *Builder) linkMediaRefs(ctx context.Context, documentID, contentBlockID int64, refs []*markup.Node, inline bool, rep *report.Report) error {
	pos := 0
	for _, ref := range refs {
		token := ref.Attr("referencedObject")
		if token == "" {
			rep.Warnf("media reference without referencedObject token skipped")
			continue
		}

		asset, err := b.store.FindMediaAsset(ctx, model.MediaAssetKey{DocumentID: documentID, MediaToken: token})
		if err != nil {
			return err
		}
		found, ok := asset.Get()
		if !ok {
			observability.Warn(ctx, "dangling media reference", logfields.Token(token))
			rep.Warnf("dangling media reference %q", token)
			b.rec.RecordDanglingMedia()
			continue
		}
		pos++

		_, created, err := store.GetOrCreateMediaLink(ctx, b.store, model.MediaLink{
			ContentBlockID:   contentBlockID,
			MediaAssetID:     found.ID,
			SequencePosition: pos,
			IsInline:         inline,
		})
		if err != nil {
			return err
		}
		b.count(created, "media_link", rep)
	}
	return nil
}
