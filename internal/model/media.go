package model

// MediaAsset is a registered multimedia object (observationMedia), scoped to
// its owning document. MediaToken is the in-document reference token
// (the element's ID attribute).
type MediaAsset struct {
	ID            int64
	DocumentID    int64
	MediaToken    string
	Description   *string
	MediaFormat   *string
	XSIType       *string
	FileReference *string
}

// Key returns the asset's natural key.
func (m MediaAsset) Key() MediaAssetKey {
	return MediaAssetKey{DocumentID: m.DocumentID, MediaToken: m.MediaToken}
}

// MediaAssetKey identifies an asset within its document scope.
type MediaAssetKey struct {
	DocumentID int64
	MediaToken string
}

// MediaLink ties a content block to a media asset at a 1-based position
// within the block. IsInline is false when the enclosing block is itself a
// pure media block. A reference that resolves to no asset is reported as
// dangling and never persisted.
type MediaLink struct {
	ID               int64
	ContentBlockID   int64
	MediaAssetID     int64
	SequencePosition int
	IsInline         bool
}

// MediaLinkKey is the dedup key for a media link.
type MediaLinkKey struct {
	ContentBlockID   int64
	SequencePosition int
}
