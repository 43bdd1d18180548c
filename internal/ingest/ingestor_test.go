package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserikbarnes/medrecpro/internal/events"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

const labelXML = `<document>
	<id root="dddddddd-0000-0000-0000-000000000001"/>
	<setId root="dddddddd-1111-0000-0000-000000000001"/>
	<versionNumber value="3"/>
	<code code="34391-3" codeSystem="2.16.840.1.113883.6.1"/>
	<title>EXAMPLE DRUG tablets</title>
	<effectiveTime value="20240301"/>
	<component>
		<structuredBody>
			<component>
				<section>
					<id root="dddddddd-2222-0000-0000-000000000001"/>
					<code code="34089-3" codeSystem="2.16.840.1.113883.6.1"/>
					<title>DESCRIPTION</title>
					<text>
						<paragraph>See figure <renderMultiMedia referencedObject="IMG1"/> for structure.</paragraph>
					</text>
					<component>
						<observationMedia ID="IMG1">
							<text>Chemical structure</text>
							<value mediaType="image/jpeg"><reference value="structure.jpg"/></value>
						</observationMedia>
					</component>
				</section>
			</component>
			<component>
				<section>
					<id root="dddddddd-2222-0000-0000-000000000002"/>
					<code code="48779-3" codeSystem="2.16.840.1.113883.6.1"/>
					<subject>
						<identifiedSubstance>
							<identifiedSubstance>
								<code code="R16CO5Y76E" codeSystem="2.16.840.1.113883.4.9"/>
								<asSpecializedKind>
									<generalizedMaterialKind>
										<code code="N0000175565" codeSystem="2.16.840.1.113883.3.26.1.5"/>
									</generalizedMaterialKind>
								</asSpecializedKind>
							</identifiedSubstance>
						</identifiedSubstance>
					</subject>
				</section>
			</component>
		</structuredBody>
	</component>
</document>`

type capturingPublisher struct {
	events []events.IngestCompletedEvent
}

func (c *capturingPublisher) PublishIngestCompleted(_ context.Context, e events.IngestCompletedEvent) error {
	c.events = append(c.events, e)
	return nil
}

func (c *capturingPublisher) Close() error { return nil }

func TestIngestDocumentEndToEnd(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	pub := &capturingPublisher{}
	in := NewIngestor(s, Options{Publisher: pub})

	root, err := markup.DecodeString(labelXML)
	require.NoError(t, err)
	rep, err := in.IngestDocument(context.Background(), "label.xml", root)
	require.NoError(t, err)
	assert.True(t, rep.Success())
	assert.Empty(t, rep.Warnings)

	ctx := context.Background()
	doc, err := s.FindDocument(ctx, model.DocumentKey{DocumentGUID: "dddddddd-0000-0000-0000-000000000001"})
	require.NoError(t, err)
	require.True(t, doc.IsSome())
	assert.Equal(t, 3, doc.MustGet().VersionNumber)
	assert.Equal(t, "EXAMPLE DRUG tablets", *doc.MustGet().Title)
	assert.Equal(t, "20240301", *doc.MustGet().EffectiveTime)

	// Media registered at document scope, resolved from section content.
	asset, err := s.FindMediaAsset(ctx, model.MediaAssetKey{DocumentID: doc.MustGet().ID, MediaToken: "IMG1"})
	require.NoError(t, err)
	require.True(t, asset.IsSome())
	assert.Equal(t, "structure.jpg", *asset.MustGet().FileReference)

	first, err := s.FindSection(ctx, model.SectionKey{DocumentID: doc.MustGet().ID, SectionGUID: "dddddddd-2222-0000-0000-000000000001"})
	require.NoError(t, err)
	require.True(t, first.IsSome())
	assert.Equal(t, 1, first.MustGet().SequenceNumber)

	blocks, err := s.ListContentBlocks(ctx, first.MustGet().ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	links, err := s.ListMediaLinks(ctx, blocks[0].ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].IsInline)

	// The indexing section resolved its substance and class.
	sub, err := s.FindSubstanceByIdentifier(ctx, model.SubstanceIdentifier{
		IdentifierValue:  "R16CO5Y76E",
		IdentifierSystem: model.OIDActiveMoietySystem,
	})
	require.NoError(t, err)
	assert.True(t, sub.IsSome())

	require.Len(t, pub.events, 1)
	assert.Equal(t, "dddddddd-0000-0000-0000-000000000001", pub.events[0].DocumentGUID)
	assert.True(t, pub.events[0].Success)
	assert.Equal(t, in.RunID(), pub.events[0].RunID)
}

func TestIngestIsIdempotent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	in := NewIngestor(s, Options{})

	root, err := markup.DecodeString(labelXML)
	require.NoError(t, err)

	first, err := in.IngestDocument(context.Background(), "label.xml", root)
	require.NoError(t, err)
	assert.Greater(t, first.Created, 0)

	second, err := in.IngestDocument(context.Background(), "label.xml", root)
	require.NoError(t, err)
	assert.Zero(t, second.Created, "re-ingesting the same document creates nothing")
}

func TestIngestRejectsDocumentWithoutIdentity(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	in := NewIngestor(s, Options{})

	root, err := markup.DecodeString(`<document><title>No id</title></document>`)
	require.NoError(t, err)
	_, err = in.IngestDocument(context.Background(), "broken.xml", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id root")
}

func TestIngestFile(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	in := NewIngestor(s, Options{})

	path := filepath.Join(t.TempDir(), "label.xml")
	require.NoError(t, os.WriteFile(path, []byte(labelXML), 0o644))

	rep, err := in.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, rep.Success())

	_, err = in.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
}

func TestIngestFileRejectsMalformedMarkup(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	in := NewIngestor(s, Options{})

	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<document><unclosed>"), 0o644))
	_, err = in.IngestFile(context.Background(), path)
	require.Error(t, err)
}
