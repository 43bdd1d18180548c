package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

type fixture struct {
	store   *store.SQLiteStore
	builder *Builder
	doc     model.Document
	section model.Section
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	doc, err := s.InsertDocument(ctx, model.Document{
		DocumentGUID: "11111111-1111-1111-1111-111111111111",
		SetGUID:      "22222222-2222-2222-2222-222222222222",
		Code:         "34391-3",
		CodeSystem:   "2.16.840.1.113883.6.1",
		FileName:     "test.xml",
	})
	require.NoError(t, err)
	sec, err := s.InsertSection(ctx, model.Section{
		DocumentID:     doc.ID,
		SectionGUID:    "33333333-3333-3333-3333-333333333333",
		Code:           "34089-3",
		CodeSystem:     "2.16.840.1.113883.6.1",
		SequenceNumber: 1,
	})
	require.NoError(t, err)

	return &fixture{store: s, builder: NewBuilder(s, nil), doc: doc, section: sec}
}

func (f *fixture) build(t *testing.T, xml string) report.Report {
	t.Helper()
	node, err := markup.DecodeString(xml)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, f.builder.BuildSectionContent(context.Background(), f.doc.ID, f.section.ID, node, &rep))
	return rep
}

func TestBuildIsIdempotent(t *testing.T) {
	f := newFixture(t)
	xml := `<text>
		<paragraph>First paragraph</paragraph>
		<list listType="unordered"><item>a</item><item>b</item></list>
		<paragraph>Second paragraph</paragraph>
	</text>`

	first := f.build(t, xml)
	assert.Greater(t, first.Created, 0)

	second := f.build(t, xml)
	assert.Zero(t, second.Created, "re-ingestion must create no records")

	blocks, err := f.store.ListContentBlocks(context.Background(), f.section.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
}

func TestSequenceNumbersAreDense(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text>
		<paragraph>One</paragraph>
		<paragraph>   </paragraph>
		<paragraph>Three</paragraph>
	</text>`)

	blocks, err := f.store.ListContentBlocks(context.Background(), f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2, "empty paragraph is skipped")
	assert.Equal(t, 1, blocks[0].SequenceNumber)
	assert.Equal(t, 2, blocks[1].SequenceNumber)
	assert.Equal(t, "One", *blocks[0].Text)
	assert.Equal(t, "Three", *blocks[1].Text)
}

func TestListScenario(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><list listType="ordered"><item><caption>1</caption>First</item><item>  </item><item>Second</item></list></text>`)

	ctx := context.Background()
	blocks, err := f.store.ListContentBlocks(ctx, f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, model.BlockList, blocks[0].BlockType)
	assert.Nil(t, blocks[0].Text, "container blocks carry no text")

	rec, err := f.store.FindListRecord(ctx, blocks[0].ID)
	require.NoError(t, err)
	require.True(t, rec.IsSome())
	assert.Equal(t, "ordered", *rec.MustGet().ListType)

	items, err := f.store.ListListItems(ctx, rec.MustGet().ID)
	require.NoError(t, err)
	require.Len(t, items, 2, "blank item is skipped entirely")
	assert.Equal(t, "First", items[0].Text)
	assert.Equal(t, 1, items[0].SequenceNumber)
	assert.Equal(t, "1", *items[0].Caption)
	assert.Equal(t, "Second", items[1].Text)
	assert.Equal(t, 2, items[1].SequenceNumber)
}

func TestEmptyListStillCreated(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><list/></text>`)

	blocks, err := f.store.ListContentBlocks(context.Background(), f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, model.BlockList, blocks[0].BlockType)
}

func TestTableBodyOnly(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><table>
		<tbody>
			<tr><td>a</td><td colspan="2">b</td></tr>
			<tr><th>h</th><td rowspan="0">c</td></tr>
		</tbody>
	</table></text>`)

	ctx := context.Background()
	blocks, err := f.store.ListContentBlocks(ctx, f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	rec, err := f.store.FindTableRecord(ctx, blocks[0].ID)
	require.NoError(t, err)
	require.True(t, rec.IsSome())
	table := rec.MustGet()
	assert.False(t, table.HasHeader)
	assert.False(t, table.HasFooter)

	rows, err := f.store.ListTableRows(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, model.RowGroupBody, r.RowGroup)
	}

	cells, err := f.store.ListTableCells(ctx, rows[0].ID)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, model.CellData, cells[0].CellKind)
	assert.Nil(t, cells[0].ColSpan)
	require.NotNil(t, cells[1].ColSpan)
	assert.Equal(t, 2, *cells[1].ColSpan)

	// Header and data cells share one sequence counter; non-positive
	// spans are stored as absent.
	cells, err = f.store.ListTableCells(ctx, rows[1].ID)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, model.CellHeader, cells[0].CellKind)
	assert.Equal(t, 1, cells[0].SequenceNumber)
	assert.Equal(t, model.CellData, cells[1].CellKind)
	assert.Equal(t, 2, cells[1].SequenceNumber)
	assert.Nil(t, cells[1].RowSpan)
}

func TestTableWithHeaderAndFooter(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><table width="100%">
		<thead><tr><th>Head</th></tr></thead>
		<tbody><tr><td>Body</td></tr></tbody>
		<tfoot><tr><td>Foot</td></tr></tfoot>
	</table></text>`)

	ctx := context.Background()
	blocks, err := f.store.ListContentBlocks(ctx, f.section.ID)
	require.NoError(t, err)
	rec, err := f.store.FindTableRecord(ctx, blocks[0].ID)
	require.NoError(t, err)
	table := rec.MustGet()
	assert.True(t, table.HasHeader)
	assert.True(t, table.HasFooter)
	assert.Equal(t, "100%", *table.Width)

	rows, err := f.store.ListTableRows(ctx, table.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHighlightCollapse(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><excerpt>
		<highlight><text>Boxed warning</text></highlight>
		<highlight><text>Boxed warning</text></highlight>
		<paragraph>Details</paragraph>
	</excerpt></text>`)

	ctx := context.Background()
	blocks, err := f.store.ListContentBlocks(ctx, f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2, "excerpt plus nested paragraph; highlights produce no blocks")

	var excerpt model.ContentBlock
	for _, b := range blocks {
		if b.BlockType == model.BlockExcerpt {
			excerpt = b
		}
	}
	require.NotZero(t, excerpt.ID)

	spans, err := f.store.ListHighlightSpans(ctx, excerpt.ID)
	require.NoError(t, err)
	require.Len(t, spans, 1, "identical spans collapse to one record")
	assert.Equal(t, "Boxed warning", spans[0].Text)
}

func TestMediaResolutionAndDangling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := markup.DecodeString(`<document>
		<observationMedia ID="MM1"><text>Figure 1</text><value mediaType="image/jpeg"><reference value="fig1.jpg"/></value></observationMedia>
	</document>`)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, f.builder.RegisterMediaAssets(ctx, f.doc.ID, doc, &rep))
	assert.Equal(t, 1, rep.Created)

	built := f.build(t, `<text>
		<paragraph>See figure <renderMultiMedia referencedObject="MM1"/> and missing <renderMultiMedia referencedObject="MM9"/></paragraph>
		<renderMultiMedia referencedObject="MM1"/>
	</text>`)
	require.Len(t, built.Warnings, 1)
	assert.Contains(t, built.Warnings[0], "MM9")

	blocks, err := f.store.ListContentBlocks(ctx, f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	// Inline link on the paragraph: one resolved reference, position 1.
	links, err := f.store.ListMediaLinks(ctx, blocks[0].ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].IsInline)
	assert.Equal(t, 1, links[0].SequencePosition)

	// Block-level link on the standalone media block.
	links, err = f.store.ListMediaLinks(ctx, blocks[1].ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.False(t, links[0].IsInline)
}

func TestContainerChildrenNotDoubleCreated(t *testing.T) {
	f := newFixture(t)
	f.build(t, `<text><list><item>entry</item></list></text>`)

	blocks, err := f.store.ListContentBlocks(context.Background(), f.section.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1, "list items must not also appear as content blocks")
	assert.Equal(t, model.BlockList, blocks[0].BlockType)
}

func TestClassify(t *testing.T) {
	cases := map[string]model.BlockType{
		"paragraph":        model.BlockParagraph,
		"list":             model.BlockList,
		"table":            model.BlockTable,
		"excerpt":          model.BlockExcerpt,
		"highlight":        model.BlockHighlight,
		"renderMultiMedia": model.BlockRenderedMedia,
		"footnote":         model.BlockGeneric,
	}
	for name, want := range cases {
		assert.Equal(t, want, Classify(&markup.Node{Name: name}), name)
	}
	assert.True(t, model.BlockList.IsContainer())
	assert.True(t, model.BlockTable.IsContainer())
	assert.False(t, model.BlockExcerpt.IsContainer())
}
