package section

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

func newTestDocument(t *testing.T, s *store.SQLiteStore) model.Document {
	t.Helper()
	doc, err := s.InsertDocument(context.Background(), model.Document{
		DocumentGUID: "44444444-4444-4444-4444-444444444444",
		SetGUID:      "55555555-5555-5555-5555-555555555555",
		Code:         "34391-3",
		CodeSystem:   "2.16.840.1.113883.6.1",
		FileName:     "label.xml",
	})
	require.NoError(t, err)
	return doc
}

func TestProcessSectionWithNestedChildren(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	doc := newTestDocument(t, s)

	node, err := markup.DecodeString(`<section>
		<id root="aaaaaaaa-0000-0000-0000-000000000001"/>
		<code code="34089-3" codeSystem="2.16.840.1.113883.6.1"/>
		<title>DESCRIPTION</title>
		<effectiveTime value="20240115"/>
		<text><paragraph>Drug description.</paragraph></text>
		<component>
			<section>
				<id root="aaaaaaaa-0000-0000-0000-000000000002"/>
				<code code="34090-1" codeSystem="2.16.840.1.113883.6.1"/>
				<text><paragraph>Nested content.</paragraph></text>
			</section>
		</component>
	</section>`)
	require.NoError(t, err)

	o := NewOrchestrator(s, nil, nil)
	var rep report.Report
	o.Process(context.Background(), doc.ID, nil, 1, node, &rep)
	assert.True(t, rep.Success())

	ctx := context.Background()
	parent, err := s.FindSection(ctx, model.SectionKey{DocumentID: doc.ID, SectionGUID: "aaaaaaaa-0000-0000-0000-000000000001"})
	require.NoError(t, err)
	require.True(t, parent.IsSome())
	assert.Equal(t, "DESCRIPTION", *parent.MustGet().Title)
	assert.Equal(t, "20240115", *parent.MustGet().EffectiveTime)
	assert.Nil(t, parent.MustGet().ParentID)

	child, err := s.FindSection(ctx, model.SectionKey{DocumentID: doc.ID, SectionGUID: "aaaaaaaa-0000-0000-0000-000000000002"})
	require.NoError(t, err)
	require.True(t, child.IsSome())
	require.NotNil(t, child.MustGet().ParentID)
	assert.Equal(t, parent.MustGet().ID, *child.MustGet().ParentID)
	assert.Equal(t, 1, child.MustGet().SequenceNumber)

	blocks, err := s.ListContentBlocks(ctx, child.MustGet().ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1, "content scoped to the owning section")
	assert.Equal(t, "Nested content.", *blocks[0].Text)
}

func TestInvalidSectionDoesNotAbortSiblings(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	doc := newTestDocument(t, s)

	o := NewOrchestrator(s, nil, nil)
	var rep report.Report

	broken, err := markup.DecodeString(`<section><title>No identity</title></section>`)
	require.NoError(t, err)
	o.Process(context.Background(), doc.ID, nil, 1, broken, &rep)

	valid, err := markup.DecodeString(`<section>
		<id root="bbbbbbbb-0000-0000-0000-000000000001"/>
		<code code="34089-3" codeSystem="2.16.840.1.113883.6.1"/>
		<text><paragraph>Still processed.</paragraph></text>
	</section>`)
	require.NoError(t, err)
	o.Process(context.Background(), doc.ID, nil, 2, valid, &rep)

	assert.False(t, rep.Success())
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "id root")

	sec, err := s.FindSection(context.Background(), model.SectionKey{DocumentID: doc.ID, SectionGUID: "bbbbbbbb-0000-0000-0000-000000000001"})
	require.NoError(t, err)
	assert.True(t, sec.IsSome(), "the sibling after the broken section still persists")
}

func TestProcessIsIdempotent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	doc := newTestDocument(t, s)

	node, err := markup.DecodeString(`<section>
		<id root="cccccccc-0000-0000-0000-000000000001"/>
		<code code="34089-3" codeSystem="2.16.840.1.113883.6.1"/>
		<text><paragraph>Stable content.</paragraph></text>
	</section>`)
	require.NoError(t, err)

	o := NewOrchestrator(s, nil, nil)
	var first report.Report
	o.Process(context.Background(), doc.ID, nil, 1, node, &first)
	assert.Greater(t, first.Created, 0)

	var second report.Report
	o.Process(context.Background(), doc.ID, nil, 1, node, &second)
	assert.Zero(t, second.Created)
	assert.True(t, second.Success())
}
