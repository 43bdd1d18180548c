package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGUID(t *testing.T) {
	got, err := NormalizeGUID("0C59AE5C-0B7C-4E0F-A8B0-164E1E2BFFE3")
	require.NoError(t, err)
	assert.Equal(t, "0c59ae5c-0b7c-4e0f-a8b0-164e1e2bffe3", got, "canonical lowercase form")

	_, err = NormalizeGUID("not-a-guid")
	require.Error(t, err)
	_, err = NormalizeGUID("")
	require.Error(t, err)
}

func TestContentBlockKeyIncludesTextOnlyForParagraphs(t *testing.T) {
	text := "body"
	para := ContentBlock{SectionID: 1, BlockType: BlockParagraph, SequenceNumber: 1, Text: &text}
	generic := ContentBlock{SectionID: 1, BlockType: BlockGeneric, SequenceNumber: 1, Text: &text}

	assert.NotEmpty(t, para.Key().Text)
	assert.Empty(t, generic.Key().Text)
}
