package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBuildsTree(t *testing.T) {
	node, err := DecodeString(`<section ID="s1">
		<title>Warnings</title>
		<text>
			<paragraph>First <content styleCode="bold">bold</content> tail</paragraph>
			<list listType="ordered"><item>one</item></list>
		</text>
	</section>`)
	require.NoError(t, err)

	assert.Equal(t, "section", node.Name)
	assert.Equal(t, "s1", node.Attr("ID"))
	require.NotNil(t, node.Child("text"))

	text := node.Child("text")
	require.Len(t, text.Children, 2)
	assert.Equal(t, "paragraph", text.Children[0].Name)
	assert.Equal(t, "list", text.Children[1].Name)
	assert.Equal(t, "ordered", text.Children[1].Attr("listType"))
}

func TestDecodeDiscardsNamespaces(t *testing.T) {
	node, err := DecodeString(`<document xmlns="urn:hl7-org:v3" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
		<component><observationMedia xsi:type="ED"/></component>
	</document>`)
	require.NoError(t, err)

	media := node.Find("observationMedia")
	require.Len(t, media, 1)
	assert.Equal(t, "ED", media[0].Attr("type"))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := DecodeString(`<a><b></a>`)
	assert.Error(t, err)

	_, err = DecodeString(``)
	assert.Error(t, err)
}

func TestFlattenTextCollapsesWhitespace(t *testing.T) {
	node, err := DecodeString("<paragraph>\n\tAlpha  <content>beta</content>\n gamma\n</paragraph>")
	require.NoError(t, err)
	assert.Equal(t, "Alpha beta gamma", node.FlattenText())
}

func TestFlattenTextExcluding(t *testing.T) {
	node, err := DecodeString(`<item><caption>1.</caption>First entry</item>`)
	require.NoError(t, err)
	assert.Equal(t, "1. First entry", node.FlattenText())
	assert.Equal(t, "First entry", node.FlattenTextExcluding("caption"))
}

func TestChildHelpers(t *testing.T) {
	node, err := DecodeString(`<r><a/><b i="1"/><b i="2"/></r>`)
	require.NoError(t, err)

	assert.Nil(t, node.Child("missing"))
	assert.Equal(t, "a", node.Child("a").Name)
	bs := node.ChildrenNamed("b")
	require.Len(t, bs, 2)
	assert.Equal(t, "1", bs[0].Attr("i"))
	assert.Equal(t, "2", bs[1].Attr("i"))
}

func TestWalkPrunes(t *testing.T) {
	node, err := DecodeString(`<r><skip><inner/></skip><keep/></r>`)
	require.NoError(t, err)

	var seen []string
	node.Walk(func(n *Node) bool {
		seen = append(seen, n.Name)
		return n.Name != "skip"
	})
	assert.Equal(t, []string{"r", "skip", "keep"}, seen)
}
