// Package markup provides the parsed SPL markup tree the ingestion core
// operates on: element nodes with attributes, ordered children, and text.
// The raw XML tokenizer lives in decode.go; everything downstream works on
// Node values only.
package markup

import (
	"strings"

	"github.com/chriserikbarnes/medrecpro/internal/util/sets"
)

// Node is one element of a parsed markup tree. Children preserve document
// order. Text holds the character data directly inside this element,
// excluding descendant text (use FlattenText for the recursive form).
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Child returns the first direct child with the given element name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given element name in
// document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FlattenText returns the whitespace-normalized concatenation of this node's
// text and all descendant text, in document order. Runs of whitespace
// collapse to a single space and the result is trimmed.
func (n *Node) FlattenText() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.appendText(&sb)
	return CollapseSpace(sb.String())
}

func (n *Node) appendText(sb *strings.Builder) {
	if n.Text != "" {
		sb.WriteString(n.Text)
		sb.WriteByte(' ')
	}
	for _, c := range n.Children {
		c.appendText(sb)
	}
}

// FlattenTextExcluding behaves like FlattenText but skips descendant subtrees
// whose element name appears in the exclude set. The list builder uses this
// to excise captions from item text.
func (n *Node) FlattenTextExcluding(exclude ...string) string {
	if n == nil {
		return ""
	}
	skip := sets.New(exclude...)
	var sb strings.Builder
	n.appendTextExcluding(&sb, skip)
	return CollapseSpace(sb.String())
}

func (n *Node) appendTextExcluding(sb *strings.Builder, skip sets.Set[string]) {
	if n.Text != "" {
		sb.WriteString(n.Text)
		sb.WriteByte(' ')
	}
	for _, c := range n.Children {
		if skip.Has(c.Name) {
			continue
		}
		c.appendTextExcluding(sb, skip)
	}
}

// Walk visits n and every descendant in document order. Returning false from
// fn prunes recursion into that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns every descendant (including n itself) with the given element
// name, in document order.
func (n *Node) Find(name string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			out = append(out, c)
		}
		return true
	})
	return out
}

// CollapseSpace normalizes whitespace: runs collapse to one space and the
// result is trimmed.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
