package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Decode builds a Node tree from an XML stream. Namespaces are discarded:
// SPL uses a single default namespace and the core dispatches on local
// element names only. Processing instructions, comments, and directives are
// skipped.
func Decode(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
						continue
					}
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("decode markup: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode markup: unbalanced end element %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			cur := stack[len(stack)-1]
			cur.Text += text
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("decode markup: unexpected end of input inside %q", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, fmt.Errorf("decode markup: empty document")
	}
	return root, nil
}

// DecodeString is a convenience wrapper around Decode for in-memory markup.
func DecodeString(s string) (*Node, error) {
	return Decode(strings.NewReader(s))
}

// DecodeFile parses the markup document at path.
func DecodeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open markup file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
