package mdsync

import "strings"

// Node is either a *Text leaf or an *Element. The set is closed: no other
// type outside this package implements Node.
type Node interface {
	node()
}

// Text is a leaf holding literal characters.
type Text struct {
	Value string
}

// Element is a tagged container with ordered children.
type Element struct {
	Tag      Tag
	Children []Node
	// Lang is the info-string language of a code block. Only meaningful on
	// a TagCode element inside TagPre.
	Lang string
}

func (*Text) node()    {}
func (*Element) node() {}

// Document is the root of a parsed tree. It is created fresh by every parse
// and is not modified afterwards.
type Document struct {
	Children []Node
	// Meta holds front matter found at the start of the source, if any.
	Meta map[string]any
}

// NewText returns a text leaf.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// NewElement returns an element with the given children.
func NewElement(tag Tag, children ...Node) *Element {
	return &Element{Tag: tag, Children: children}
}

// TextContent returns the concatenated text of n and its descendants.
// Hard breaks contribute a newline.
func TextContent(n Node) string {
	var b strings.Builder
	appendTextContent(&b, n)
	return b.String()
}

func appendTextContent(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		if n != nil {
			b.WriteString(n.Value)
		}
	case *Element:
		if n == nil {
			return
		}
		if n.Tag == TagBr {
			b.WriteByte('\n')
			return
		}
		for _, c := range n.Children {
			appendTextContent(b, c)
		}
	}
}

// mergeText joins adjacent text leaves and drops empty ones.
func mergeText(nodes []Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		t, ok := n.(*Text)
		if !ok {
			out = append(out, n)
			continue
		}
		if t == nil || t.Value == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok {
				out[len(out)-1] = &Text{Value: prev.Value + t.Value}
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
