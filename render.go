package mdsync

import (
	"bytes"
	"strings"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// htmlEscaper escapes only the characters HTML reserves. Everything else,
// including non-ASCII text, is written as is.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Render writes doc as HTML. Block elements end with a newline; nesting
// follows the tree exactly.
func Render(doc *Document) (string, error) {
	if doc == nil {
		return "", invalidArgument("render", "document is nil")
	}
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	for _, n := range doc.Children {
		renderNode(buf, n)
	}
	out := buf.String()
	bufferPool.Put(buf)
	return out, nil
}

// RenderNode writes a single node and its descendants as HTML.
func RenderNode(n Node) (string, error) {
	if isNilNode(n) {
		return "", invalidArgument("render", "node is nil")
	}
	var buf bytes.Buffer
	renderNode(&buf, n)
	return buf.String(), nil
}

func renderNode(buf *bytes.Buffer, n Node) {
	switch n := n.(type) {
	case *Text:
		if n != nil {
			htmlEscaper.WriteString(buf, n.Value)
		}
	case *Element:
		if n != nil {
			renderElement(buf, n)
		}
	}
}

func renderElement(buf *bytes.Buffer, el *Element) {
	switch el.Tag {
	case TagHr:
		buf.WriteString("<hr />\n")
		return
	case TagBr:
		buf.WriteString("<br />\n")
		return
	}
	buf.WriteByte('<')
	buf.WriteString(string(el.Tag))
	if el.Tag == TagCode && el.Lang != "" {
		buf.WriteString(` class="language-`)
		htmlEscaper.WriteString(buf, el.Lang)
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
	if el.Tag == TagBlockquote {
		buf.WriteByte('\n')
	}
	for _, c := range el.Children {
		renderNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(string(el.Tag))
	buf.WriteByte('>')
	if el.Tag.IsBlock() {
		buf.WriteByte('\n')
	}
}

func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *Text:
		return n == nil
	case *Element:
		return n == nil
	}
	return true
}
