package mdsync

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// containerAtoms are elements whose children are imported as blocks of
// their own. The container itself leaves no trace in the tree.
var containerAtoms = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Body: {},
	atom.Center: {}, atom.Dd: {}, atom.Details: {}, atom.Dialog: {},
	atom.Div: {}, atom.Dl: {}, atom.Dt: {}, atom.Fieldset: {},
	atom.Figcaption: {}, atom.Figure: {}, atom.Footer: {}, atom.Form: {},
	atom.Header: {}, atom.Html: {}, atom.Li: {}, atom.Main: {},
	atom.Nav: {}, atom.Ol: {}, atom.Section: {}, atom.Summary: {},
	atom.Table: {}, atom.Tbody: {}, atom.Td: {}, atom.Tfoot: {},
	atom.Th: {}, atom.Thead: {}, atom.Tr: {}, atom.Ul: {},
}

// skippedAtoms never contribute content.
var skippedAtoms = map[atom.Atom]struct{}{
	atom.Head: {}, atom.Script: {}, atom.Style: {}, atom.Template: {},
	atom.Title: {}, atom.Noscript: {},
}

var headingAtoms = map[atom.Atom]Tag{
	atom.H1: TagH1, atom.H2: TagH2, atom.H3: TagH3,
	atom.H4: TagH4, atom.H5: TagH5, atom.H6: TagH6,
}

// FromHTML reads an HTML fragment, typically the inner HTML of an edited
// element, into a document made of the supported node kinds. Unknown
// inline elements are unwrapped and loose inline content is grouped into
// paragraphs.
func FromHTML(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, invalidArgument("from html", "reader is nil")
	}
	nodes, err := importHTMLBlocks(r)
	if err != nil {
		return nil, err
	}
	return &Document{Children: nodes}, nil
}

func importHTMLBlocks(r io.Reader) ([]Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var im importer
	im.blocks(roots)
	im.flush()
	return im.out, nil
}

type importer struct {
	out    []Node
	inline []Node
}

func (im *importer) flush() {
	nodes := trimInlineEdges(im.inline)
	im.inline = nil
	if len(nodes) == 0 || isBlankInline(nodes) || onlyBreaks(nodes) {
		return
	}
	im.out = append(im.out, &Element{Tag: TagP, Children: nodes})
}

func (im *importer) blocks(nodes []*html.Node) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			if len(im.inline) == 0 && strings.TrimSpace(n.Data) == "" {
				continue
			}
			im.inline = append(im.inline, &Text{Value: n.Data})
		case html.ElementNode:
			im.element(n)
		case html.DocumentNode:
			im.blocks(childNodes(n))
		}
	}
}

func (im *importer) element(n *html.Node) {
	if _, ok := skippedAtoms[n.DataAtom]; ok {
		return
	}
	if tag, ok := headingAtoms[n.DataAtom]; ok {
		im.flush()
		im.out = append(im.out, &Element{Tag: tag, Children: trimInlineEdges(inlineChildren(n))})
		return
	}
	switch n.DataAtom {
	case atom.P:
		im.flush()
		im.inline = inlineChildren(n)
		im.flush()
	case atom.Blockquote:
		im.flush()
		var inner importer
		inner.blocks(childNodes(n))
		inner.flush()
		im.out = append(im.out, &Element{Tag: TagBlockquote, Children: inner.out})
	case atom.Pre:
		im.flush()
		im.out = append(im.out, codeBlock(preLang(n), textOf(n)))
	case atom.Hr:
		im.flush()
		im.out = append(im.out, &Element{Tag: TagHr})
	default:
		if _, ok := containerAtoms[n.DataAtom]; ok {
			im.flush()
			im.blocks(childNodes(n))
			im.flush()
			return
		}
		im.inline = append(im.inline, inlineNodes(n)...)
	}
}

func inlineNodes(n *html.Node) []Node {
	switch n.Type {
	case html.TextNode:
		return []Node{&Text{Value: n.Data}}
	case html.ElementNode:
	default:
		return nil
	}
	if _, ok := skippedAtoms[n.DataAtom]; ok {
		return nil
	}
	switch n.DataAtom {
	case atom.Strong, atom.B:
		return []Node{&Element{Tag: TagStrong, Children: inlineChildren(n)}}
	case atom.Em, atom.I:
		return []Node{&Element{Tag: TagEm, Children: inlineChildren(n)}}
	case atom.Code:
		code := &Element{Tag: TagCode}
		if text := textOf(n); text != "" {
			code.Children = []Node{&Text{Value: text}}
		}
		return []Node{code}
	case atom.Br:
		return []Node{&Element{Tag: TagBr}}
	}
	return inlineChildren(n)
}

// inlineChildren imports the children of n as inline content. A newline
// directly after a break is dropped; it is the break's own line ending.
func inlineChildren(n *html.Node) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, inlineNodes(c)...)
	}
	out = mergeText(out)
	for i := 1; i < len(out); i++ {
		if !isBreak(out[i-1]) {
			continue
		}
		if t, ok := out[i].(*Text); ok && strings.HasPrefix(t.Value, "\n") {
			out[i] = &Text{Value: t.Value[1:]}
		}
	}
	return mergeText(out)
}

func trimInlineEdges(nodes []Node) []Node {
	nodes = mergeText(nodes)
	if len(nodes) == 0 {
		return nodes
	}
	if t, ok := nodes[0].(*Text); ok {
		nodes[0] = &Text{Value: strings.TrimLeft(t.Value, " \t\r\n")}
	}
	last := len(nodes) - 1
	if t, ok := nodes[last].(*Text); ok {
		nodes[last] = &Text{Value: strings.TrimRight(t.Value, " \t\r\n")}
	}
	return mergeText(nodes)
}

func onlyBreaks(nodes []Node) bool {
	for _, n := range nodes {
		if isBreak(n) {
			continue
		}
		if t, ok := n.(*Text); ok && strings.TrimSpace(t.Value) == "" {
			continue
		}
		return false
	}
	return true
}

// textOf concatenates the text below n. Breaks count as newlines.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func preLang(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			if lang := classLang(c); lang != "" {
				return lang
			}
		}
	}
	return classLang(pre)
}

func classLang(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if lang, ok := strings.CutPrefix(f, "language-"); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
