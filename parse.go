package mdsync

import (
	"bufio"
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

// markdownParser knows the block constructs of the tree plus code spans and
// emphasis. Lists, links, autolinks and inline HTML are not registered, so
// their source stays literal text.
var markdownParser = sync.OnceValue(func() parser.Parser {
	return parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewSetextHeadingParser(), 100),
			util.Prioritized(parser.NewThematicBreakParser(), 200),
			util.Prioritized(parser.NewCodeBlockParser(), 500),
			util.Prioritized(parser.NewATXHeadingParser(), 600),
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewBlockquoteParser(), 800),
			util.Prioritized(htmlBlockParser{parser.NewHTMLBlockParser()}, 900),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(emphasisParser{}, 500),
		),
	)
})

// parseBlocks reads markdown body text into block nodes.
func parseBlocks(body string, cfg *config) []Node {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	source := []byte(body)
	pc := parser.NewContext()
	pc.Set(traceKey, cfg.tracer)
	root := markdownParser().Parse(text.NewReader(source), parser.WithContext(pc))
	w := astWalker{source: source, cfg: cfg}
	return w.blocks(root)
}

// astWalker converts a goldmark tree into Element and Text nodes.
type astWalker struct {
	source []byte
	cfg    *config
	buf    bytes.Buffer
	out    *bufio.Writer
}

func (w *astWalker) blocks(parent ast.Node) []Node {
	var out []Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Paragraph:
			out = append(out, &Element{Tag: TagP, Children: w.inlines(n)})
		case *ast.Heading:
			tag, _ := HeadingTag(n.Level)
			out = append(out, &Element{Tag: tag, Children: w.inlines(n)})
		case *ast.ThematicBreak:
			out = append(out, &Element{Tag: TagHr})
		case *ast.Blockquote:
			out = append(out, &Element{Tag: TagBlockquote, Children: w.blocks(n)})
		case *ast.FencedCodeBlock:
			out = append(out, codeBlock(w.value(n.Language(w.source)), w.lines(n.Lines())))
		case *ast.CodeBlock:
			out = append(out, codeBlock("", w.lines(n.Lines())))
		case *ast.HTMLBlock:
			out = append(out, w.htmlBlock(n)...)
		default:
			out = append(out, w.blocks(c)...)
		}
	}
	return out
}

func (w *astWalker) inlines(parent ast.Node) []Node {
	var out []Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			out = append(out, &Text{Value: w.value(n.Segment.Value(w.source))})
			switch {
			case n.HardLineBreak():
				out = append(out, &Element{Tag: TagBr})
			case n.SoftLineBreak():
				out = append(out, &Text{Value: "\n"})
			}
		case *ast.CodeSpan:
			var b strings.Builder
			for t := n.FirstChild(); t != nil; t = t.NextSibling() {
				if seg, ok := t.(*ast.Text); ok {
					b.Write(seg.Segment.Value(w.source))
				}
			}
			content := strings.ReplaceAll(b.String(), "\n", " ")
			out = append(out, &Element{Tag: TagCode, Children: []Node{&Text{Value: content}}})
		case *ast.Emphasis:
			tag := TagEm
			if n.Level == 2 {
				tag = TagStrong
			}
			out = append(out, &Element{Tag: tag, Children: w.inlines(n)})
		default:
			out = append(out, w.inlines(c)...)
		}
	}
	return mergeText(out)
}

// value resolves backslash escapes and character references in raw source
// the way goldmark's HTML writer does, then turns the escaped HTML back into
// plain text.
func (w *astWalker) value(raw []byte) string {
	if bytes.IndexAny(raw, "\\&\x00") < 0 {
		return string(raw)
	}
	if w.out == nil {
		w.out = bufio.NewWriter(&w.buf)
	}
	w.buf.Reset()
	gmhtml.DefaultWriter.Write(w.out, raw)
	_ = w.out.Flush()
	return html.UnescapeString(w.buf.String())
}

func (w *astWalker) lines(lines *text.Segments) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func (w *astWalker) htmlBlock(n *ast.HTMLBlock) []Node {
	raw := w.lines(n.Lines())
	if n.HasClosure() {
		raw += string(n.ClosureLine.Value(w.source))
	}
	nodes, err := importHTMLBlocks(strings.NewReader(raw))
	if err != nil {
		w.cfg.tracer.Errorf("html block kept as text: %v", err)
		return []Node{&Element{Tag: TagP, Children: []Node{&Text{Value: strings.TrimRight(raw, "\n")}}}}
	}
	return nodes
}

func codeBlock(lang, body string) Node {
	code := &Element{Tag: TagCode, Lang: lang}
	if body != "" {
		code.Children = []Node{&Text{Value: body}}
	}
	return &Element{Tag: TagPre, Children: []Node{code}}
}

var literalTags = [...]string{"pre", "script", "style", "textarea"}

// htmlBlockParser keeps a block-level HTML element going across blank lines
// while a pre, script, style or textarea opened inside it is still open.
type htmlBlockParser struct {
	parser.BlockParser
}

func (p htmlBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	block := node.(*ast.HTMLBlock)
	if block.HTMLBlockType == ast.HTMLBlockType6 || block.HTMLBlockType == ast.HTMLBlockType7 {
		line, segment := reader.PeekLine()
		if util.IsBlank(line) && literalOpen(block.Lines(), reader.Source()) {
			block.Lines().Append(segment)
			reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
			return parser.Continue | parser.NoChildren
		}
	}
	return p.BlockParser.Continue(node, reader, pc)
}

// literalOpen reports whether the lines leave a literal element unclosed.
func literalOpen(lines *text.Segments, source []byte) bool {
	open := false
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		lower := strings.ToLower(string(seg.Value(source)))
		if open {
			open = !closesLiteral(lower)
		} else {
			open = opensLiteral(lower)
		}
	}
	return open
}

// opensLiteral reports whether a lowercased line opens a literal element
// without closing it again.
func opensLiteral(lower string) bool {
	for _, tag := range literalTags {
		i := strings.LastIndex(lower, "<"+tag)
		if i < 0 {
			continue
		}
		after := lower[i+1+len(tag):]
		if after != "" && after[0] != ' ' && after[0] != '\t' && after[0] != '>' && after[0] != '\n' {
			continue
		}
		if !strings.Contains(lower[i:], "</"+tag+">") {
			return true
		}
	}
	return false
}

func closesLiteral(lower string) bool {
	for _, tag := range literalTags {
		if strings.Contains(lower, "</"+tag+">") {
			return true
		}
	}
	return false
}
