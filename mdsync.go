package mdsync

import "strings"

// Parse reads markdown into a fresh document. It never fails: text that is
// not recognized syntax, including unmatched emphasis delimiters, is kept
// as literal characters.
func Parse(markdown string, opts ...Option) *Document {
	cfg := newConfig(opts)
	doc := &Document{}
	body := markdown
	if cfg.frontMatter {
		doc.Meta, body = splitFrontMatter(markdown, &cfg)
	}
	doc.Children = parseBlocks(body, &cfg)
	return doc
}

// MarkdownToHast parses markdown with default options.
func MarkdownToHast(markdown string) *Document {
	return Parse(markdown)
}

// MarkdownToHTML parses markdown and renders the result as HTML.
func MarkdownToHTML(markdown string) string {
	out, _ := Render(MarkdownToHast(markdown))
	return out
}

// SyncBack converts the HTML of an edited surface back to markdown.
func SyncBack(html string, opts ...Option) (string, error) {
	doc, err := FromHTML(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return SerializeDocument(doc, opts...)
}
