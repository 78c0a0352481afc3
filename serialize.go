package mdsync

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"
)

type emphasisSet uint8

const (
	inStrong emphasisSet = 1 << iota
	inEm
	inCode
)

// maxMarkerRetries bounds how many emphasis elements of one paragraph are
// tried with the other marker character.
const maxMarkerRetries = 16

func emphasisBit(t Tag) emphasisSet {
	if t == TagStrong {
		return inStrong
	}
	return inEm
}

type serializer struct {
	cfg *config
	// flip holds emphasis written with the other marker character.
	flip map[*Element]bool
}

// Serialize writes n as markdown. Inline nodes are written as a paragraph,
// so Serialize(strong(b, em(i))) yields exactly "**b*i***".
func Serialize(n Node, opts ...Option) (string, error) {
	if isNilNode(n) {
		return "", invalidArgument("serialize", "node is nil")
	}
	cfg := newConfig(opts)
	s := serializer{cfg: &cfg}
	return s.blocks([]Node{n}), nil
}

// SerializeDocument writes every block of doc as markdown, separated by a
// blank line. Front matter is not written back.
func SerializeDocument(doc *Document, opts ...Option) (string, error) {
	if doc == nil {
		return "", invalidArgument("serialize", "document is nil")
	}
	cfg := newConfig(opts)
	s := serializer{cfg: &cfg}
	return s.blocks(doc.Children), nil
}

func (s *serializer) blocks(nodes []Node) string {
	var parts []string
	var loose []Node
	flush := func() {
		if len(loose) == 0 {
			return
		}
		if p := s.paragraph(loose); p != "" {
			parts = append(parts, p)
		}
		loose = nil
	}
	for _, n := range nodes {
		if isNilNode(n) {
			continue
		}
		el, ok := n.(*Element)
		if !ok || !el.Tag.IsBlock() {
			loose = append(loose, n)
			continue
		}
		flush()
		if out := s.block(el); out != "" {
			parts = append(parts, out)
		}
	}
	flush()
	return strings.Join(parts, "\n\n")
}

func (s *serializer) block(el *Element) string {
	switch el.Tag {
	case TagP:
		return s.paragraph(el.Children)
	case TagHr:
		return "---"
	case TagBlockquote:
		return s.blockquote(el)
	case TagPre:
		return s.codeBlock(el)
	}
	if level := el.Tag.HeadingLevel(); level > 0 {
		return s.heading(level, el.Children)
	}
	return s.blocks(el.Children)
}

func (s *serializer) paragraph(children []Node) string {
	nodes := trimBreaks(s.normalize(children, 0))
	out := strings.TrimFunc(s.checkedInlines(nodes, true), unicode.IsSpace)
	if out == "" {
		return ""
	}
	if s.cfg.wrap > 0 {
		out = wrapParagraph(out, s.cfg.wrap)
	}
	return out
}

func (s *serializer) heading(level int, children []Node) string {
	nodes := flattenLines(s.normalize(children, 0))
	content := strings.TrimFunc(s.checkedInlines(nodes, false), unicode.IsSpace)
	if strings.HasSuffix(content, "#") {
		content = content[:len(content)-1] + `\#`
	}
	hashes := strings.Repeat("#", level)
	if content == "" {
		return hashes
	}
	return hashes + " " + content
}

func (s *serializer) blockquote(el *Element) string {
	cfg := *s.cfg
	if cfg.wrap > 0 {
		cfg.wrap = max(cfg.wrap-2, 1)
	}
	quoted := serializer{cfg: &cfg}
	inner := quoted.blocks(el.Children)
	if inner == "" {
		return ">"
	}
	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func (s *serializer) codeBlock(pre *Element) string {
	lang := ""
	for _, c := range pre.Children {
		if code, ok := c.(*Element); ok && code != nil && code.Tag == TagCode {
			lang = code.Lang
			break
		}
	}
	text := TextContent(pre)
	fenceChar := byte('`')
	if strings.Contains(lang, "`") {
		fenceChar = '~'
	}
	n := longestRun(text, fenceChar) + 1
	if n < 3 {
		n = 3
	}
	fence := strings.Repeat(string(fenceChar), n)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return fence + lang + "\n" + text + fence
}

// normalize prepares inline content for writing: nested emphasis of the same
// kind collapses, adjacent emphasis of the same kind merges, empty emphasis
// disappears and breaks at the edges of emphasis move outside of it.
func (s *serializer) normalize(nodes []Node, active emphasisSet) []Node {
	var out []Node
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			if n != nil && n.Value != "" {
				out = append(out, n)
			}
		case *Element:
			if n == nil {
				continue
			}
			switch n.Tag {
			case TagStrong, TagEm:
				bit := emphasisBit(n.Tag)
				if active&bit != 0 {
					out = append(out, s.normalize(n.Children, active)...)
					continue
				}
				children := s.normalize(n.Children, active|bit)
				var lead, trail []Node
				for len(children) > 0 && isBreak(children[0]) {
					lead = append(lead, children[0])
					children = children[1:]
				}
				for len(children) > 0 && isBreak(children[len(children)-1]) {
					trail = append([]Node{children[len(children)-1]}, trail...)
					children = children[:len(children)-1]
				}
				out = append(out, lead...)
				switch {
				case len(children) == 0:
				case isBlankInline(children):
					out = append(out, children...)
				default:
					out = append(out, &Element{Tag: n.Tag, Children: children})
				}
				out = append(out, trail...)
			case TagBr, TagCode:
				out = append(out, n)
			default:
				out = append(out, s.normalize(n.Children, active)...)
			}
		}
	}
	return s.mergeEmphasis(mergeText(out), active)
}

// mergeEmphasis joins neighbouring emphasis of the same kind, including
// pairs that only became neighbours when a wrapper was flattened.
func (s *serializer) mergeEmphasis(nodes []Node, active emphasisSet) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		el, ok := n.(*Element)
		if ok && (el.Tag == TagStrong || el.Tag == TagEm) {
			if prev, ok := lastElement(out); ok && prev.Tag == el.Tag {
				merged := append(append([]Node{}, prev.Children...), el.Children...)
				out[len(out)-1] = &Element{Tag: el.Tag, Children: s.normalize(merged, active|emphasisBit(el.Tag))}
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// checkedInlines writes nodes and reads the result back. When a marker run
// resolves differently than intended, emphasis elements are retried one at
// a time with the other marker character; a retry is kept when the first
// differing character moves further right.
func (s *serializer) checkedInlines(nodes []Node, lineStart bool) string {
	out := s.inlines(nodes, lineStart)
	candidates := emphasisElements(nodes, nil)
	if len(candidates) == 0 {
		return out
	}
	want := appendStyled(nil, nodes, 0)
	at := firstStyleMismatch(want, s.readBack(out))
	if at < 0 {
		return out
	}
	if len(candidates) > maxMarkerRetries {
		candidates = candidates[:maxMarkerRetries]
	}
	s.flip = make(map[*Element]bool, len(candidates))
	defer func() { s.flip = nil }()
	for _, el := range candidates {
		s.flip[el] = true
		retry := s.inlines(nodes, lineStart)
		next := firstStyleMismatch(want, s.readBack(retry))
		s.cfg.tracer.Debugf("serialize: %s with other marker, mismatch %d -> %d", el.Tag, at, next)
		if next < 0 {
			return retry
		}
		if next > at {
			at, out = next, retry
			continue
		}
		delete(s.flip, el)
	}
	return out
}

// readBack parses serialized inline markdown and returns its styled runes.
func (s *serializer) readBack(md string) []styledRune {
	cfg := config{tracer: s.cfg.tracer}
	return appendStyled(nil, parseBlocks(md, &cfg), 0)
}

// styledRune is a non-space character with the emphasis and code around it.
type styledRune struct {
	r     rune
	style emphasisSet
}

func appendStyled(dst []styledRune, nodes []Node, style emphasisSet) []styledRune {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			if n == nil {
				continue
			}
			for _, r := range n.Value {
				if !unicode.IsSpace(r) {
					dst = append(dst, styledRune{r: r, style: style})
				}
			}
		case *Element:
			if n == nil {
				continue
			}
			switch n.Tag {
			case TagStrong, TagEm:
				dst = appendStyled(dst, n.Children, style|emphasisBit(n.Tag))
			case TagCode:
				dst = appendStyled(dst, n.Children, style|inCode)
			default:
				dst = appendStyled(dst, n.Children, style)
			}
		}
	}
	return dst
}

// firstStyleMismatch returns the index of the first rune whose character or
// style differs, or -1 when both sequences agree.
func firstStyleMismatch(want, got []styledRune) int {
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			return i
		}
	}
	if len(got) > len(want) {
		return len(want)
	}
	return -1
}

// emphasisElements lists strong and em elements in document order.
func emphasisElements(nodes []Node, dst []*Element) []*Element {
	for _, n := range nodes {
		el, ok := n.(*Element)
		if !ok || el == nil {
			continue
		}
		if el.Tag == TagStrong || el.Tag == TagEm {
			dst = append(dst, el)
		}
		dst = emphasisElements(el.Children, dst)
	}
	return dst
}

func (s *serializer) inlines(nodes []Node, lineStart bool) string {
	var b strings.Builder
	atLineStart := lineStart
	for i, n := range nodes {
		var piece string
		switch n := n.(type) {
		case *Text:
			piece = escapeText(n.Value, atLineStart)
		case *Element:
			switch n.Tag {
			case TagBr:
				piece = "\\\n"
			case TagCode:
				piece = codeSpan(TextContent(n))
			case TagStrong, TagEm:
				piece = s.emphasis(n, nodes, i, b.String())
			}
		}
		if piece == "" {
			continue
		}
		b.WriteString(piece)
		atLineStart = strings.HasSuffix(piece, "\n")
	}
	return b.String()
}

// emphasis wraps the serialized children of el in its marker pair. Boundary
// whitespace is moved outside the markers so they stay flanking.
func (s *serializer) emphasis(el *Element, siblings []Node, i int, written string) string {
	inner := s.inlines(el.Children, false)
	left := strings.TrimLeftFunc(inner, unicode.IsSpace)
	core := strings.TrimRightFunc(left, unicode.IsSpace)
	lead := inner[:len(inner)-len(left)]
	trail := left[len(core):]
	if core == "" {
		return lead + trail
	}
	c := s.markerChar(el, siblings, i)
	// Two sibling runs of the same character would fuse into one.
	if lead == "" && i > 0 && isEmphasis(siblings[i-1]) && strings.HasSuffix(written, string(c)) {
		if alt := otherMarker(c); alt == '*' || trail != "" || !touchesWord(siblings, i, false) {
			c = alt
		}
	}
	if s.flip[el] {
		c = otherMarker(c)
	}
	marker := strings.Repeat(string(c), len(el.Tag.marker()))
	return lead + marker + core + marker + trail
}

// markerChar returns '*' unless '_' is configured for em and no word
// character touches the emphasis from outside; underscores cannot open or
// close inside a word.
func (s *serializer) markerChar(el *Element, siblings []Node, i int) byte {
	if el.Tag != TagEm || s.cfg.emphasis != '_' {
		return '*'
	}
	if touchesWord(siblings, i, true) || touchesWord(siblings, i, false) {
		return '*'
	}
	return '_'
}

// touchesWord reports whether the text sibling before (or after) position i
// ends (or starts) with a word character.
func touchesWord(siblings []Node, i int, before bool) bool {
	if before {
		if i == 0 {
			return false
		}
		t, ok := siblings[i-1].(*Text)
		if !ok {
			return false
		}
		r, _ := utf8.DecodeLastRuneInString(t.Value)
		return isWordRune(r)
	}
	if i+1 >= len(siblings) {
		return false
	}
	t, ok := siblings[i+1].(*Text)
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.Value)
	return isWordRune(r)
}

func otherMarker(c byte) byte {
	if c == '*' {
		return '_'
	}
	return '*'
}

func isEmphasis(n Node) bool {
	el, ok := n.(*Element)
	return ok && el != nil && (el.Tag == TagStrong || el.Tag == TagEm)
}

// escapeText writes a text leaf as markdown. Characters are written raw;
// only those that would otherwise be read as syntax get a backslash.
// Whitespace around newlines is dropped and blank lines collapse.
func escapeText(s string, lineStart bool) string {
	b := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
				b = b[:len(b)-1]
			}
			if !lineStart {
				b = append(b, '\n')
			}
			lineStart = true
			continue
		}
		if lineStart {
			if c == ' ' || c == '\t' {
				continue
			}
			lineStart = false
			if j := lineStartEscape(s[i:]); j >= 0 {
				b = append(b, s[i:i+j]...)
				b = append(b, '\\', s[i+j])
				i += j
				continue
			}
		}
		switch c {
		case '\\', '*', '`':
			b = append(b, '\\', c)
		case '_':
			prev, _ := utf8.DecodeLastRuneInString(s[:i])
			next, _ := utf8.DecodeRuneInString(s[i+1:])
			if i > 0 && i+1 < len(s) && isWordRune(prev) && isWordRune(next) {
				b = append(b, c)
			} else {
				b = append(b, '\\', c)
			}
		case '&':
			if entityAt(s[i:]) {
				b = append(b, '\\', c)
			} else {
				b = append(b, c)
			}
		case '<':
			if i+1 < len(s) && (isASCIILetter(s[i+1]) || s[i+1] == '/' || s[i+1] == '!' || s[i+1] == '?') {
				b = append(b, '\\', c)
			} else {
				b = append(b, c)
			}
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// lineStartEscape returns the offset of the character that must be escaped
// for rest not to begin a block construct, or -1.
func lineStartEscape(rest string) int {
	switch rest[0] {
	case '#', '>', '-', '+', '=', '~':
		return 0
	}
	j := 0
	for j < len(rest) && j < 10 && util.IsNumeric(rest[j]) {
		j++
	}
	if j == 0 || j > 9 || j >= len(rest) {
		return -1
	}
	if rest[j] != '.' && rest[j] != ')' {
		return -1
	}
	if j+1 == len(rest) || rest[j+1] == ' ' || rest[j+1] == '\t' || rest[j+1] == '\n' {
		return j
	}
	return -1
}

// entityAt reports whether s starts with a character reference that would
// be resolved when read back.
func entityAt(s string) bool {
	end := strings.IndexByte(s, ';')
	if end < 2 {
		return false
	}
	name := s[1:end]
	if name[0] != '#' {
		_, ok := util.LookUpHTML5EntityByName(name)
		return ok
	}
	num, digit, limit := name[1:], util.IsNumeric, 7
	if num != "" && (num[0] == 'x' || num[0] == 'X') {
		num, digit, limit = num[1:], util.IsHexDecimal, 6
	}
	if num == "" || len(num) > limit {
		return false
	}
	for i := 0; i < len(num); i++ {
		if !digit(num[i]) {
			return false
		}
	}
	return true
}

func codeSpan(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		return ""
	}
	fence := strings.Repeat("`", longestRun(text, '`')+1)
	pad := ""
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "") {
		pad = " "
	}
	return fence + pad + text + pad + fence
}

func longestRun(s string, c byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			if cur > longest {
				longest = cur
			}
			continue
		}
		cur = 0
	}
	return longest
}

// trimBreaks drops hard breaks at the start and end of a block; markdown has
// no way to express them there.
func trimBreaks(nodes []Node) []Node {
	for len(nodes) > 0 && isBreak(nodes[0]) {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && isBreak(nodes[len(nodes)-1]) {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// flattenLines turns breaks and newlines into spaces for single-line blocks.
func flattenLines(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			out = append(out, &Text{Value: strings.ReplaceAll(n.Value, "\n", " ")})
		case *Element:
			switch n.Tag {
			case TagBr:
				out = append(out, &Text{Value: " "})
			case TagStrong, TagEm:
				out = append(out, &Element{Tag: n.Tag, Children: flattenLines(n.Children)})
			default:
				out = append(out, n)
			}
		}
	}
	return mergeText(out)
}

func isBreak(n Node) bool {
	el, ok := n.(*Element)
	return ok && el != nil && el.Tag == TagBr
}

func isBlankInline(nodes []Node) bool {
	for _, n := range nodes {
		t, ok := n.(*Text)
		if !ok || strings.TrimFunc(t.Value, unicode.IsSpace) != "" {
			return false
		}
	}
	return true
}

func lastElement(nodes []Node) (*Element, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	el, ok := nodes[len(nodes)-1].(*Element)
	return el, ok && el != nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
