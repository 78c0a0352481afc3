package mdsync

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// wrapParagraph reflows serialized paragraph text to width columns. Existing
// line breaks are kept. A wrapped line that would start a block construct
// is joined back onto the previous line, so wrapping never changes the
// parsed tree beyond soft breaks.
func wrapParagraph(text string, width int) string {
	if width <= 0 || fitsWidth(text, width) {
		return text
	}
	w := wordwrap.NewWriter(width)
	w.Breakpoints = []rune{}
	w.KeepNewlines = true
	_, _ = w.Write([]byte(text))
	_ = w.Close()

	lines := strings.Split(w.String(), "\n")
	out := []string{lines[0]}
	for _, line := range lines[1:] {
		line = strings.TrimLeft(line, " ")
		if line == "" {
			continue
		}
		if startsBlock(line) && !endsWithHardBreak(out[len(out)-1]) {
			out[len(out)-1] += " " + line
			continue
		}
		out = append(out, line)
	}
	for i, line := range out {
		out[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(out, "\n")
}

func fitsWidth(text string, width int) bool {
	for _, line := range strings.Split(text, "\n") {
		if ansi.PrintableRuneWidth(line) > width {
			return false
		}
	}
	return true
}

// startsBlock reports whether line, placed at the start of a paragraph
// continuation line, would be read as something other than paragraph text.
func startsBlock(line string) bool {
	return lineStartEscape(line) >= 0
}

func endsWithHardBreak(line string) bool {
	n := len(line) - len(strings.TrimRight(line, `\`))
	return n%2 == 1
}
