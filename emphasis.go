package mdsync

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var traceKey = parser.NewContextKey()

// emphasisParser scans '*' and '_' runs like goldmark's own emphasis parser
// but hands them to emphasisDelimiters for pairing.
type emphasisParser struct{}

func (emphasisParser) Trigger() []byte {
	return []byte{'*', '_'}
}

func (emphasisParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	trace, _ := pc.Get(traceKey).(tracing.Trace)
	if trace == nil {
		trace = tracer()
	}
	d := parser.ScanDelimiter(line, before, 1, emphasisDelimiters{trace: trace})
	if d == nil {
		return nil
	}
	d.Segment = segment.WithStop(segment.Start + d.OriginalLength)
	block.Advance(d.OriginalLength)
	pc.PushDelimiter(d)
	return d
}

// emphasisDelimiters pairs runs of the same character. goldmark applies the
// rule of three and takes two delimiters whenever both runs have two left;
// on top of that a single-delimiter match is only allowed when the opener
// has an odd number left, so an opening "**" never gives up half of its
// pair to a lone '*'.
type emphasisDelimiters struct {
	trace tracing.Trace
}

func (emphasisDelimiters) IsDelimiter(b byte) bool {
	return b == '*' || b == '_'
}

func (p emphasisDelimiters) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	ok := opener.Char == closer.Char &&
		((opener.Length >= 2 && closer.Length >= 2) || opener.Length%2 == 1)
	p.trace.Debugf("emphasis: %c opener %d/%d, closer %d/%d -> %v",
		closer.Char, opener.Length, opener.OriginalLength, closer.Length, closer.OriginalLength, ok)
	return ok
}

func (emphasisDelimiters) OnMatch(consumes int) ast.Node {
	return ast.NewEmphasis(consumes)
}
