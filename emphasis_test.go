package mdsync

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/yuin/goldmark/parser"
)

func TestEmphasisResolution(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"em", "*a*", "<p><em>a</em></p>\n"},
		{"strong", "**a**", "<p><strong>a</strong></p>\n"},
		{"underscore em", "_a_", "<p><em>a</em></p>\n"},
		{"underscore strong", "__a__", "<p><strong>a</strong></p>\n"},
		{"em in strong at end", "**b*i***", "<p><strong>b<em>i</em></strong></p>\n"},
		{"em in strong at start", "***i*b**", "<p><strong><em>i</em>b</strong></p>\n"},
		{"strong skips lone star", "**bold* and *italic***", "<p><strong>bold* and <em>italic</em></strong></p>\n"},
		{"triple", "***a***", "<p><em><strong>a</strong></em></p>\n"},
		{"strong in em", "*a **b** c*", "<p><em>a <strong>b</strong> c</em></p>\n"},
		{"fused runs", "**a***b*", "<p><strong>a</strong><em>b</em></p>\n"},
		{"adjacent", "**b** *i*", "<p><strong>b</strong> <em>i</em></p>\n"},
		{"intraword star", "a*b*c", "<p>a<em>b</em>c</p>\n"},
		{"intraword underscore", "snake_case_name", "<p>snake_case_name</p>\n"},
		{"unclosed", "**a", "<p>**a</p>\n"},
		{"unopened", "a**", "<p>a**</p>\n"},
		{"spaced", "a * b * c", "<p>a * b * c</p>\n"},
		{"mixed markers", "*a_", "<p>*a_</p>\n"},
		{"escaped", "\\*a\\*", "<p>*a*</p>\n"},
		{"code span wins", "`**x**`", "<p><code>**x**</code></p>\n"},
		{"entity is not a delimiter", "&#42;a&#42;", "<p>*a*</p>\n"},
		{"punctuation flanking", "**\"q\"**", "<p><strong>&quot;q&quot;</strong></p>\n"},
		{"rule of three", "*a**b*", "<p><em>a**b</em></p>\n"},
		{"even opener stays literal", "**foo*", "<p>**foo*</p>\n"},
		{"odd opener splits", "***a* b**", "<p><strong><em>a</em> b</strong></p>\n"},
		{"underscore after stars", "**a*b***_c_", "<p><strong>a<em>b</em></strong><em>c</em></p>\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := MarkdownToHTML(tc.src); got != tc.want {
				t.Fatalf("MarkdownToHTML(%q)\n got: %q\nwant: %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestEmphasisResolutionTree(t *testing.T) {
	doc := Parse("**bold* and *italic***")
	if len(doc.Children) != 1 {
		t.Fatalf("expected one block, got %d", len(doc.Children))
	}
	p, ok := doc.Children[0].(*Element)
	if !ok || p.Tag != TagP || len(p.Children) != 1 {
		t.Fatalf("expected paragraph with one child, got %#v", doc.Children[0])
	}
	strong, ok := p.Children[0].(*Element)
	if !ok || strong.Tag != TagStrong {
		t.Fatalf("expected strong, got %#v", p.Children[0])
	}
	if len(strong.Children) != 2 {
		t.Fatalf("expected text and em inside strong, got %d children", len(strong.Children))
	}
	if text, ok := strong.Children[0].(*Text); !ok || text.Value != "bold* and " {
		t.Fatalf("unexpected leading text: %#v", strong.Children[0])
	}
	em, ok := strong.Children[1].(*Element)
	if !ok || em.Tag != TagEm || TextContent(em) != "italic" {
		t.Fatalf("unexpected em: %#v", strong.Children[1])
	}
}

func TestEmphasisTracesResolution(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	trace := tracing.Select("mdsync")
	trace.SetTraceLevel(tracing.LevelDebug)
	defer trace.SetTraceLevel(tracing.LevelError)

	doc := Parse("**b*i***", WithTracer(trace))
	out, err := Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<strong>b<em>i</em></strong>") {
		t.Fatalf("unexpected output with tracing enabled: %q", out)
	}
}

func TestEmphasisDelimitersCanOpenCloser(t *testing.T) {
	t.Parallel()
	run := func(char byte, remaining, original int) *parser.Delimiter {
		d := parser.NewDelimiter(true, true, original, char, emphasisDelimiters{trace: tracer()})
		d.Length = remaining
		return d
	}
	tests := []struct {
		name   string
		opener *parser.Delimiter
		closer *parser.Delimiter
		want   bool
	}{
		{"pair of doubles", run('*', 2, 2), run('*', 2, 2), true},
		{"even opener refuses single closer", run('*', 2, 2), run('*', 1, 1), false},
		{"odd opener takes single closer", run('*', 3, 3), run('*', 1, 1), true},
		{"opener left with one", run('*', 1, 3), run('*', 1, 1), true},
		{"opener left with two", run('*', 2, 4), run('*', 1, 3), false},
		{"different characters", run('_', 1, 1), run('*', 1, 1), false},
		{"underscore doubles", run('_', 2, 2), run('_', 3, 3), true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := (emphasisDelimiters{trace: tracer()}).CanOpenCloser(tc.opener, tc.closer); got != tc.want {
				t.Fatalf("CanOpenCloser=%v want %v", got, tc.want)
			}
		})
	}
}
