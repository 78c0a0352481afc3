package mdsync

import (
	"math/rand/v2"
	"strings"
	"testing"
)

var markdownTokens = []string{"*", "**", "***", "_", "__", "a", "b", "foo", " "}

// markdownFromBytes maps each byte to one token, so every input is a
// paragraph built only from emphasis markers, words and spaces.
func markdownFromBytes(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		b.WriteString(markdownTokens[int(c)%len(markdownTokens)])
	}
	return strings.TrimLeft(b.String(), " ")
}

func checkStylesSurvive(t *testing.T, src string) {
	t.Helper()
	doc := Parse(src)
	md, err := SerializeDocument(doc)
	if err != nil {
		t.Fatalf("serialize %q: %v", src, err)
	}
	want := appendStyled(nil, doc.Children, 0)
	got := appendStyled(nil, Parse(md).Children, 0)
	if at := firstStyleMismatch(want, got); at >= 0 {
		t.Fatalf("styles differ at rune %d\n  src: %q\n   md: %q\nwant: %s\n got: %s",
			at, src, md, MarkdownToHTML(src), MarkdownToHTML(md))
	}
}

func FuzzRoundTrip(f *testing.F) {
	for _, seed := range []string{
		"\x01\x05\x00\x06\x02\x03\x05\x03",
		"\x00\x05\x00\x04\x00\x06\x00\x05\x04",
		"\x03\x05\x08\x01\x06\x01\x03\x01\x07\x01",
		"\x01\x06\x00\x07\x02",
		"\x02\x05\x00\x06\x01\x01\x07",
	} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 24 {
			data = data[:24]
		}
		checkStylesSurvive(t, markdownFromBytes(data))
	})
}

func TestRoundTripGeneratedMarkdown(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		data := make([]byte, 1+r.IntN(12))
		for j := range data {
			data[j] = byte(r.IntN(len(markdownTokens)))
		}
		checkStylesSurvive(t, markdownFromBytes(data))
	}
}

var treeWords = []string{"a", "b", "foo", "x1"}

// randomInline builds strong, em and text children. A text leaf next to an
// element gets a space on that side, so marker runs only touch words from
// the inside.
func randomInline(r *rand.Rand, depth int) []Node {
	n := 1 + r.IntN(4)
	out := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		switch k := r.IntN(3); {
		case k == 0 || depth == 0:
			out = append(out, &Text{Value: treeWords[r.IntN(len(treeWords))]})
		case k == 1:
			out = append(out, &Element{Tag: TagStrong, Children: randomInline(r, depth-1)})
		default:
			out = append(out, &Element{Tag: TagEm, Children: randomInline(r, depth-1)})
		}
	}
	for i, c := range out {
		t, ok := c.(*Text)
		if !ok {
			continue
		}
		if i > 0 {
			if _, ok := out[i-1].(*Element); ok {
				t.Value = " " + t.Value
			}
		}
		if i+1 < len(out) {
			if _, ok := out[i+1].(*Element); ok {
				t.Value += " "
			}
		}
	}
	return out
}

func TestSyncBackGeneratedTrees(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 1000; i++ {
		p := &Element{Tag: TagP, Children: randomInline(r, 3)}
		html, err := RenderNode(p)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		md, err := SyncBack(html)
		if err != nil {
			t.Fatalf("sync back %q: %v", html, err)
		}
		want := appendStyled(nil, []Node{p}, 0)
		got := appendStyled(nil, Parse(md).Children, 0)
		if at := firstStyleMismatch(want, got); at >= 0 {
			t.Fatalf("styles differ at rune %d\nhtml: %q\n  md: %q\n got: %q", at, html, md, MarkdownToHTML(md))
		}
	}
}
