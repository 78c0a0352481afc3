package mdsync

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestSampleGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	var sources []string
	for _, path := range paths {
		if !strings.HasSuffix(path, ".sync.md") {
			sources = append(sources, path)
		}
	}
	if len(sources) == 0 {
		t.Fatalf("no markdown files found under testdata")
	}
	for _, path := range sources {
		path := path
		t.Run(path, func(t *testing.T) {
			src := mustReadFile(t, path)
			base := strings.TrimSuffix(path, ".md")
			wantHTML := mustReadFile(t, base+".html")
			wantMD := strings.TrimSuffix(mustReadFile(t, base+".sync.md"), "\n")

			got := MarkdownToHTML(src)
			if got != wantHTML {
				t.Fatalf("html mismatch for %s\n%s", path, firstDiffContext(wantHTML, got, 3))
			}
			md, err := SyncBack(got)
			if err != nil {
				t.Fatalf("sync back %s: %v", path, err)
			}
			if md != wantMD {
				t.Fatalf("sync back mismatch for %s\n%s", path, firstDiffContext(wantMD, md, 3))
			}
			if again := MarkdownToHTML(md); again != wantHTML {
				t.Fatalf("synced markdown renders differently for %s\n%s", path, firstDiffContext(wantHTML, again, 3))
			}
			wrapped, err := filepath.Glob(base + ".w*.sync.md")
			if err != nil {
				t.Fatalf("glob wrapped goldens: %v", err)
			}
			for _, golden := range wrapped {
				width, ok := goldenWidth(golden)
				if !ok {
					t.Fatalf("cannot parse width from %s", golden)
				}
				want := strings.TrimSuffix(mustReadFile(t, golden), "\n")
				got, err := SyncBack(wantHTML, WithWrap(width))
				if err != nil {
					t.Fatalf("sync back %s width %d: %v", path, width, err)
				}
				if got != want {
					t.Fatalf("wrapped sync back mismatch %s width %d\n%s", path, width, firstDiffContext(want, got, 3))
				}
			}
		})
	}
}

func TestSampleFrontMatter(t *testing.T) {
	doc := Parse(mustReadFile(t, filepath.Join("testdata", "sample.md")))
	if doc.Meta["title"] != "Sample" {
		t.Fatalf("unexpected title: %#v", doc.Meta["title"])
	}
	tags, ok := doc.Meta["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("unexpected tags: %#v", doc.Meta["tags"])
	}
}

// goldenWidth extracts N from a "name.wN.sync.md" golden path.
func goldenWidth(path string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".sync.md")
	idx := strings.LastIndex(name, ".w")
	if idx == -1 {
		return 0, false
	}
	width, err := strconv.Atoi(name[idx+2:])
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

func mustReadFile(tb testing.TB, path string) string {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func firstDiffContext(want string, got string, ctx int) string {
	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	max := len(wantLines)
	if len(gotLines) > max {
		max = len(gotLines)
	}
	diffAt := -1
	for i := 0; i < max; i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			diffAt = i
			break
		}
	}
	if diffAt == -1 {
		return "---want---\n" + want + "\n---got---\n" + got
	}
	start := diffAt - ctx
	if start < 0 {
		start = 0
	}
	end := diffAt + ctx
	if end >= max {
		end = max - 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "first difference at line %d\n", diffAt+1)
	b.WriteString("---want---\n")
	for i := start; i <= end; i++ {
		line := ""
		if i < len(wantLines) {
			line = wantLines[i]
		}
		fmt.Fprintf(&b, "%5d | %q\n", i+1, line)
	}
	b.WriteString("---got---\n")
	for i := start; i <= end; i++ {
		line := ""
		if i < len(gotLines) {
			line = gotLines[i]
		}
		fmt.Fprintf(&b, "%5d | %q\n", i+1, line)
	}
	return b.String()
}
