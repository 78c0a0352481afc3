package mdsync

import (
	"os"
	"testing"
)

func TestMarkdownToHTMLAllocations(t *testing.T) {
	src, err := os.ReadFile("testdata/sample.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(src)
	allocs := testing.AllocsPerRun(100, func() {
		_ = MarkdownToHTML(text)
	})
	if allocs > 6000 {
		t.Fatalf("too many allocations per MarkdownToHTML: got %.2f", allocs)
	}
}
