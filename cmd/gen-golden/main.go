// Command gen-golden regenerates the HTML and sync-back goldens under
// testdata from each markdown source.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pkt.systems/mdsync"
)

func main() {
	root := "testdata"
	var paths []string
	widthsByBase := map[string][]int{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".sync.md") {
			if base, width, ok := parseGoldenWidth(path); ok {
				widthsByBase[base] = append(widthsByBase[base], width)
			}
			return nil
		}
		if strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		fatalf("walk %s: %v", root, err)
	}
	if len(paths) == 0 {
		fatalf("no markdown files found under %s", root)
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		base := strings.TrimSuffix(path, ".md")
		html := mdsync.MarkdownToHTML(string(src))
		writeGolden(base+".html", html)

		md, err := mdsync.SyncBack(html)
		if err != nil {
			fatalf("sync back %s: %v", path, err)
		}
		writeGolden(base+".sync.md", md+"\n")

		for _, width := range widthsByBase[base] {
			md, err := mdsync.SyncBack(html, mdsync.WithWrap(width))
			if err != nil {
				fatalf("sync back %s width %d: %v", path, width, err)
			}
			writeGolden(fmt.Sprintf("%s.w%d.sync.md", base, width), md+"\n")
		}
	}
}

func writeGolden(path string, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fatalf("write %s: %v", path, err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", path)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// parseGoldenWidth splits "dir/name.wN.sync.md" into "dir/name" and N.
func parseGoldenWidth(goldenPath string) (string, int, bool) {
	name := strings.TrimSuffix(goldenPath, ".sync.md")
	idx := strings.LastIndex(name, ".w")
	if idx == -1 {
		return "", 0, false
	}
	width, err := strconv.Atoi(name[idx+2:])
	if err != nil || width <= 0 {
		return "", 0, false
	}
	return name[:idx], width, true
}
