package mdsync

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

const maxFrontMatterProbeBytes = 64 * 1024

// splitFrontMatter removes a leading front matter block from src and returns
// its decoded metadata. Sources that only look like front matter (a thematic
// break followed by prose, an unclosed block) are returned unchanged.
func splitFrontMatter(src string, cfg *config) (map[string]any, string) {
	probe := src
	if len(probe) > maxFrontMatterProbeBytes {
		probe = probe[:maxFrontMatterProbeBytes]
	}
	openLine, openNext, ok := nextLine(probe, 0)
	if !ok {
		return nil, src
	}
	delim, ok := parseOpeningFrontMatterDelimiter(openLine)
	if !ok {
		return nil, src
	}
	secondLine, secondNext, ok := nextLine(probe, openNext)
	if !ok || !frontMatterMetadataLikely(secondLine) {
		return nil, src
	}
	if !hasClosingFrontMatterDelimiter(probe, secondNext, delim) {
		return nil, src
	}
	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(src), &meta)
	if err != nil {
		cfg.tracer.Infof("front matter ignored: %v", err)
		return nil, src
	}
	return normalizeMeta(meta), string(rest)
}

func nextLine(src string, start int) (string, int, bool) {
	if start >= len(src) {
		return "", 0, false
	}
	i := strings.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src), true
	}
	lineEnd := start + i
	return trimCR(src[start:lineEnd]), lineEnd + 1, true
}

func parseOpeningFrontMatterDelimiter(line string) (string, bool) {
	switch strings.TrimSpace(trimBOM(line)) {
	case "---":
		return "---", true
	case "+++":
		return "+++", true
	case ";;;":
		return ";;;", true
	}
	return "", false
}

func frontMatterMetadataLikely(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	return strings.Contains(trimmed, ":") || strings.Contains(trimmed, "=")
}

func hasClosingFrontMatterDelimiter(src string, start int, delim string) bool {
	for idx := start; idx < len(src); {
		line, next, ok := nextLine(src, idx)
		if !ok {
			return false
		}
		if strings.TrimSpace(line) == delim {
			return true
		}
		idx = next
	}
	return false
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

// normalizeMeta converts the map[interface{}]interface{} values produced by
// the YAML decoder into map[string]any so metadata can be JSON encoded.
func normalizeMeta(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = normalizeMetaValue(v)
	}
	return out
}

func normalizeMetaValue(v any) any {
	switch v := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalizeMetaValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeMetaValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeMetaValue(val)
		}
		return out
	}
	return v
}
