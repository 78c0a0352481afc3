// Package mdsync converts markdown to HTML and back.
//
// The forward path parses markdown into a small tree (a Document of Element
// and Text nodes, shaped like hast) and renders it as HTML. The backward
// path, sync-back, reads the HTML of an edited surface, such as the
// innerHTML of a contenteditable element, and serializes it as markdown.
//
// Core properties:
//   - Emphasis is resolved greedily: when both runs can give two
//     delimiters, strong wins, so "**b*i***" is strong(b, em(i))
//   - Parsing never fails; unmatched delimiters stay literal text
//   - Rendered HTML escapes only & < > " and never uses numeric references
//   - Serialized markdown re-parses to the tree it came from
//
// Example:
//
//	html := mdsync.MarkdownToHTML("Some **b*i***.\n")
//	// <p>Some <strong>b<em>i</em></strong>.</p>
//
//	md, err := mdsync.SyncBack(html, mdsync.WithWrap(80))
//	if err != nil {
//		log.Fatal(err)
//	}
//	// Some **b*i***.
//
// Convert handles readers and writers and moves between markdown, HTML and
// hast JSON in any direction. The mirror subpackage keeps a markdown field
// in step with an editable surface.
package mdsync
