// Package mirror keeps the markdown source of an editable surface in step
// with the HTML the user edits.
//
// A Field holds the markdown text that feeds the surface. The surface is
// rendered from it with HTML. When the user leaves the surface, Blur converts
// the edited HTML back to markdown and stores it, notifying the change
// callback when the text actually changed.
package mirror

import (
	"context"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"pkt.systems/mdsync"
)

// Field is a plain-text mirror of an editable surface. It is safe for
// concurrent use.
type Field struct {
	mu       sync.Mutex
	text     string
	onChange func(string)
	opts     []mdsync.Option
	trace    tracing.Trace
}

// NewField returns a field holding markdown. onChange may be nil. opts are
// passed to the serializer on every Blur.
func NewField(markdown string, onChange func(string), opts ...mdsync.Option) *Field {
	return &Field{
		text:     markdown,
		onChange: onChange,
		opts:     opts,
		trace:    tracing.Select("mdsync.mirror"),
	}
}

// Text returns the current markdown.
func (f *Field) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// SetText replaces the markdown without notifying the change callback.
func (f *Field) SetText(markdown string) {
	f.mu.Lock()
	f.text = markdown
	f.mu.Unlock()
}

// HTML renders the current markdown for display on the surface.
func (f *Field) HTML() string {
	return mdsync.MarkdownToHTML(f.Text())
}

// Blur syncs the surface's inner HTML back into the field. It reports
// whether the stored markdown changed. A cancelled context leaves the
// field untouched.
func (f *Field) Blur(ctx context.Context, innerHTML string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, mdsync.ContextError(err)
	}
	md, err := mdsync.SyncBack(innerHTML, f.opts...)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, mdsync.ContextError(err)
	}

	f.mu.Lock()
	changed := md != f.text
	if changed {
		f.text = md
	}
	onChange := f.onChange
	f.mu.Unlock()

	if !changed {
		f.trace.Debugf("blur: unchanged (%d bytes)", len(md))
		return false, nil
	}
	f.trace.Debugf("blur: %d lines synced", strings.Count(md, "\n")+1)
	if onChange != nil {
		onChange(md)
	}
	return true, nil
}
