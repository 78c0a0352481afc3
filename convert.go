package mdsync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format names a representation Convert reads or writes.
type Format int

const (
	// FormatMarkdown is CommonMark-style markdown text.
	FormatMarkdown Format = iota
	// FormatHTML is an HTML fragment.
	FormatHTML
	// FormatHast is a hast JSON tree.
	FormatHast
)

// String returns the short name used on the command line.
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	case FormatHast:
		return "hast"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat maps a command line name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "hast", "json":
		return FormatHast, nil
	}
	return 0, invalidArgument("format", fmt.Sprintf("unknown format %q", name))
}

// ConvertRequest configures Convert.
type ConvertRequest struct {
	Reader io.Reader
	Writer io.Writer
	From   Format
	To     Format
	// Selector, when set on HTML input, picks the element whose inner HTML
	// is converted instead of the whole input.
	Selector string
	Options  []Option
}

// Convert reads one representation from req.Reader and writes another to
// req.Writer. Text input is validated before conversion.
func Convert(req ConvertRequest) error {
	if req.Reader == nil {
		return invalidArgument("convert", "reader is nil")
	}
	if req.Writer == nil {
		return invalidArgument("convert", "writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("convert: read: %w", err)
	}
	if err := ValidateInput(src); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	doc, err := decode(src, req)
	if err != nil {
		return err
	}
	return encode(req.Writer, doc, req)
}

func decode(src []byte, req ConvertRequest) (*Document, error) {
	switch req.From {
	case FormatMarkdown:
		return Parse(string(src), req.Options...), nil
	case FormatHTML:
		r := io.Reader(bytes.NewReader(src))
		if req.Selector != "" {
			inner, err := SelectEditable(r, req.Selector)
			if err != nil {
				return nil, err
			}
			r = strings.NewReader(inner)
		}
		return FromHTML(r)
	case FormatHast:
		return DecodeHast(bytes.NewReader(src))
	}
	return nil, invalidArgument("convert", "unknown input format "+req.From.String())
}

func encode(w io.Writer, doc *Document, req ConvertRequest) error {
	var out string
	switch req.To {
	case FormatMarkdown:
		md, err := SerializeDocument(doc, req.Options...)
		if err != nil {
			return err
		}
		if md != "" {
			md += "\n"
		}
		out = md
	case FormatHTML:
		html, err := Render(doc)
		if err != nil {
			return err
		}
		out = html
	case FormatHast:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("convert: encode hast: %w", err)
		}
		return nil
	default:
		return invalidArgument("convert", "unknown output format "+req.To.String())
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("convert: write: %w", err)
	}
	return nil
}
