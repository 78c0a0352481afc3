package mdsync

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func convertString(t *testing.T, src string, req ConvertRequest) string {
	t.Helper()
	var out bytes.Buffer
	req.Reader = strings.NewReader(src)
	req.Writer = &out
	if err := Convert(req); err != nil {
		t.Fatalf("convert %s->%s: %v", req.From, req.To, err)
	}
	return out.String()
}

func TestConvert(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		req  ConvertRequest
		want string
	}{
		{
			name: "markdown to html",
			src:  "# T\n\n**b*i***\n",
			req:  ConvertRequest{From: FormatMarkdown, To: FormatHTML},
			want: "<h1>T</h1>\n<p><strong>b<em>i</em></strong></p>\n",
		},
		{
			name: "html to markdown",
			src:  "<h1>T</h1><p><b>b<i>i</i></b></p>",
			req:  ConvertRequest{From: FormatHTML, To: FormatMarkdown},
			want: "# T\n\n**b*i***\n",
		},
		{
			name: "html selection to markdown",
			src:  editorPage,
			req:  ConvertRequest{From: FormatHTML, To: FormatMarkdown, Selector: "#editor"},
			want: "Hello **you**\n",
		},
		{
			name: "markdown to markdown wraps",
			src:  "aaa bbb ccc ddd\n",
			req:  ConvertRequest{From: FormatMarkdown, To: FormatMarkdown, Options: []Option{WithWrap(7)}},
			want: "aaa bbb\nccc ddd\n",
		},
		{
			name: "hast to markdown",
			src:  `{"type":"root","children":[{"type":"element","tagName":"p","children":[{"type":"element","tagName":"em","children":[{"type":"text","value":"x"}]}]}]}`,
			req:  ConvertRequest{From: FormatHast, To: FormatMarkdown},
			want: "*x*\n",
		},
		{
			name: "empty markdown",
			src:  "",
			req:  ConvertRequest{From: FormatHTML, To: FormatMarkdown},
			want: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := convertString(t, tc.src, tc.req); got != tc.want {
				t.Fatalf("unexpected output\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestConvertMarkdownToHast(t *testing.T) {
	t.Parallel()
	out := convertString(t, "*x*", ConvertRequest{From: FormatMarkdown, To: FormatHast})
	var root struct {
		Type     string `json:"type"`
		Children []struct {
			TagName string `json:"tagName"`
		} `json:"children"`
	}
	if err := json.Unmarshal([]byte(out), &root); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if root.Type != "root" || len(root.Children) != 1 || root.Children[0].TagName != "p" {
		t.Fatalf("unexpected hast: %s", out)
	}
	back, err := DecodeHast(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode converted hast: %v", err)
	}
	if html, _ := Render(back); html != "<p><em>x</em></p>\n" {
		t.Fatalf("unexpected html from hast: %q", html)
	}
}

func TestConvertRequestValidation(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := Convert(ConvertRequest{Writer: &out})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for nil reader, got %v", err)
	}
	err = Convert(ConvertRequest{Reader: strings.NewReader("x")})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for nil writer, got %v", err)
	}
	err = Convert(ConvertRequest{Reader: strings.NewReader("x"), Writer: &out, To: Format(9)})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for unknown format, got %v", err)
	}
	err = Convert(ConvertRequest{Reader: strings.NewReader("<p>x</p>"), Writer: &out, From: FormatHTML, To: FormatMarkdown, Selector: "#none"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for unmatched selector, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	cases := map[string]Format{
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"html":     FormatHTML,
		"htm":      FormatHTML,
		"hast":     FormatHast,
		"json":     FormatHast,
	}
	for name, want := range cases {
		got, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q)=%s want %s", name, got, want)
		}
		if again, _ := ParseFormat(got.String()); again != got {
			t.Fatalf("String() of %s does not parse back", got)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
