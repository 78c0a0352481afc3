package mdsync

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const invalidHastCode = "INVALID_HAST"

//go:embed hast.schema.json
var hastSchemaJSON []byte

var (
	hastSchemaOnce sync.Once
	hastSchema     *jsonschema.Schema
	hastSchemaErr  error
)

type hastRoot struct {
	Type     string    `json:"type"`
	Children []any     `json:"children"`
	Data     *hastData `json:"data,omitempty"`
}

type hastData struct {
	Matter map[string]any `json:"matter,omitempty"`
}

type hastElement struct {
	Type       string         `json:"type"`
	TagName    string         `json:"tagName"`
	Properties hastProperties `json:"properties"`
	Children   []any          `json:"children"`
}

type hastProperties struct {
	ClassName []string `json:"className,omitempty"`
}

type hastText struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// hastNode is the decoding side of every node kind.
type hastNode struct {
	Type       string         `json:"type"`
	TagName    string         `json:"tagName"`
	Properties hastProperties `json:"properties"`
	Children   []hastNode     `json:"children"`
	Value      string         `json:"value"`
	Data       *hastData      `json:"data"`
}

// MarshalJSON encodes the document as a hast root. Front matter, when
// present, is carried in data.matter.
func (d *Document) MarshalJSON() ([]byte, error) {
	root := hastRoot{Type: "root", Children: hastChildren(d.Children)}
	if len(d.Meta) > 0 {
		root.Data = &hastData{Matter: d.Meta}
	}
	return json.Marshal(root)
}

// MarshalJSON encodes the element as a hast element.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(toHast(e))
}

// MarshalJSON encodes the text as a hast text node.
func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(toHast(t))
}

func toHast(n Node) any {
	switch n := n.(type) {
	case *Text:
		return hastText{Type: "text", Value: n.Value}
	case *Element:
		el := hastElement{Type: "element", TagName: string(n.Tag), Children: hastChildren(n.Children)}
		if n.Lang != "" {
			el.Properties.ClassName = []string{"language-" + n.Lang}
		}
		return el
	}
	return nil
}

func hastChildren(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if isNilNode(n) {
			continue
		}
		out = append(out, toHast(n))
	}
	return out
}

// DecodeHast reads a hast JSON tree, as written by Document.MarshalJSON,
// back into a document. The input is checked against the hast schema
// first; elements outside the supported vocabulary are rejected.
func DecodeHast(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, invalidArgument("decode hast", "reader is nil")
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode hast: read: %w", err)
	}
	if err := validateHast(src); err != nil {
		return nil, err
	}
	var root hastNode
	if err := json.Unmarshal(src, &root); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "decode hast").
			WithTextCode(invalidHastCode)
	}
	doc := &Document{Children: fromHastChildren(root.Children)}
	if root.Data != nil && len(root.Data.Matter) > 0 {
		doc.Meta = root.Data.Matter
	}
	return doc, nil
}

func validateHast(src []byte) error {
	hastSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("hast.schema.json", bytes.NewReader(hastSchemaJSON)); err != nil {
			hastSchemaErr = err
			return
		}
		hastSchema, hastSchemaErr = compiler.Compile("hast.schema.json")
	})
	if hastSchemaErr != nil {
		return fmt.Errorf("decode hast: schema: %w", hastSchemaErr)
	}
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "decode hast: malformed json").
			WithTextCode(invalidHastCode)
	}
	if err := hastSchema.Validate(v); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "decode hast: not a supported tree").
			WithTextCode(invalidHastCode)
	}
	return nil
}

func fromHastChildren(nodes []hastNode) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == "text" {
			out = append(out, &Text{Value: n.Value})
			continue
		}
		el := &Element{Tag: Tag(n.TagName), Children: fromHastChildren(n.Children)}
		if el.Tag == TagCode {
			for _, class := range n.Properties.ClassName {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					el.Lang = lang
					break
				}
			}
		}
		out = append(out, el)
	}
	return mergeText(out)
}
