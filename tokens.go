package mdsync

// Tag names an element in the fixed vocabulary of the tree.
type Tag string

const (
	// TagP is a paragraph.
	TagP Tag = "p"
	// TagH1 through TagH6 are headings.
	TagH1 Tag = "h1"
	TagH2 Tag = "h2"
	TagH3 Tag = "h3"
	TagH4 Tag = "h4"
	TagH5 Tag = "h5"
	TagH6 Tag = "h6"
	// TagBlockquote is a block quote container.
	TagBlockquote Tag = "blockquote"
	// TagPre wraps a code block; its only child is a TagCode element.
	TagPre Tag = "pre"
	// TagHr is a thematic break.
	TagHr Tag = "hr"
	// TagStrong is strong emphasis (bold).
	TagStrong Tag = "strong"
	// TagEm is emphasis (italic).
	TagEm Tag = "em"
	// TagCode is a code span, or the body of a code block inside TagPre.
	TagCode Tag = "code"
	// TagBr is a hard line break.
	TagBr Tag = "br"
)

var headingTags = [...]Tag{"", TagH1, TagH2, TagH3, TagH4, TagH5, TagH6}

// HeadingTag returns the heading tag for level 1-6.
func HeadingTag(level int) (Tag, bool) {
	if level < 1 || level > 6 {
		return "", false
	}
	return headingTags[level], true
}

// HeadingLevel returns the level of a heading tag, or 0.
func (t Tag) HeadingLevel() int {
	for level := 1; level <= 6; level++ {
		if headingTags[level] == t {
			return level
		}
	}
	return 0
}

// IsBlock reports whether t is a block-level tag.
func (t Tag) IsBlock() bool {
	switch t {
	case TagP, TagBlockquote, TagPre, TagHr:
		return true
	}
	return t.HeadingLevel() > 0
}

// IsVoid reports whether t never has children.
func (t Tag) IsVoid() bool {
	return t == TagHr || t == TagBr
}

// marker returns the markdown delimiter for an emphasis tag.
func (t Tag) marker() string {
	switch t {
	case TagStrong:
		return "**"
	case TagEm:
		return "*"
	}
	return ""
}
