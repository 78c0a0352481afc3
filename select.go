package mdsync

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// SelectEditable returns the inner HTML of the first element in page that
// matches selector, such as the contenteditable surface of a saved page.
func SelectEditable(page io.Reader, selector string) (string, error) {
	if page == nil {
		return "", invalidArgument("select", "reader is nil")
	}
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return "", invalidSelector(err)
	}
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", fmt.Errorf("select: parse page: %w", err)
	}
	match := doc.FindMatcher(matcher).First()
	if match.Length() == 0 {
		return "", noMatch(selector)
	}
	inner, err := match.Html()
	if err != nil {
		return "", fmt.Errorf("select: %w", err)
	}
	return inner, nil
}
