package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// titleSeparator splits the thread title from the board and site names
// in the forum's <title>, e.g. "title - board - site".
const titleSeparator = " - "

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// ParseDocument parses body as HTML. contentType is the response
// Content-Type header; together with <meta charset> it selects the text
// encoding, so Big5 pages are decoded to UTF-8.
func ParseDocument(body []byte, contentType string) (*Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Document{doc: doc}, nil
}

// Title returns the raw text of the first <title> element.
func (d *Document) Title() string {
	return d.doc.Find("title").First().Text()
}

// Links returns every <a href> value in document order, duplicates included.
func (d *Document) Links() []string {
	return d.AttrValues("a", "href")
}

// ImageRefs returns the attr value of every <img> carrying attr, in
// document order. Values are not filtered or resolved.
func (d *Document) ImageRefs(attr string) []string {
	return d.AttrValues("img", attr)
}

// AttrValues returns attr of every element named tag that has it.
func (d *Document) AttrValues(tag, attr string) []string {
	values := make([]string, 0)
	d.doc.Find(tag + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}

// SanitizeTitle turns a page title into a path-safe thread title: the part
// before the first " - ", with '/' and '\' removed and surrounding
// space trimmed.
func SanitizeTitle(raw string) string {
	title, _, _ := strings.Cut(raw, titleSeparator)
	title = strings.ReplaceAll(title, "/", "")
	title = strings.ReplaceAll(title, "\\", "")
	return strings.TrimSpace(title)
}
