package htmlutil

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits HTML input to 10MB
const MaxHTMLSize = 10 * 1024 * 1024

var strict = bluemonday.StrictPolicy()

// DetectCharset guesses the encoding of raw page bytes
func DetectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// utf8Reader converts data to UTF-8, trusting a declared content type over
// detection when one is given.
func utf8Reader(data []byte, contentType string) (io.Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("html content required")
	}
	if len(data) > MaxHTMLSize {
		return nil, fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	}

	if contentType != "" {
		if r, err := charset.NewReader(bytes.NewReader(data), contentType); err == nil {
			return r, nil
		}
	}
	enc, _ := charset.Lookup(DetectCharset(data))
	if enc == nil {
		return bytes.NewReader(data), nil
	}
	return enc.NewDecoder().Reader(bytes.NewReader(data)), nil
}

// LoadDocument parses page bytes into a goquery document
func LoadDocument(data []byte, contentType string) (*goquery.Document, error) {
	r, err := utf8Reader(data, contentType)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(r)
}

// LoadNode parses page bytes into an XPath-queryable node
func LoadNode(data []byte, contentType string) (*xhtml.Node, error) {
	r, err := utf8Reader(data, contentType)
	if err != nil {
		return nil, err
	}
	return htmlquery.Parse(r)
}

// StripTags removes all markup and decodes entities, e.g. the <strong>
// highlights search APIs put in snippets.
func StripTags(s string) string {
	return NormalizeWhitespace(html.UnescapeString(strict.Sanitize(s)))
}

// NormalizeWhitespace collapses runs of whitespace into one space
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
