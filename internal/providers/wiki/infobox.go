package wiki

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/huggypanda/backend/internal/shared/htmlutil"
	"golang.org/x/net/html"
)

// MaxInfoboxField drops rows whose key or value is longer than this
const MaxInfoboxField = 45

const maxSeeAlso = 8

var (
	bracketRefs   = regexp.MustCompile(`\[.*?\]`)
	braceRefs     = regexp.MustCompile(`\{.*?\}`)
	openParen     = regexp.MustCompile(`(\S)\(`)
	closeParen    = regexp.MustCompile(`\)(\S)`)
	skippedLabels = []string{"Dependencies", "Subsidaries", "Subsidiaries", "Subordinated", "Latitude", "Longitude"}
)

// Infobox extracts label/value rows from the first infobox table
func Infobox(doc *goquery.Document) map[string]string {
	table := doc.Find("table.infobox").First()
	if table.Length() == 0 {
		return nil
	}

	out := make(map[string]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.ChildrenFiltered("th").First()
		td := row.ChildrenFiltered("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		td.Find("br").ReplaceWithHtml(" ")
		td.Find(`style, sup.reference, [style*="display:none"]`).Remove()

		key, value, ok := cleanRow(cellText(th), cellText(td))
		if ok {
			out[key] = value
		}
	})

	if len(out) == 0 {
		return nil
	}
	return out
}

// cleanRow applies the infobox filters; ok is false for dropped rows
func cleanRow(key, value string) (string, string, bool) {
	if key == "" || value == "" {
		return "", "", false
	}
	for _, label := range skippedLabels {
		if strings.Contains(key, label) {
			return "", "", false
		}
	}
	if strings.Contains(key, "Coordinates") {
		return "Coordinates", Coordinates(value), true
	}
	if len(key) > MaxInfoboxField || len(value) > MaxInfoboxField || key == value {
		return "", "", false
	}

	switch {
	case strings.Contains(key, "Capital and largest city"):
		key = "Capital and largest city"
	case strings.Contains(key, "Assembly members"):
		key = "Assembly members"
	}
	key = strings.ReplaceAll(key, "•", "")
	key = braceRefs.ReplaceAllString(bracketRefs.ReplaceAllString(key, ""), "")
	key = htmlutil.NormalizeWhitespace(key)
	if key == "" {
		return "", "", false
	}

	value = strings.NewReplacer("•", "", "\u00a0", " ", "′", "").Replace(value)
	value = braceRefs.ReplaceAllString(bracketRefs.ReplaceAllString(value, " "), " ")
	value = openParen.ReplaceAllString(value, "$1 (")
	value = closeParen.ReplaceAllString(value, ") $1")
	value = htmlutil.NormalizeWhitespace(value)
	if value == "" {
		return "", "", false
	}
	return key, value, true
}

// Coordinates reduces an infobox coordinate cell to its last (decimal)
// form, signing southern and western components.
func Coordinates(raw string) string {
	parts := strings.Split(raw, "/")
	last := parts[len(parts)-1]

	var b strings.Builder
	for _, r := range last {
		switch {
		case r == '.' || r == ' ' || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == 'N' || r == 'S' || r == 'E' || r == 'W':
			b.WriteString("°")
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	for i, f := range fields {
		if strings.ContainsAny(f, "SW") {
			fields[i] = "-" + f
		}
	}
	return strings.Join(fields, " ")
}

// SeeAlso returns link titles from the "See also" section
func SeeAlso(doc *html.Node) []string {
	queries := []string{
		`//div[contains(@class,"mw-heading")][h2[@id="See_also"]]/following-sibling::*[self::ul or self::div][1]//li/a[1]`,
		`//h2[@id="See_also" or span[@id="See_also"]]/following-sibling::*[self::ul or self::div][1]//li/a[1]`,
	}

	for _, q := range queries {
		nodes, err := htmlquery.QueryAll(doc, q)
		if err != nil || len(nodes) == 0 {
			continue
		}

		var out []string
		for _, n := range nodes {
			title := htmlquery.SelectAttr(n, "title")
			if title == "" {
				title = htmlquery.InnerText(n)
			}
			title = htmlutil.NormalizeWhitespace(title)
			if title != "" {
				out = append(out, title)
			}
			if len(out) == maxSeeAlso {
				break
			}
		}
		return out
	}
	return nil
}

// cellText joins text nodes with spaces so adjacent inline elements do not
// run together.
func cellText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, cellText(c))
	})
	return htmlutil.NormalizeWhitespace(strings.Join(parts, " "))
}
