// Package parser holds the text-level helpers shared by the scrape and clean
// stages: price extraction, product id derivation, and the free-text
// transforms applied during normalization.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	priceRe     = regexp.MustCompile(`(\d+[.,]?\d*)`)
	productIDRe = regexp.MustCompile(`/catalogue/([^/]+)/index\.html`)
)

// TextTransform rewrites one free-text field value. Normalization applies a
// chain of these, so a translation backend can be slotted in without touching
// the normalizer's control flow.
type TextTransform func(string) string

// ExtractPrice pulls the leading numeric substring out of a currency-prefixed
// price text ("£51.77" -> 51.77). Returns nil when no number is present.
func ExtractPrice(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// ProductID derives the stable product slug from a catalog URL: the path
// segment immediately preceding "/index.html". Returns the empty string for
// URLs that do not match the catalog shape.
func ProductID(rawURL string) string {
	m := productIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// StripTags removes any markup from a free-text field, leaving the
// concatenated text content. Plain text passes through unchanged apart from
// surrounding whitespace.
func StripTags(text string) string {
	if !strings.Contains(text, "<") {
		return strings.TrimSpace(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(doc.Text())
}

// Identity is the language-normalization placeholder. The catalog is already
// in the target language; a deployment against another source substitutes a
// translation-backed TextTransform here.
func Identity(text string) string {
	return text
}
