package pipeline

import (
	"time"

	"github.com/qiyanche/book-price-analysis-project/models"
	"github.com/qiyanche/book-price-analysis-project/parser"
)

// Normalizer maps raw heterogeneous items into the flat cleaned schema. It
// is pure: no I/O, no errors, missing fields propagate as empty/nil values.
type Normalizer struct {
	site       string
	currency   string
	transforms []parser.TextTransform
}

// NewNormalizer returns a normalizer with the default free-text transforms:
// markup stripping followed by the language-normalization hook.
func NewNormalizer(site, currency string) *Normalizer {
	return &Normalizer{
		site:       site,
		currency:   currency,
		transforms: []parser.TextTransform{parser.StripTags, parser.Identity},
	}
}

// WithTransforms replaces the free-text transform chain, e.g. to substitute
// a translation backend for the identity hook.
func (n *Normalizer) WithTransforms(transforms ...parser.TextTransform) *Normalizer {
	n.transforms = transforms
	return n
}

// Normalize produces one CleanRecord from a raw item and its snapshot's
// capture time. The capture time is coerced to UTC second precision;
// unparseable values become nil rather than failing.
func (n *Normalizer) Normalize(raw models.RawItem, snapshotTime string) models.CleanRecord {
	site := raw.Site
	if site == "" {
		site = n.site
	}
	currency := raw.Currency
	if currency == "" {
		currency = n.currency
	}

	return models.CleanRecord{
		SnapshotTime: coerceTime(snapshotTime),
		Site:         site,
		ProductID:    parser.ProductID(raw.URL),
		Name:         n.applyTransforms(raw.Name),
		Category:     raw.Category,
		Price:        raw.Price,
		OrigPrice:    raw.OrigPrice,
		Currency:     currency,
		Availability: n.applyTransforms(raw.Availability),
		URL:          raw.URL,
		SourceURL:    raw.SourceURL,
	}
}

func (n *Normalizer) applyTransforms(text string) string {
	for _, transform := range n.transforms {
		text = transform(text)
	}
	return text
}

// coerceTime parses a captured timestamp into UTC second precision, nil when
// the value cannot be parsed.
func coerceTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := parsed.UTC().Truncate(time.Second)
	return &utc
}
