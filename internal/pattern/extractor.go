// Package pattern extracts structured tokens from free text with regular
// expressions and the in-memory reference lookup. It never performs I/O.
package pattern

import (
	"regexp"

	"golang.org/x/text/unicode/norm"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

// StrategyName tags fields produced by the extractor.
const StrategyName = "pattern"

// Extractor is a pure function of its input text. It is safe for concurrent
// use as long as the Lookup is.
type Extractor struct {
	lookup *reference.Lookup
	routes []*regexp.Regexp
}

// NewExtractor creates an Extractor. lookup may be nil, in which case vehicle
// and port resolution is skipped.
func NewExtractor(lookup *reference.Lookup) *Extractor {
	return &Extractor{lookup: lookup, routes: compilePhrases(DefaultRoutePhrases())}
}

// WithRoutePhrases replaces the route phrase table.
func (e *Extractor) WithRoutePhrases(phrases []RoutePhrase) *Extractor {
	return &Extractor{lookup: e.lookup, routes: compilePhrases(phrases)}
}

// Extract returns every field it can find in text.
func (e *Extractor) Extract(text string) []domain.ExtractionField {
	text = norm.NFC.String(text)
	if text == "" {
		return nil
	}

	var out []domain.ExtractionField
	out = append(out, extractDimensions(text)...)
	out = append(out, extractWeight(text)...)
	out = append(out, e.extractVehicle(maskQuantities(text))...)
	out = append(out, e.extractRoute(text)...)
	out = append(out, extractContact(text)...)
	return out
}

func field(key domain.FieldKey, v domain.FieldValue, conf float64, src domain.Source) domain.ExtractionField {
	return domain.ExtractionField{
		Key:        key,
		Value:      v,
		Confidence: round(conf, 4),
		Source:     src,
		Strategy:   StrategyName,
	}
}
