package pattern

import (
	"regexp"
	"strings"

	"freightdesk/internal/domain"
)

const (
	weightBase       = 0.85
	weightLabelBonus = 0.05
	poundKg          = 0.45359237
)

var weightLabels = []string{"gross weight", "weight", "gewicht", "poids", "gross", "gw"}

var weightRe = regexp.MustCompile(`(?i)(?:(` + strings.Join(weightLabels, "|") + `)\s*[:=]?\s*)?` +
	`(\d{1,3}(?:[.,]\d{3})+|\d+(?:[.,]\d+)?)\s*(kgs|kg|kilos?|tonnes?|tons?|t|lbs|lb)\b`)

// extractWeight returns the first labeled weight, or the first weight at all.
func extractWeight(text string) []domain.ExtractionField {
	matches := weightRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]
	for _, m := range matches {
		if m[1] != "" {
			best = m
			break
		}
	}

	kg, ok := weightToKg(best[2], strings.ToLower(best[3]))
	if !ok || kg <= 0 {
		return nil
	}
	conf := weightBase
	if best[1] != "" {
		conf += weightLabelBonus
	}
	return []domain.ExtractionField{
		field(domain.FieldWeightKg, domain.NumberValue(round(kg, 3)), capConfidence(conf), domain.SourcePattern),
	}
}

func weightToKg(raw, unit string) (float64, bool) {
	switch {
	case strings.HasPrefix(unit, "t"):
		v, ok := parseDecimal(raw)
		return v * 1000, ok
	case strings.HasPrefix(unit, "lb"):
		v, ok := parseGrouped(raw)
		return v * poundKg, ok
	default:
		return parseGrouped(raw)
	}
}
