package pipeline

import (
	"math"

	"freightdesk/internal/domain"
)

// Merge reduces candidates to exactly one field per canonical key. The
// highest confidence wins; ties go to the higher-ranked source, then the
// lexically smaller strategy name, then the smaller value text. Keys nothing
// produced get a default null with confidence 0. Candidates for unknown keys
// and null values are ignored. Merge is deterministic and idempotent.
func Merge(candidates []domain.ExtractionField) map[domain.FieldKey]domain.ExtractionField {
	specs := domain.FieldSpecs()
	out := make(map[domain.FieldKey]domain.ExtractionField, len(specs))
	for _, s := range specs {
		out[s.Key] = domain.ExtractionField{
			Key:    s.Key,
			Value:  domain.NullValue(),
			Source: domain.SourceDefault,
		}
	}

	for _, c := range candidates {
		cur, known := out[c.Key]
		if !known || c.Value.IsNull() {
			continue
		}
		c.Confidence = clamp(c.Confidence)
		if cur.Value.IsNull() || beats(c, cur) {
			out[c.Key] = c
		}
	}
	return out
}

// beats reports whether a wins over b.
func beats(a, b domain.ExtractionField) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if ra, rb := a.Source.Rank(), b.Source.Rank(); ra != rb {
		return ra > rb
	}
	if a.Strategy != b.Strategy {
		return a.Strategy < b.Strategy
	}
	return a.Value.Text() < b.Value.Text()
}

// Confidence is the weighted mean confidence of the required fields. Missing
// required fields count as 0; optional fields are ignored.
func Confidence(fields map[domain.FieldKey]domain.ExtractionField) float64 {
	var sum, weight float64
	for _, s := range domain.FieldSpecs() {
		if !s.Required {
			continue
		}
		w := s.Weight
		if w <= 0 {
			w = 1
		}
		weight += w
		if f, ok := fields[s.Key]; ok && !f.Value.IsNull() {
			sum += w * f.Confidence
		}
	}
	if weight == 0 {
		return 0
	}
	return math.Round(sum/weight*10000) / 10000
}

// Status grades a merged field set. allFailed is true when every selected
// strategy errored.
func Status(fields map[domain.FieldKey]domain.ExtractionField, threshold float64, allFailed bool) domain.ExtractionStatus {
	if allFailed {
		return domain.ExtractionStatusFailed
	}
	populated, confident, required := 0, 0, 0
	for _, s := range domain.FieldSpecs() {
		if !s.Required {
			continue
		}
		required++
		f, ok := fields[s.Key]
		if !ok || f.Value.IsNull() {
			continue
		}
		populated++
		if f.Confidence >= threshold {
			confident++
		}
	}
	switch {
	case populated == 0:
		return domain.ExtractionStatusFailed
	case confident == required:
		return domain.ExtractionStatusSuccess
	default:
		return domain.ExtractionStatusPartial
	}
}

func clamp(f float64) float64 {
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
