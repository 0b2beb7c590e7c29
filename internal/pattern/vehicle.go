package pattern

import (
	"regexp"
	"strings"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

const (
	vehicleConfidence  = 0.85
	freeTextConfidence = 0.35
)

// modelTokenRe matches model-like tokens such as "TFG435s" or "CAT-320".
var modelTokenRe = regexp.MustCompile(`\b([A-Z][A-Za-z]{1,5}-?\d{2,5}[A-Za-z]{0,3})\b`)

// notModelSuffixes rejects tokens that are really a quantity with a unit.
var notModelSuffixes = []string{"kg", "kgs", "cm", "mm", "lbs", "ton"}

func (e *Extractor) extractVehicle(text string) []domain.ExtractionField {
	if e.lookup != nil {
		if m, ok := e.lookup.Scan(text, reference.DomainVehicle); ok {
			if entry, found := e.lookup.Vehicle(m.ID); found {
				out := []domain.ExtractionField{
					field(domain.FieldVehicleModel, domain.StringValue(entry.Model), vehicleConfidence, domain.SourcePattern),
					field(domain.FieldVehicleRef, domain.StringValue(entry.ID), m.Confidence, domain.SourceLookup),
				}
				if entry.Brand != "" {
					out = append(out, field(domain.FieldVehicleBrand, domain.StringValue(entry.Brand), vehicleConfidence, domain.SourcePattern))
				}
				return out
			}
		}
	}

	for _, m := range modelTokenRe.FindAllStringSubmatch(text, -1) {
		token := m[1]
		if looksLikeQuantity(token) {
			continue
		}
		return []domain.ExtractionField{
			field(domain.FieldVehicleModel, domain.StringValue(token), freeTextConfidence, domain.SourcePattern),
		}
	}
	return nil
}

func looksLikeQuantity(token string) bool {
	lower := strings.ToLower(token)
	for _, s := range notModelSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
