package pattern

import (
	"regexp"
	"sort"
	"strings"

	"freightdesk/internal/domain"
)

const (
	dimBase        = 0.7
	dimUnitBonus   = 0.1
	dimLabelBonus  = 0.1
	dimTripleBonus = 0.05
	// unlabeled values below this are meters, otherwise centimeters
	meterCutoff = 20.0
)

// axisLabels lists the labels recognised per axis. Adding a language is a data
// change.
var axisLabels = map[domain.FieldKey][]string{
	domain.FieldLengthM: {"l", "length", "lengte", "länge", "laenge", "lang", "longueur", "lunghezza"},
	domain.FieldWidthM:  {"w", "b", "width", "breedte", "breite", "largeur", "larghezza"},
	domain.FieldHeightM: {"h", "height", "hoogte", "höhe", "hoehe", "hauteur", "altezza"},
}

var axisOrder = []domain.FieldKey{domain.FieldLengthM, domain.FieldWidthM, domain.FieldHeightM}

// unitRe accepts abbreviated and spelled units; longer spellings come first
// so "meters" is not read as "m".
const unitRe = `(millimet(?:er|re)s?|centimet(?:er|re)s?|met(?:er|re)s?|mm|cm|m)?`

var (
	tripleRe = regexp.MustCompile(`(?i)(` + numberRe + `)\s*` + unitRe + `\s*[x×*]\s*(` + numberRe + `)\s*` + unitRe +
		`\s*[x×*]\s*(` + numberRe + `)\s*` + unitRe + `\b`)
	tripleHeaderRe = regexp.MustCompile(`(?i)\bl\s*[x×*]\s*[bw]\s*[x×*]\s*h\b`)
	labeledRe      = buildLabeledRes()
)

func buildLabeledRes() map[domain.FieldKey]*regexp.Regexp {
	out := make(map[domain.FieldKey]*regexp.Regexp, len(axisLabels))
	for key, labels := range axisLabels {
		sorted := append([]string(nil), labels...)
		sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
		quoted := make([]string, len(sorted))
		for i, l := range sorted {
			quoted[i] = regexp.QuoteMeta(l)
		}
		out[key] = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` + strings.Join(quoted, "|") + `)\.?\s*[:=]?\s*(` + numberRe + `)\s*` + unitRe + `\b`)
	}
	return out
}

// normalizeUnit maps a matched unit to "mm", "cm", "m" or "".
func normalizeUnit(unit string) string {
	u := strings.ToLower(unit)
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "mil") || u == "mm":
		return "mm"
	case strings.HasPrefix(u, "c"):
		return "cm"
	default:
		return "m"
	}
}

// parseLength reads a number. Millimeter and centimeter values are integer
// counts in practice, so "1.200 mm" is 1200 mm.
func parseLength(raw, unit string) (float64, bool) {
	if unit == "mm" || unit == "cm" {
		return parseGrouped(raw)
	}
	return parseDecimal(raw)
}

// toMeters converts value to meters. Without a unit the value is taken as
// meters below the cutoff and centimeters otherwise.
func toMeters(value float64, unit string) float64 {
	switch unit {
	case "mm":
		return value / 1000
	case "cm":
		return value / 100
	case "m":
		return value
	}
	if value < meterCutoff {
		return value
	}
	return value / 100
}

func extractDimensions(text string) []domain.ExtractionField {
	var out []domain.ExtractionField

	if m := tripleRe.FindStringSubmatch(text); m != nil {
		values := []string{m[1], m[3], m[5]}
		units := []string{normalizeUnit(m[2]), normalizeUnit(m[4]), normalizeUnit(m[6])}
		// A unit on the last value applies to the whole triple unless the
		// other values carry their own.
		if units[0] == "" && units[1] == "" {
			units[0], units[1] = units[2], units[2]
		}
		conf := dimBase + dimTripleBonus
		if units[0] != "" || units[1] != "" || units[2] != "" {
			conf += dimUnitBonus
		}
		if tripleHeaderRe.MatchString(text) {
			conf += dimLabelBonus
		}
		for i, key := range axisOrder {
			v, ok := parseLength(values[i], units[i])
			if !ok || v <= 0 {
				continue
			}
			out = append(out, field(key, domain.NumberValue(round(toMeters(v, units[i]), 4)), capConfidence(conf), domain.SourcePattern))
		}
	}

	for _, key := range axisOrder {
		m := labeledRe[key].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		unit := normalizeUnit(m[2])
		v, ok := parseLength(m[1], unit)
		if !ok || v <= 0 {
			continue
		}
		conf := dimBase + dimLabelBonus
		if unit != "" {
			conf += dimUnitBonus
		}
		out = append(out, field(key, domain.NumberValue(round(toMeters(v, unit), 4)), capConfidence(conf), domain.SourcePattern))
	}
	return out
}

// maskQuantities blanks out dimension triples, labeled dimensions with a
// unit and weights so their numbers are not read as model names.
func maskQuantities(text string) string {
	b := []byte(text)
	blank := func(start, end int) {
		for i := start; i < end; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	for _, loc := range tripleRe.FindAllStringIndex(text, -1) {
		blank(loc[0], loc[1])
	}
	for _, key := range axisOrder {
		for _, loc := range labeledRe[key].FindAllStringSubmatchIndex(text, -1) {
			if loc[4] >= 0 && loc[5] > loc[4] {
				blank(loc[0], loc[1])
			}
		}
	}
	for _, loc := range weightRe.FindAllStringIndex(text, -1) {
		blank(loc[0], loc[1])
	}
	return string(b)
}
