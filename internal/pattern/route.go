package pattern

import (
	"regexp"
	"strings"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

const routeConfidence = 0.75

// RoutePhrase is one language's way of saying "from X to Y".
type RoutePhrase struct {
	Lang string
	From string
	To   string
}

// DefaultRoutePhrases returns the built-in route phrase table.
func DefaultRoutePhrases() []RoutePhrase {
	return []RoutePhrase{
		{Lang: "en", From: "from", To: "to"},
		{Lang: "nl", From: "van", To: "naar"},
		{Lang: "de", From: "von", To: "nach"},
		{Lang: "fr", From: "de", To: "à"},
	}
}

var (
	originLabels      = []string{"origin", "pickup", "loading", "herkomst", "laadadres", "ophaaladres", "abholung", "enlèvement"}
	destinationLabels = []string{"destination", "delivery", "bestemming", "losadres", "afleveradres", "zustellung", "ziel", "livraison"}
)

// place is the first word in any case followed by up to three capitalised words.
const placeRe = `([\p{L}][\p{L}'\-]*(?:[ ]\p{Lu}[\p{L}'\-]*){0,3})`

func compilePhrases(phrases []RoutePhrase) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, phraseRe(p))
	}
	return out
}

func phraseRe(p RoutePhrase) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}])(?i:` + regexp.QuoteMeta(p.From) + `)\s+` + placeRe +
		`\s+(?i:` + regexp.QuoteMeta(p.To) + `)\s+` + placeRe)
}

func labelRe(labels []string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*(?:` + strings.Join(labels, "|") + `)\s*:\s*([^\n]+)$`)
}

var (
	originLabelRe      = labelRe(originLabels)
	destinationLabelRe = labelRe(destinationLabels)
)

func (e *Extractor) extractRoute(text string) []domain.ExtractionField {
	origin, destination := "", ""
	for _, re := range e.routes {
		if m := re.FindStringSubmatch(text); m != nil {
			origin, destination = m[1], m[2]
			break
		}
	}
	if m := originLabelRe.FindStringSubmatch(text); m != nil && origin == "" {
		origin = m[1]
	}
	if m := destinationLabelRe.FindStringSubmatch(text); m != nil && destination == "" {
		destination = m[1]
	}

	var out []domain.ExtractionField
	out = append(out, e.place(domain.FieldRouteOrigin, domain.FieldOriginPort, origin)...)
	out = append(out, e.place(domain.FieldRouteDestination, domain.FieldDestinationPort, destination)...)
	return out
}

func (e *Extractor) place(key, portKey domain.FieldKey, raw string) []domain.ExtractionField {
	name := strings.Trim(strings.TrimSpace(raw), ".,;:")
	if name == "" {
		return nil
	}
	out := []domain.ExtractionField{field(key, domain.StringValue(name), routeConfidence, domain.SourcePattern)}
	if e.lookup == nil {
		return out
	}
	m, ok := e.lookup.Resolve(name, reference.DomainPort)
	if !ok {
		m, ok = e.lookup.Scan(name, reference.DomainPort)
	}
	if ok {
		out = append(out, field(portKey, domain.StringValue(m.ID), m.Confidence, domain.SourceLookup))
	}
	return out
}
