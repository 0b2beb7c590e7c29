package ai

import (
	"strings"

	"freightdesk/internal/domain"
)

// BuildInstructions returns the extraction prompt for freight quote requests.
func BuildInstructions(specs []domain.FieldSpec) string {
	var b strings.Builder
	b.WriteString(`You are a data extraction assistant for a freight forwarder. The input is a transport quote request (an e-mail, a chat message, a scanned document or a photo). Extract the requested fields.

IMPORTANT INSTRUCTIONS:
- Return ONLY a JSON object with two keys: "fields" and "confidence". No markdown, no code fences, no explanation.
- "fields" maps each field key listed below to its value, or null when the input does not state it. Never guess.
- "confidence" maps the same keys to a number between 0 and 1 describing how certain you are.
- Do not add keys that are not listed.
- Dimensions are in meters and weight in kilograms. Convert centimeters, millimeters, tonnes and pounds.
- Use the vehicle model exactly as written (e.g. "TFG435s"), without the brand.
- Ports are UN/LOCODEs when you know them, otherwise null.

Fields:
`)
	for _, s := range specs {
		b.WriteString("- ")
		b.WriteString(string(s.Key))
		b.WriteString(" (")
		b.WriteString(string(s.Kind))
		if s.Required {
			b.WriteString(", required")
		}
		b.WriteString(")")
		if s.Description != "" {
			b.WriteString(": ")
			b.WriteString(s.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
