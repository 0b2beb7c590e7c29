package pattern

import (
	"regexp"
	"strings"

	"freightdesk/internal/domain"
)

const (
	emailConfidence   = 0.9
	phoneConfidence   = 0.7
	labeledConfidence = 0.8
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+|00)\d[\d ()./\-]{6,18}\d`)

	companyLabels = []string{"company", "firma", "bedrijf", "société", "societe", "unternehmen"}
	nameLabels    = []string{"name", "naam", "contact", "contactpersoon", "ansprechpartner", "nom"}
	countryLabels = []string{"country", "land", "pays"}
	addressLabels = []string{"address", "adres", "adresse", "anschrift"}
)

var labeledContact = []struct {
	key domain.FieldKey
	re  *regexp.Regexp
}{
	{domain.FieldContactCompany, labelRe(companyLabels)},
	{domain.FieldContactName, labelRe(nameLabels)},
	{domain.FieldContactCountry, labelRe(countryLabels)},
	{domain.FieldContactAddress, labelRe(addressLabels)},
}

func extractContact(text string) []domain.ExtractionField {
	var out []domain.ExtractionField
	if m := emailRe.FindString(text); m != "" {
		out = append(out, field(domain.FieldContactEmail, domain.StringValue(strings.ToLower(m)), emailConfidence, domain.SourcePattern))
	}
	if m := phoneRe.FindString(text); m != "" {
		out = append(out, field(domain.FieldContactPhone, domain.StringValue(strings.Join(strings.Fields(m), " ")), phoneConfidence, domain.SourcePattern))
	}
	for _, lc := range labeledContact {
		if m := lc.re.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				out = append(out, field(lc.key, domain.StringValue(v), labeledConfidence, domain.SourcePattern))
			}
		}
	}
	return out
}
