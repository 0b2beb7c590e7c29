// Package normalize turns a merged ExtractionResult into a CanonicalRecord.
package normalize

import (
	"strings"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

// Options are the service-wide defaults. RequestContext values take
// precedence when set.
type Options struct {
	DefaultCountry   string
	PreferredCompany string
	CompanyOverride  bool
	Locale           string
}

// Normalizer canonicalizes contact, route, vehicle and cargo data.
type Normalizer struct {
	lookup *reference.Lookup
	opts   Options
}

// New creates a Normalizer. lookup may be nil.
func New(lookup *reference.Lookup, opts Options) *Normalizer {
	return &Normalizer{lookup: lookup, opts: opts}
}

// Record builds the canonical record for result.
func (n *Normalizer) Record(result *domain.ExtractionResult, rc domain.RequestContext) *domain.CanonicalRecord {
	return &domain.CanonicalRecord{
		DocumentID: result.DocumentID,
		Contact:    n.Contact(result, rc),
		Route:      n.route(result),
		Vehicle:    n.vehicle(result),
		Cargo:      domain.Cargo{Description: clean(result.String(domain.FieldCargoDescription))},
		Confidence: result.Confidence,
		Status:     result.Status,
	}
}

// Contact resolves the requester. Company precedence is explicit company
// field, then the company implied by the e-mail domain, then the preferred
// company, then the contact name. With the override set the preferred
// company comes first.
func (n *Normalizer) Contact(result *domain.ExtractionResult, rc domain.RequestContext) domain.Contact {
	locale := firstNonEmpty(rc.Locale, n.opts.Locale)
	c := domain.Contact{
		Name:    clean(result.String(domain.FieldContactName)),
		Email:   strings.ToLower(clean(result.String(domain.FieldContactEmail))),
		Phone:   normalizePhone(result.String(domain.FieldContactPhone)),
		Address: clean(result.String(domain.FieldContactAddress)),
	}

	preferred := firstNonEmpty(rc.PreferredCompany, n.opts.PreferredCompany)
	candidates := []string{
		clean(result.String(domain.FieldContactCompany)),
		companyFromEmail(c.Email, locale),
		preferred,
		c.Name,
	}
	if rc.OverrideCompany || n.opts.CompanyOverride {
		candidates = append([]string{preferred}, candidates...)
	}
	c.Company = firstNonEmpty(candidates...)

	c.Country = n.country(result, c)
	if c.Country == "" {
		c.Country = strings.ToUpper(firstNonEmpty(rc.DefaultCountry, n.opts.DefaultCountry))
	}
	return c
}

// country returns the country signalled anywhere in the input, or "". An
// extracted country that has no known code is kept as written.
func (n *Normalizer) country(result *domain.ExtractionResult, c domain.Contact) string {
	if raw := clean(result.String(domain.FieldContactCountry)); raw != "" {
		if code, ok := CountryCode(raw); ok {
			return code
		}
		return raw
	}
	if code, ok := countryFromPhone(c.Phone); ok {
		return code
	}
	if code, ok := countryFromEmail(c.Email); ok {
		return code
	}
	return ""
}

func (n *Normalizer) route(result *domain.ExtractionResult) domain.Route {
	return domain.Route{
		Origin:          clean(result.String(domain.FieldRouteOrigin)),
		Destination:     clean(result.String(domain.FieldRouteDestination)),
		OriginPort:      strings.ToUpper(clean(result.String(domain.FieldOriginPort))),
		DestinationPort: strings.ToUpper(clean(result.String(domain.FieldDestinationPort))),
	}
}

func (n *Normalizer) vehicle(result *domain.ExtractionResult) domain.Vehicle {
	v := domain.Vehicle{
		Brand:       clean(result.String(domain.FieldVehicleBrand)),
		Model:       clean(result.String(domain.FieldVehicleModel)),
		ReferenceID: clean(result.String(domain.FieldVehicleRef)),
	}
	if v.ReferenceID == "" && v.Model != "" && n.lookup != nil {
		if m, ok := n.lookup.Resolve(strings.TrimSpace(v.Brand+" "+v.Model), reference.DomainVehicle); ok {
			v.ReferenceID = m.ID
		} else if m, ok := n.lookup.Resolve(v.Model, reference.DomainVehicle); ok {
			v.ReferenceID = m.ID
		}
	}
	if v.Brand == "" && v.ReferenceID != "" && n.lookup != nil {
		if entry, ok := n.lookup.Vehicle(v.ReferenceID); ok {
			v.Brand = entry.Brand
		}
	}

	l, okL := result.Number(domain.FieldLengthM)
	w, okW := result.Number(domain.FieldWidthM)
	h, okH := result.Number(domain.FieldHeightM)
	if okL && okW && okH && l > 0 && w > 0 && h > 0 {
		v.Dimensions = &domain.Dimensions{LengthM: l, WidthM: w, HeightM: h}
	}
	if kg, ok := result.Number(domain.FieldWeightKg); ok && kg > 0 {
		v.WeightKg = &kg
	}
	return v
}

// normalizePhone keeps a leading plus and digits; "00" becomes "+".
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if strings.HasPrefix(out, "00") {
		out = "+" + out[2:]
	}
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
