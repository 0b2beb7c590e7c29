package mapper

import (
	"strconv"
	"strings"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

// ValueType is a type in the export target's contract.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
)

// Derivation produces a value for a target from the record. ok is false when
// it has nothing to contribute.
type Derivation struct {
	Name   string
	Derive func(rec *domain.CanonicalRecord) (value any, ok bool)
}

// FieldMapping declares one export field: its canonical target name, value
// type and the ordered fallback chain that produces its value.
type FieldMapping struct {
	Target string
	Type   ValueType
	Chain  []Derivation
}

func str(name string, get func(rec *domain.CanonicalRecord) string) Derivation {
	return Derivation{Name: name, Derive: func(rec *domain.CanonicalRecord) (any, bool) {
		v := get(rec)
		return v, strings.TrimSpace(v) != ""
	}}
}

func explicitDim(get func(d *domain.Dimensions) float64) Derivation {
	return Derivation{Name: "vehicle.dimensions", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
		if rec.Vehicle.Dimensions == nil {
			return nil, false
		}
		return get(rec.Vehicle.Dimensions), true
	}}
}

// DefaultTable returns the standard export field table. Vehicle fields fall
// back to the reference entry when the document itself lacks them.
func DefaultTable(lookup *reference.Lookup) []FieldMapping {
	refVehicle := func(rec *domain.CanonicalRecord) (domain.VehicleReferenceEntry, bool) {
		if lookup == nil || rec.Vehicle.ReferenceID == "" {
			return domain.VehicleReferenceEntry{}, false
		}
		return lookup.Vehicle(rec.Vehicle.ReferenceID)
	}
	refDims := func(rec *domain.CanonicalRecord) (*domain.Dimensions, bool) {
		e, ok := refVehicle(rec)
		if !ok || !e.HasDimensions() {
			return nil, false
		}
		return &domain.Dimensions{LengthM: e.LengthM, WidthM: e.WidthM, HeightM: e.HeightM}, true
	}
	refDim := func(get func(d *domain.Dimensions) float64) Derivation {
		return Derivation{Name: "reference.dimensions", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
			d, ok := refDims(rec)
			if !ok {
				return nil, false
			}
			return get(d), true
		}}
	}
	length := func(d *domain.Dimensions) float64 { return d.LengthM }
	width := func(d *domain.Dimensions) float64 { return d.WidthM }
	height := func(d *domain.Dimensions) float64 { return d.HeightM }

	return []FieldMapping{
		{Target: "CONTACT_NAME", Type: TypeString, Chain: []Derivation{
			str("contact.name", func(r *domain.CanonicalRecord) string { return r.Contact.Name }),
		}},
		{Target: "COMPANY_NAME", Type: TypeString, Chain: []Derivation{
			str("contact.company", func(r *domain.CanonicalRecord) string { return r.Contact.Company }),
		}},
		{Target: "EMAIL", Type: TypeString, Chain: []Derivation{
			str("contact.email", func(r *domain.CanonicalRecord) string { return r.Contact.Email }),
		}},
		{Target: "PHONE", Type: TypeString, Chain: []Derivation{
			str("contact.phone", func(r *domain.CanonicalRecord) string { return r.Contact.Phone }),
		}},
		{Target: "ADDRESS", Type: TypeString, Chain: []Derivation{
			str("contact.address", func(r *domain.CanonicalRecord) string { return r.Contact.Address }),
		}},
		{Target: "COUNTRY", Type: TypeString, Chain: []Derivation{
			str("contact.country", func(r *domain.CanonicalRecord) string { return r.Contact.Country }),
		}},
		{Target: "ORIGIN", Type: TypeString, Chain: []Derivation{
			str("route.origin", func(r *domain.CanonicalRecord) string { return r.Route.Origin }),
		}},
		{Target: "DESTINATION", Type: TypeString, Chain: []Derivation{
			str("route.destination", func(r *domain.CanonicalRecord) string { return r.Route.Destination }),
		}},
		{Target: "ORIGIN_PORT", Type: TypeString, Chain: []Derivation{
			str("route.origin_port", func(r *domain.CanonicalRecord) string { return r.Route.OriginPort }),
		}},
		{Target: "DESTINATION_PORT", Type: TypeString, Chain: []Derivation{
			str("route.destination_port", func(r *domain.CanonicalRecord) string { return r.Route.DestinationPort }),
		}},
		{Target: "VEHICLE_BRAND", Type: TypeString, Chain: []Derivation{
			str("vehicle.brand", func(r *domain.CanonicalRecord) string { return r.Vehicle.Brand }),
			{Name: "reference.brand", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				e, ok := refVehicle(rec)
				return e.Brand, ok && e.Brand != ""
			}},
		}},
		{Target: "VEHICLE_MODEL", Type: TypeString, Chain: []Derivation{
			str("vehicle.model", func(r *domain.CanonicalRecord) string { return r.Vehicle.Model }),
			{Name: "reference.model", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				e, ok := refVehicle(rec)
				return e.Model, ok && e.Model != ""
			}},
		}},
		{Target: "LENGTH_M", Type: TypeNumber, Chain: []Derivation{explicitDim(length), refDim(length)}},
		{Target: "WIDTH_M", Type: TypeNumber, Chain: []Derivation{explicitDim(width), refDim(width)}},
		{Target: "HEIGHT_M", Type: TypeNumber, Chain: []Derivation{explicitDim(height), refDim(height)}},
		{Target: "WEIGHT_KG", Type: TypeNumber, Chain: []Derivation{
			{Name: "vehicle.weight_kg", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				if rec.Vehicle.WeightKg == nil {
					return nil, false
				}
				return *rec.Vehicle.WeightKg, true
			}},
			{Name: "reference.weight_kg", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				e, ok := refVehicle(rec)
				return e.WeightKg, ok && e.WeightKg > 0
			}},
		}},
		{Target: "DIM_BEF_DELIVERY", Type: TypeString, Chain: []Derivation{
			{Name: "vehicle.dimensions", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				if rec.Vehicle.Dimensions == nil {
					return nil, false
				}
				return FormatDimensions(*rec.Vehicle.Dimensions), true
			}},
			{Name: "reference.dimensions", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				d, ok := refDims(rec)
				if !ok {
					return nil, false
				}
				return FormatDimensions(*d), true
			}},
		}},
		{Target: "CARGO_DESCRIPTION", Type: TypeString, Chain: []Derivation{
			str("cargo.description", func(r *domain.CanonicalRecord) string { return r.Cargo.Description }),
		}},
		{Target: "EXTRACTION_CONFIDENCE", Type: TypeNumber, Chain: []Derivation{
			{Name: "confidence", Derive: func(rec *domain.CanonicalRecord) (any, bool) { return rec.Confidence, true }},
		}},
		{Target: "NEEDS_REVIEW", Type: TypeBoolean, Chain: []Derivation{
			{Name: "status", Derive: func(rec *domain.CanonicalRecord) (any, bool) {
				return rec.Status != domain.ExtractionStatusSuccess, true
			}},
		}},
	}
}

// FormatDimensions renders dimensions as "L x W x H m".
func FormatDimensions(d domain.Dimensions) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(d.LengthM) + " x " + f(d.WidthM) + " x " + f(d.HeightM) + " m"
}
