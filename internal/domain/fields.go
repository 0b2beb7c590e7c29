package domain

import (
	"strconv"
)

// FieldKey is a canonical, system-independent field name.
type FieldKey string

const (
	FieldContactName      FieldKey = "contact.name"
	FieldContactCompany   FieldKey = "contact.company"
	FieldContactEmail     FieldKey = "contact.email"
	FieldContactPhone     FieldKey = "contact.phone"
	FieldContactAddress   FieldKey = "contact.address"
	FieldContactCountry   FieldKey = "contact.country"
	FieldRouteOrigin      FieldKey = "route.origin"
	FieldRouteDestination FieldKey = "route.destination"
	FieldOriginPort       FieldKey = "route.origin_port"
	FieldDestinationPort  FieldKey = "route.destination_port"
	FieldVehicleBrand     FieldKey = "vehicle.brand"
	FieldVehicleModel     FieldKey = "vehicle.model"
	FieldVehicleRef       FieldKey = "vehicle.reference_id"
	FieldLengthM          FieldKey = "vehicle.dimensions.length_m"
	FieldWidthM           FieldKey = "vehicle.dimensions.width_m"
	FieldHeightM          FieldKey = "vehicle.dimensions.height_m"
	FieldWeightKg         FieldKey = "vehicle.weight_kg"
	FieldCargoDescription FieldKey = "cargo.description"
)

// ValueKind is the JSON-level type of a field value.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindNull    ValueKind = "null"
)

// FieldSpec declares a canonical field: its type, whether it is required for
// a successful extraction, and its weight in the overall confidence.
type FieldSpec struct {
	Key         FieldKey
	Kind        ValueKind
	Required    bool
	Weight      float64
	Description string
}

var fieldSpecs = []FieldSpec{
	{Key: FieldContactName, Kind: KindString, Description: "Name of the person requesting the quote"},
	{Key: FieldContactCompany, Kind: KindString, Description: "Company of the requester"},
	{Key: FieldContactEmail, Kind: KindString, Description: "E-mail address of the requester"},
	{Key: FieldContactPhone, Kind: KindString, Description: "Phone number in international format"},
	{Key: FieldContactAddress, Kind: KindString, Description: "Postal address of the requester"},
	{Key: FieldContactCountry, Kind: KindString, Description: "Country of the requester, ISO 3166 alpha-2 if known"},
	{Key: FieldRouteOrigin, Kind: KindString, Required: true, Weight: 1, Description: "Place of loading"},
	{Key: FieldRouteDestination, Kind: KindString, Required: true, Weight: 1, Description: "Place of delivery"},
	{Key: FieldOriginPort, Kind: KindString, Description: "UN/LOCODE of the port of loading"},
	{Key: FieldDestinationPort, Kind: KindString, Description: "UN/LOCODE of the port of discharge"},
	{Key: FieldVehicleBrand, Kind: KindString, Description: "Vehicle or machine manufacturer"},
	{Key: FieldVehicleModel, Kind: KindString, Required: true, Weight: 1.5, Description: "Vehicle or machine model"},
	{Key: FieldVehicleRef, Kind: KindString, Description: "Reference catalogue id of the vehicle"},
	{Key: FieldLengthM, Kind: KindNumber, Required: true, Weight: 1, Description: "Length in meters"},
	{Key: FieldWidthM, Kind: KindNumber, Required: true, Weight: 1, Description: "Width in meters"},
	{Key: FieldHeightM, Kind: KindNumber, Required: true, Weight: 1, Description: "Height in meters"},
	{Key: FieldWeightKg, Kind: KindNumber, Required: true, Weight: 1, Description: "Weight in kilograms"},
	{Key: FieldCargoDescription, Kind: KindString, Description: "Free-text description of the cargo"},
}

// FieldSpecs returns the canonical field registry in declaration order.
func FieldSpecs() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// LookupFieldSpec returns the spec for key.
func LookupFieldSpec(key FieldKey) (FieldSpec, bool) {
	for _, s := range fieldSpecs {
		if s.Key == key {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// FieldValue is a leaf value of a canonical field.
type FieldValue struct {
	Kind   ValueKind `json:"kind"`
	String string    `json:"string,omitempty"`
	Number float64   `json:"number,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// StringValue builds a string FieldValue.
func StringValue(s string) FieldValue { return FieldValue{Kind: KindString, String: s} }

// NumberValue builds a numeric FieldValue.
func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Number: n} }

// BoolValue builds a boolean FieldValue.
func BoolValue(b bool) FieldValue { return FieldValue{Kind: KindBoolean, Bool: b} }

// NullValue is the value of a field nothing produced.
func NullValue() FieldValue { return FieldValue{Kind: KindNull} }

// IsNull reports whether v carries no value.
func (v FieldValue) IsNull() bool {
	return v.Kind == KindNull || v.Kind == "" || (v.Kind == KindString && v.String == "")
}

// Text renders the value for display and deterministic ordering.
func (v FieldValue) Text() string {
	switch v.Kind {
	case KindString:
		return v.String
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}
