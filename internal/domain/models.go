package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawDocument is the decoded input handed to the pipeline. It is owned by the
// caller and must not be modified by extraction code.
type RawDocument struct {
	ID       uuid.UUID
	Content  []byte
	Text     string
	MIMEType string
	Channel  Channel
	Filename string
}

// HasText reports whether the document carries a decoded text layer.
func (d *RawDocument) HasText() bool {
	for _, r := range d.Text {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}

// RequestContext carries the per-request settings that influence
// normalization. It is passed explicitly through every call.
type RequestContext struct {
	PreferredCompany string `json:"preferred_company,omitempty"`
	OverrideCompany  bool   `json:"override_company,omitempty"`
	DefaultCountry   string `json:"default_country,omitempty"`
	Locale           string `json:"locale,omitempty"`
}

// ExtractionField is one candidate (or the winning) value for a canonical key.
type ExtractionField struct {
	Key        FieldKey   `json:"key"`
	Value      FieldValue `json:"value"`
	Confidence float64    `json:"confidence"`
	Source     Source     `json:"source"`
	Strategy   string     `json:"strategy,omitempty"`
}

// ExtractionError records a recovered failure inside one extraction attempt.
type ExtractionError struct {
	Strategy string    `json:"strategy,omitempty"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

// ExtractionResult is the merged output of one extraction attempt. It is
// built once by the pipeline and treated as read-only afterwards.
type ExtractionResult struct {
	DocumentID uuid.UUID                    `json:"document_id"`
	Fields     map[FieldKey]ExtractionField `json:"fields"`
	Confidence float64                      `json:"confidence"`
	Status     ExtractionStatus             `json:"status"`
	Errors     []ExtractionError            `json:"errors"`
	Strategies []string                     `json:"strategies"`
	CreatedAt  time.Time                    `json:"created_at"`
}

// Field returns the winning field for key.
func (r *ExtractionResult) Field(key FieldKey) ExtractionField {
	if f, ok := r.Fields[key]; ok {
		return f
	}
	return ExtractionField{Key: key, Value: NullValue(), Source: SourceDefault}
}

// String returns the string value of key, or "" when absent.
func (r *ExtractionResult) String(key FieldKey) string {
	f := r.Field(key)
	if f.Value.IsNull() {
		return ""
	}
	return f.Value.Text()
}

// Number returns the numeric value of key and whether one was present.
func (r *ExtractionResult) Number(key FieldKey) (float64, bool) {
	f := r.Field(key)
	if f.Value.Kind != KindNumber {
		return 0, false
	}
	return f.Value.Number, true
}

// Contact is the normalized requester of a quote.
type Contact struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Country string `json:"country,omitempty"`
}

// Route is the shipment route.
type Route struct {
	Origin          string `json:"origin,omitempty"`
	Destination     string `json:"destination,omitempty"`
	OriginPort      string `json:"origin_port,omitempty"`
	DestinationPort string `json:"destination_port,omitempty"`
}

// Dimensions are always expressed in meters.
type Dimensions struct {
	LengthM float64 `json:"length_m"`
	WidthM  float64 `json:"width_m"`
	HeightM float64 `json:"height_m"`
}

// Vehicle is the vehicle or machine to be shipped.
type Vehicle struct {
	Brand       string      `json:"brand,omitempty"`
	Model       string      `json:"model,omitempty"`
	ReferenceID string      `json:"reference_id,omitempty"`
	Dimensions  *Dimensions `json:"dimensions,omitempty"`
	WeightKg    *float64    `json:"weight_kg,omitempty"`
}

// Cargo holds free-form cargo details.
type Cargo struct {
	Description string `json:"description,omitempty"`
}

// CanonicalRecord is the normalized business entity derived from an
// ExtractionResult and consumed by the field mapper.
type CanonicalRecord struct {
	DocumentID uuid.UUID        `json:"document_id"`
	Contact    Contact          `json:"contact"`
	Route      Route            `json:"route"`
	Vehicle    Vehicle          `json:"vehicle"`
	Cargo      Cargo            `json:"cargo"`
	Confidence float64          `json:"confidence"`
	Status     ExtractionStatus `json:"status"`
}

// TypedValue is a value in the export target's type contract. Exactly one of
// the pointers is set.
type TypedValue struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	NumberValue  *float64 `json:"numberValue,omitempty"`
	BooleanValue *bool    `json:"booleanValue,omitempty"`
}

// MappedField is one entry of a MappedPayload.
type MappedField struct {
	Name  string     `json:"name"`
	Value TypedValue `json:"value"`
}

// MappedPayload is the ordered set of export fields for one document.
type MappedPayload struct {
	DocumentID uuid.UUID     `json:"document_id"`
	Fields     []MappedField `json:"fields"`
	Omitted    []string      `json:"omitted,omitempty"`
}

// Object renders the payload as the flat object accepted by the export
// boundary.
func (p *MappedPayload) Object() map[string]TypedValue {
	out := make(map[string]TypedValue, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Name] = f.Value
	}
	return out
}

// VehicleReferenceEntry is a row of the vehicle reference dataset.
type VehicleReferenceEntry struct {
	ID       string   `db:"id" json:"id" yaml:"id"`
	Brand    string   `db:"brand" json:"brand" yaml:"brand"`
	Model    string   `db:"model" json:"model" yaml:"model"`
	Aliases  []string `db:"-" json:"aliases" yaml:"aliases"`
	LengthM  float64  `db:"length_m" json:"length_m" yaml:"length_m"`
	WidthM   float64  `db:"width_m" json:"width_m" yaml:"width_m"`
	HeightM  float64  `db:"height_m" json:"height_m" yaml:"height_m"`
	WeightKg float64  `db:"weight_kg" json:"weight_kg" yaml:"weight_kg"`
}

// HasDimensions reports whether all three axes are known.
func (e *VehicleReferenceEntry) HasDimensions() bool {
	return e.LengthM > 0 && e.WidthM > 0 && e.HeightM > 0
}

// PortReferenceEntry is a row of the port reference dataset.
type PortReferenceEntry struct {
	ID      string   `db:"id" json:"id" yaml:"id"`
	Name    string   `db:"name" json:"name" yaml:"name"`
	Country string   `db:"country" json:"country" yaml:"country"`
	Aliases []string `db:"-" json:"aliases" yaml:"aliases"`
}

// Document is a submitted document and its extraction bookkeeping.
type Document struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Filename         string           `db:"filename" json:"filename"`
	MIMEType         string           `db:"mime_type" json:"mime_type"`
	Channel          Channel          `db:"channel" json:"channel"`
	StorageBucket    string           `db:"storage_bucket" json:"-"`
	StorageKey       string           `db:"storage_key" json:"-"`
	SizeBytes        int64            `db:"size_bytes" json:"size_bytes"`
	PageCount        *int             `db:"page_count" json:"page_count,omitempty"`
	Text             string           `db:"text_content" json:"-"`
	PreferredCompany string           `db:"preferred_company" json:"preferred_company,omitempty"`
	OverrideCompany  bool             `db:"override_company" json:"override_company"`
	DefaultCountry   string           `db:"default_country" json:"default_country,omitempty"`
	Locale           string           `db:"locale" json:"locale,omitempty"`
	Status           DocumentStatus   `db:"status" json:"status"`
	ExtractionStatus ExtractionStatus `db:"extraction_status" json:"extraction_status,omitempty"`
	Confidence       float64          `db:"confidence" json:"confidence"`
	LastError        string           `db:"last_error" json:"last_error,omitempty"`
	Attempts         int              `db:"attempts" json:"attempts"`
	ExtractedAt      *time.Time       `db:"extracted_at" json:"extracted_at"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// RequestContext rebuilds the per-request context stored with the document.
func (d *Document) RequestContext() RequestContext {
	return RequestContext{
		PreferredCompany: d.PreferredCompany,
		OverrideCompany:  d.OverrideCompany,
		DefaultCountry:   d.DefaultCountry,
		Locale:           d.Locale,
	}
}

// StoredResult is a persisted ExtractionResult row.
type StoredResult struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	DocumentID uuid.UUID        `db:"document_id" json:"document_id"`
	Status     ExtractionStatus `db:"status" json:"status"`
	Confidence float64          `db:"confidence" json:"confidence"`
	Fields     json.RawMessage  `db:"fields" json:"fields"`
	Errors     json.RawMessage  `db:"errors" json:"errors"`
	Strategies json.RawMessage  `db:"strategies" json:"strategies"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// StoredPayload is a persisted MappedPayload row.
type StoredPayload struct {
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	Omitted    json.RawMessage `db:"omitted" json:"omitted"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// DispatchResult is the outcome of delivering a payload to one target.
type DispatchResult struct {
	Target   string         `json:"target"`
	Status   DispatchStatus `json:"status"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}
