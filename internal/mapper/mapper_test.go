package mapper_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/domain"
	"freightdesk/internal/mapper"
	"freightdesk/internal/reference"
)

func ptr[T any](v T) *T { return &v }

func testLookup() *reference.Lookup {
	return reference.New([]domain.VehicleReferenceEntry{
		{ID: "jungheinrich-tfg435s", Brand: "Jungheinrich", Model: "TFG435s", LengthM: 3.9, WidthM: 2.3, HeightM: 3.1, WeightKg: 3500},
	}, nil)
}

func field(t *testing.T, p *domain.MappedPayload, name string) domain.TypedValue {
	t.Helper()
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("field %s not mapped", name)
	return domain.TypedValue{}
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "LENGTH_M", mapper.CanonicalName("length m"))
	assert.Equal(t, "LENGTH_M", mapper.CanonicalName("LENGTH_M"))
	assert.Equal(t, "DIM_BEF_DELIVERY", mapper.CanonicalName(" dim-bef  delivery "))
}

func TestMap_ExplicitValues(t *testing.T) {
	m := mapper.New(mapper.DefaultTable(testLookup()))
	rec := &domain.CanonicalRecord{
		DocumentID: uuid.New(),
		Contact:    domain.Contact{Name: "Jan de Vries", Company: "Van Dijk Transport", Email: "jan@van-dijk-transport.nl", Country: "NL"},
		Route:      domain.Route{Origin: "Rotterdam", Destination: "Lagos", OriginPort: "NLRTM", DestinationPort: "NGLOS"},
		Vehicle: domain.Vehicle{
			Brand: "Jungheinrich", Model: "TFG435s",
			Dimensions: &domain.Dimensions{LengthM: 4, WidthM: 2.5, HeightM: 3},
			WeightKg:   ptr(3600.0),
		},
		Confidence: 0.91,
		Status:     domain.ExtractionStatusSuccess,
	}

	p := m.Map(rec)

	assert.Equal(t, rec.DocumentID, p.DocumentID)
	assert.Equal(t, "Van Dijk Transport", *field(t, p, "COMPANY_NAME").StringValue)
	assert.Equal(t, 4.0, *field(t, p, "LENGTH_M").NumberValue)
	assert.Equal(t, 3600.0, *field(t, p, "WEIGHT_KG").NumberValue)
	assert.Equal(t, "4 x 2.5 x 3 m", *field(t, p, "DIM_BEF_DELIVERY").StringValue)
	assert.Equal(t, 0.91, *field(t, p, "EXTRACTION_CONFIDENCE").NumberValue)
	assert.False(t, *field(t, p, "NEEDS_REVIEW").BooleanValue)
	assert.ElementsMatch(t, []string{"PHONE", "ADDRESS", "CARGO_DESCRIPTION"}, p.Omitted)

	for _, f := range p.Fields {
		if f.Value.StringValue != nil {
			assert.NotEmpty(t, *f.Value.StringValue, f.Name)
		}
	}
}

func TestMap_ReferenceFallbacks(t *testing.T) {
	m := mapper.New(mapper.DefaultTable(testLookup()))
	rec := &domain.CanonicalRecord{
		DocumentID: uuid.New(),
		Vehicle:    domain.Vehicle{Model: "TFG 435s", ReferenceID: "jungheinrich-tfg435s"},
		Status:     domain.ExtractionStatusPartial,
	}

	p := m.Map(rec)

	assert.Equal(t, "TFG 435s", *field(t, p, "VEHICLE_MODEL").StringValue)
	assert.Equal(t, "Jungheinrich", *field(t, p, "VEHICLE_BRAND").StringValue)
	assert.Equal(t, 3.9, *field(t, p, "LENGTH_M").NumberValue)
	assert.Equal(t, 2.3, *field(t, p, "WIDTH_M").NumberValue)
	assert.Equal(t, 3.1, *field(t, p, "HEIGHT_M").NumberValue)
	assert.Equal(t, 3500.0, *field(t, p, "WEIGHT_KG").NumberValue)
	assert.Equal(t, "3.9 x 2.3 x 3.1 m", *field(t, p, "DIM_BEF_DELIVERY").StringValue)
	assert.True(t, *field(t, p, "NEEDS_REVIEW").BooleanValue)
}

func TestMap_ChainExhausted(t *testing.T) {
	m := mapper.New(mapper.DefaultTable(nil))

	p := m.Map(&domain.CanonicalRecord{DocumentID: uuid.New(), Vehicle: domain.Vehicle{ReferenceID: "unknown"}})

	assert.Contains(t, p.Omitted, "DIM_BEF_DELIVERY")
	assert.Contains(t, p.Omitted, "LENGTH_M")
	assert.Contains(t, p.Omitted, "VEHICLE_BRAND")
	for _, f := range p.Fields {
		assert.NotEqual(t, "DIM_BEF_DELIVERY", f.Name)
	}
}

func TestNew_CanonicalizesTargets(t *testing.T) {
	m := mapper.New([]mapper.FieldMapping{
		{Target: "company name", Type: mapper.TypeString, Chain: []mapper.Derivation{{Name: "fixed", Derive: func(*domain.CanonicalRecord) (any, bool) { return "Acme", true }}}},
	})

	assert.Equal(t, []string{"COMPANY_NAME"}, m.Targets())
	p := m.Map(&domain.CanonicalRecord{})
	require.Len(t, p.Fields, 1)
	assert.Equal(t, "COMPANY_NAME", p.Fields[0].Name)
}

func TestCoerce(t *testing.T) {
	v, ok := mapper.Coerce(mapper.TypeNumber, "3,5")
	require.True(t, ok)
	assert.Equal(t, 3.5, *v.NumberValue)

	_, ok = mapper.Coerce(mapper.TypeNumber, "n/a")
	assert.False(t, ok)

	v, ok = mapper.Coerce(mapper.TypeBoolean, "true")
	require.True(t, ok)
	assert.True(t, *v.BooleanValue)

	_, ok = mapper.Coerce(mapper.TypeString, "   ")
	assert.False(t, ok)

	v, ok = mapper.Coerce(mapper.TypeString, 3.25)
	require.True(t, ok)
	assert.Equal(t, "3.25", *v.StringValue)
}

func TestLookup_HistoricalKeyVariants(t *testing.T) {
	stored := map[string]domain.TypedValue{
		"COMPANY NAME":     {StringValue: ptr("Acme")},
		"dim bef delivery": {StringValue: ptr("1 x 2 x 3 m")},
	}

	v, ok := mapper.Lookup(stored, "COMPANY_NAME")
	require.True(t, ok)
	assert.Equal(t, "Acme", *v.StringValue)

	v, ok = mapper.Lookup(stored, "DIM_BEF_DELIVERY")
	require.True(t, ok)
	assert.Equal(t, "1 x 2 x 3 m", *v.StringValue)

	_, ok = mapper.Lookup(stored, "EMAIL")
	assert.False(t, ok)
}

func TestMergeExisting(t *testing.T) {
	stored := map[string]domain.TypedValue{
		"COMPANY NAME": {StringValue: ptr("Legacy")},
		"COMPANY_NAME": {StringValue: ptr("Canonical")},
		"PHONE":        {StringValue: ptr("+31101234567")},
		"length m":     {NumberValue: ptr(3.0)},
	}
	payload := &domain.MappedPayload{Fields: []domain.MappedField{
		{Name: "LENGTH_M", Value: domain.TypedValue{NumberValue: ptr(3.9)}},
	}}

	merged := mapper.MergeExisting(stored, payload)

	assert.Len(t, merged, 3)
	assert.Equal(t, "Canonical", *merged["COMPANY_NAME"].StringValue)
	assert.Equal(t, "+31101234567", *merged["PHONE"].StringValue)
	assert.Equal(t, 3.9, *merged["LENGTH_M"].NumberValue)
}
