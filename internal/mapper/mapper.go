// Package mapper maps canonical records onto the flat, typed field schema of
// the export target.
package mapper

import (
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"freightdesk/internal/domain"
)

// Mapper applies a field table to canonical records.
type Mapper struct {
	table []FieldMapping
}

// New creates a Mapper for table. Target names are stored in canonical form.
func New(table []FieldMapping) *Mapper {
	t := make([]FieldMapping, len(table))
	for i, fm := range table {
		fm.Target = CanonicalName(fm.Target)
		t[i] = fm
	}
	return &Mapper{table: t}
}

// Targets returns the canonical target names in table order.
func (m *Mapper) Targets() []string {
	out := make([]string, len(m.table))
	for i, fm := range m.table {
		out[i] = fm.Target
	}
	return out
}

// Map builds the payload for rec. Targets whose chain yields nothing are
// omitted and listed in Omitted; empty strings are never emitted.
func (m *Mapper) Map(rec *domain.CanonicalRecord) *domain.MappedPayload {
	p := &domain.MappedPayload{DocumentID: rec.DocumentID, Fields: make([]domain.MappedField, 0, len(m.table))}
	for _, fm := range m.table {
		value, ok := m.resolve(fm, rec)
		if !ok {
			p.Omitted = append(p.Omitted, fm.Target)
			continue
		}
		p.Fields = append(p.Fields, domain.MappedField{Name: fm.Target, Value: value})
	}
	if len(p.Omitted) > 0 {
		log.Printf("mapper.Map: document %s fallback chains exhausted for %s", rec.DocumentID, strings.Join(p.Omitted, ", "))
	}
	return p
}

func (m *Mapper) resolve(fm FieldMapping, rec *domain.CanonicalRecord) (domain.TypedValue, bool) {
	for _, d := range fm.Chain {
		raw, ok := d.Derive(rec)
		if !ok {
			continue
		}
		if v, ok := Coerce(fm.Type, raw); ok {
			return v, true
		}
	}
	return domain.TypedValue{}, false
}

// Coerce converts raw to the declared type. Numbers become numberValue,
// booleans booleanValue and everything else stringValue. It fails for empty
// strings, non-finite numbers and unconvertible values.
func Coerce(t ValueType, raw any) (domain.TypedValue, bool) {
	switch t {
	case TypeNumber:
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
			if err != nil {
				return domain.TypedValue{}, false
			}
			f = parsed
		default:
			return domain.TypedValue{}, false
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.TypedValue{}, false
		}
		return domain.TypedValue{NumberValue: &f}, true
	case TypeBoolean:
		var b bool
		switch v := raw.(type) {
		case bool:
			b = v
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return domain.TypedValue{}, false
			}
			b = parsed
		default:
			return domain.TypedValue{}, false
		}
		return domain.TypedValue{BooleanValue: &b}, true
	default:
		var s string
		switch v := raw.(type) {
		case string:
			s = strings.TrimSpace(v)
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			return domain.TypedValue{}, false
		}
		if s == "" {
			return domain.TypedValue{}, false
		}
		return domain.TypedValue{StringValue: &s}, true
	}
}

// CanonicalName folds historical field name variants ("LENGTH M",
// "length-m") to the canonical underscore form ("LENGTH_M").
func CanonicalName(name string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(name), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.ToUpper(strings.Join(fields, "_"))
}

// Lookup reads target from a stored record whose keys may use any historical
// separator variant.
func Lookup(stored map[string]domain.TypedValue, target string) (domain.TypedValue, bool) {
	want := CanonicalName(target)
	if v, ok := stored[want]; ok {
		return v, true
	}
	keys := sortedKeys(stored)
	for _, k := range keys {
		if CanonicalName(k) == want {
			return stored[k], true
		}
	}
	return domain.TypedValue{}, false
}

// MergeExisting overlays payload onto a previously stored record. Variant
// keys are folded to their canonical form, canonical keys win over variants,
// and the result only contains canonical names.
func MergeExisting(stored map[string]domain.TypedValue, payload *domain.MappedPayload) map[string]domain.TypedValue {
	out := make(map[string]domain.TypedValue, len(stored)+len(payload.Fields))
	for _, k := range sortedKeys(stored) {
		c := CanonicalName(k)
		if _, taken := out[c]; taken && k != c {
			continue
		}
		out[c] = stored[k]
	}
	for _, f := range payload.Fields {
		out[CanonicalName(f.Name)] = f.Value
	}
	return out
}

func sortedKeys(m map[string]domain.TypedValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
