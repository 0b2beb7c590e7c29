package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"freightdesk/internal/domain"
)

// BuildSchema returns the JSON schema an AI response must satisfy for specs:
// an object with a "fields" map of nullable values and an optional
// "confidence" map of nullable scores. No additional properties are allowed
// at any level.
func BuildSchema(specs []domain.FieldSpec) map[string]any {
	fieldProps := make(map[string]any, len(specs))
	confProps := make(map[string]any, len(specs))
	for _, s := range specs {
		prop := map[string]any{"type": []string{string(s.Kind), "null"}}
		if s.Description != "" {
			prop["description"] = s.Description
		}
		fieldProps[string(s.Key)] = prop
		confProps[string(s.Key)] = map[string]any{
			"type":    []string{"number", "null"},
			"minimum": 0.0,
			"maximum": 1.0,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"fields"},
		"properties": map[string]any{
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fieldProps,
			},
			"confidence": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           confProps,
			},
		},
	}
}

// Contract is a compiled response schema for one set of field specs.
type Contract struct {
	specs  map[string]domain.FieldSpec
	doc    map[string]any
	schema *jsonschema.Schema
}

// NewContract builds and compiles the response schema for specs.
func NewContract(specs []domain.FieldSpec) (*Contract, error) {
	doc := BuildSchema(specs)
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	byKey := make(map[string]domain.FieldSpec, len(specs))
	for _, s := range specs {
		byKey[string(s.Key)] = s
	}
	return &Contract{specs: byKey, doc: doc, schema: schema}, nil
}

// Schema returns the schema document sent to providers.
func (c *Contract) Schema() map[string]any {
	return c.doc
}

// decoded is a validated model answer.
type decoded struct {
	values     map[string]any
	confidence map[string]any
	discarded  []string
}

// Decode strips code fences, drops every property outside the schema and
// validates what remains. Dropped property paths are returned so callers can
// log them; they never fail the response.
func (c *Contract) Decode(raw []byte) (*decoded, error) {
	text := stripFences(string(raw))
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &SchemaViolation{Details: fmt.Sprintf("response is not a JSON object: %v (raw: %s)", err, truncate(text, 200))}
	}

	out := &decoded{}
	for k := range doc {
		if k != "fields" && k != "confidence" {
			delete(doc, k)
			out.discarded = append(out.discarded, k)
		}
	}
	out.values, out.discarded = c.prune(doc, "fields", out.discarded)
	out.confidence, out.discarded = c.prune(doc, "confidence", out.discarded)
	sort.Strings(out.discarded)

	if err := c.schema.Validate(doc); err != nil {
		return nil, &SchemaViolation{Details: err.Error()}
	}
	return out, nil
}

func (c *Contract) prune(doc map[string]any, section string, discarded []string) (map[string]any, []string) {
	obj, ok := doc[section].(map[string]any)
	if !ok {
		// Non-object sections are left for the validator to reject.
		return nil, discarded
	}
	for k := range obj {
		if _, known := c.specs[k]; !known {
			delete(obj, k)
			discarded = append(discarded, section+"."+k)
		}
	}
	return obj, discarded
}

// Fields converts a decoded answer to extraction fields. Null values are
// skipped. Model-reported confidence is clamped to [0,1]; without one the
// default applies. Optional fields are scaled by 0.9.
func (c *Contract) Fields(d *decoded, defaultConfidence float64, strategy string) []domain.ExtractionField {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []domain.ExtractionField
	for _, k := range keys {
		spec := c.specs[k]
		value, ok := toFieldValue(d.values[k])
		if !ok {
			continue
		}
		conf := defaultConfidence
		if reported, ok := d.confidence[k].(float64); ok {
			conf = clamp(reported)
		}
		if !spec.Required {
			conf *= 0.9
		}
		out = append(out, domain.ExtractionField{
			Key:        spec.Key,
			Value:      value,
			Confidence: math.Round(conf*10000) / 10000,
			Source:     domain.SourceAI,
			Strategy:   strategy,
		})
	}
	return out
}

func toFieldValue(v any) (domain.FieldValue, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return domain.FieldValue{}, false
		}
		return domain.StringValue(s), true
	case float64:
		return domain.NumberValue(t), true
	case bool:
		return domain.BoolValue(t), true
	default:
		return domain.FieldValue{}, false
	}
}

func clamp(f float64) float64 {
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the info string ("json") on the opening fence.
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// logDiscarded reports properties removed from a model answer.
func logDiscarded(tier Tier, discarded []string) {
	if len(discarded) == 0 {
		return
	}
	log.Printf("ai.Client: %s tier returned properties outside the schema, discarded: %s", tier, strings.Join(discarded, ", "))
}
