package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/ai"
	"freightdesk/internal/domain"
	"freightdesk/internal/port"
	"freightdesk/mocks"
)

func raw(s string) *port.AIResponse {
	return &port.AIResponse{Raw: json.RawMessage(s)}
}

func request(tier ai.Tier) ai.Request {
	return ai.Request{Tier: tier, Strategy: "ai_text:" + string(tier), Text: "Jungheinrich TFG435s van Rotterdam naar Lagos", Specs: domain.FieldSpecs()}
}

func fieldByKey(fields []domain.ExtractionField, key domain.FieldKey) (domain.ExtractionField, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return domain.ExtractionField{}, false
}

func TestExtract_DiscardsPropertiesOutsideSchema(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.MatchedBy(func(r port.AIRequest) bool {
		return r.Model == "haiku" && r.Text != "" && r.Schema != nil && r.Instructions != ""
	})).Return(raw("```json\n"+`{
		"fields": {"vehicle.model": "TFG435s", "route.origin": "Rotterdam", "contact.company": "Müller", "vehicle.colour": "yellow", "route.destination": null},
		"confidence": {"vehicle.model": 0.92, "contact.company": 0.8},
		"notes": "looks like a forklift"
	}`+"\n```"), nil)

	client := ai.NewClient([]ai.Binding{{Tier: ai.TierCheap, Name: "claude", Provider: cheap, Model: "haiku"}}, ai.Options{DefaultConfidence: 0.6})

	res, err := client.Extract(context.Background(), request(ai.TierCheap))
	require.NoError(t, err)

	assert.Equal(t, ai.TierCheap, res.Tier)
	assert.Equal(t, "haiku", res.Model)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"fields.vehicle.colour", "notes"}, res.Discarded)
	require.Len(t, res.Fields, 3)

	model, _ := fieldByKey(res.Fields, domain.FieldVehicleModel)
	assert.Equal(t, "TFG435s", model.Value.String)
	assert.InDelta(t, 0.92, model.Confidence, 1e-9)
	assert.Equal(t, domain.SourceAI, model.Source)
	assert.Equal(t, "ai_text:cheap", model.Strategy)

	origin, _ := fieldByKey(res.Fields, domain.FieldRouteOrigin)
	assert.InDelta(t, 0.6, origin.Confidence, 1e-9)

	company, _ := fieldByKey(res.Fields, domain.FieldContactCompany)
	assert.InDelta(t, 0.72, company.Confidence, 1e-9)

	_, ok := fieldByKey(res.Fields, domain.FieldRouteDestination)
	assert.False(t, ok)
	cheap.AssertExpectations(t)
}

func TestExtract_RetriesThenEscalates(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.Anything).Return(raw(`{"fields": {"vehicle.weight_kg": "heavy"}}`), nil)
	standard := new(mocks.MockAIProvider)
	standard.On("Complete", mock.Anything, mock.Anything).Return(&port.AIResponse{Raw: json.RawMessage(`{"fields": {"vehicle.weight_kg": 3500}}`), Model: "sonnet-2025"}, nil)

	client := ai.NewClient([]ai.Binding{
		{Tier: ai.TierCheap, Name: "openai", Provider: cheap, Model: "mini"},
		{Tier: ai.TierStandard, Name: "claude", Provider: standard, Model: "sonnet"},
	}, ai.Options{})

	res, err := client.Extract(context.Background(), request(ai.TierCheap))
	require.NoError(t, err)

	assert.Equal(t, ai.TierStandard, res.Tier)
	assert.Equal(t, "sonnet-2025", res.Model)
	assert.Equal(t, 3, res.Attempts)
	cheap.AssertNumberOfCalls(t, "Complete", 2)
	standard.AssertNumberOfCalls(t, "Complete", 1)
}

func TestExtract_AllTiersFailReturnsTypedError(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.Anything).Return(raw(`I could not find any fields.`), nil)

	client := ai.NewClient([]ai.Binding{{Tier: ai.TierCheap, Name: "gemini", Provider: cheap, Model: "flash"}}, ai.Options{})

	_, err := client.Extract(context.Background(), request(ai.TierCheap))

	var sv *ai.SchemaViolation
	require.True(t, errors.As(err, &sv))
	cheap.AssertNumberOfCalls(t, "Complete", 2)
}

func TestExtract_ProviderErrorPassesThrough(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.Anything).Return(nil, &ai.ProviderError{Provider: "openai", Status: 500, Message: "internal"})

	client := ai.NewClient([]ai.Binding{{Tier: ai.TierCheap, Name: "openai", Provider: cheap, Model: "mini"}}, ai.Options{})

	_, err := client.Extract(context.Background(), request(ai.TierCheap))

	var pe *ai.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 500, pe.Status)
}

func TestExtract_RateLimitOpensCircuit(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.Anything).Return(nil, ai.NewRateLimitError("openai", errors.New("429"), 30))
	standard := new(mocks.MockAIProvider)
	standard.On("Complete", mock.Anything, mock.Anything).Return(raw(`{"fields": {"route.origin": "Antwerp"}}`), nil)

	client := ai.NewClient([]ai.Binding{
		{Tier: ai.TierCheap, Name: "openai", Provider: cheap, Model: "mini"},
		{Tier: ai.TierStandard, Name: "claude", Provider: standard, Model: "sonnet"},
	}, ai.Options{})

	res, err := client.Extract(context.Background(), request(ai.TierCheap))
	require.NoError(t, err)
	assert.Equal(t, ai.TierStandard, res.Tier)
	cheap.AssertNumberOfCalls(t, "Complete", 1)

	_, err = client.Extract(context.Background(), request(ai.TierCheap))
	require.NoError(t, err)
	cheap.AssertNumberOfCalls(t, "Complete", 1)
	standard.AssertNumberOfCalls(t, "Complete", 2)
}

func TestExtract_AttemptTimeout(t *testing.T) {
	slow := new(mocks.MockAIProvider)
	slow.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	client := ai.NewClient([]ai.Binding{{Tier: ai.TierVision, Name: "claude", Provider: slow, Model: "sonnet", Timeout: 20 * time.Millisecond}}, ai.Options{})

	_, err := client.Extract(context.Background(), request(ai.TierVision))

	var to *ai.Timeout
	require.True(t, errors.As(err, &to))
	assert.Equal(t, ai.TierVision, to.Tier)
	slow.AssertNumberOfCalls(t, "Complete", 2)
}

func TestExtract_CallerCancellationAborts(t *testing.T) {
	cheap := new(mocks.MockAIProvider)
	cheap.On("Complete", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	standard := new(mocks.MockAIProvider)

	client := ai.NewClient([]ai.Binding{
		{Tier: ai.TierCheap, Name: "openai", Provider: cheap, Model: "mini"},
		{Tier: ai.TierStandard, Name: "claude", Provider: standard, Model: "sonnet"},
	}, ai.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Extract(ctx, request(ai.TierCheap))

	assert.ErrorIs(t, err, context.Canceled)
	cheap.AssertNumberOfCalls(t, "Complete", 1)
	standard.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestExtract_NoTierConfigured(t *testing.T) {
	client := ai.NewClient(nil, ai.Options{})

	_, err := client.Extract(context.Background(), request(ai.TierCheap))

	var pe *ai.ProviderError
	require.True(t, errors.As(err, &pe))
}

func TestHasTier(t *testing.T) {
	client := ai.NewClient([]ai.Binding{{Tier: ai.TierStandard, Name: "claude", Provider: new(mocks.MockAIProvider), Model: "sonnet"}}, ai.Options{})

	assert.True(t, client.HasTier(ai.TierCheap))
	assert.True(t, client.HasTier(ai.TierStandard))
	assert.False(t, client.HasTier(ai.TierVision))
}

func TestBuildSchema_ClosedAtEveryLevel(t *testing.T) {
	schema := ai.BuildSchema(domain.FieldSpecs())

	assert.Equal(t, false, schema["additionalProperties"])
	props := schema["properties"].(map[string]any)
	fields := props["fields"].(map[string]any)
	assert.Equal(t, false, fields["additionalProperties"])
	weight := fields["properties"].(map[string]any)[string(domain.FieldWeightKg)].(map[string]any)
	assert.Equal(t, []string{"number", "null"}, weight["type"])
}

func TestStatusError(t *testing.T) {
	err := ai.StatusError("claude", 429, []byte(`{"error":"slow down"}`), "12")
	var rl *ai.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 12*time.Second, rl.RetryAfter)

	var pe *ai.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 429, pe.Status)

	err = ai.StatusError("claude", 529, []byte("overloaded"), "")
	assert.False(t, errors.As(err, &rl))
	assert.Equal(t, 60*time.Second, ai.NewRateLimitError("x", nil, 0).RetryAfter)
}

func TestStatusError_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 499) + strings.Repeat("é", 50)

	err := ai.StatusError("gemini", 500, []byte(body), "")
	var pe *ai.ProviderError
	require.True(t, errors.As(err, &pe))

	assert.True(t, utf8.ValidString(pe.Message))
	assert.Equal(t, strings.Repeat("a", 499)+"...", pe.Message)

	err = ai.StatusError("gemini", 500, []byte("short body"), "")
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "short body", pe.Message)
}
