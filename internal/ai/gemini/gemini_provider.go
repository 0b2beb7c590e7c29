package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"freightdesk/internal/ai"
	"freightdesk/internal/config"
	"freightdesk/internal/port"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	name       = "gemini"
)

// Provider implements port.AIProvider using Google's Gemini API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates a Gemini provider from a tier config.
func NewProvider(cfg *config.TierConfig) *Provider {
	return newProvider(cfg, "")
}

// NewProviderWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewProviderWithEndpoint(cfg *config.TierConfig, endpoint string) *Provider {
	return newProvider(cfg, endpoint)
}

func newProvider(cfg *config.TierConfig, endpoint string) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout() + 5*time.Second},
	}
}

// Complete sends one request. The endpoint is bound to the configured model,
// so req.Model is informational only.
func (p *Provider) Complete(ctx context.Context, req port.AIRequest) (*port.AIResponse, error) {
	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var parts []map[string]interface{}
	if len(req.Content) > 0 {
		mimeType, err := toGeminiMimeType(req.ContentType)
		if err != nil {
			return nil, err
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(req.Content),
			},
		})
	}
	if req.Text != "" {
		parts = append(parts, map[string]interface{}{"text": req.Text})
	}
	// Gemini's responseSchema does not accept union types, so the schema
	// travels in the instructions.
	parts = append(parts, map[string]interface{}{
		"text": req.Instructions + "\nJSON Schema:\n" + string(schemaJSON),
	})

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  req.MaxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ai.StatusError(name, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, p.model)
}

func toGeminiMimeType(contentType string) (string, error) {
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png", "image/webp":
		return contentType, nil
	default:
		return "", fmt.Errorf("unsupported content type for extraction: %s", contentType)
	}
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.AIResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: fmt.Sprintf("unmarshaling response: %v", err)}
	}

	if len(resp.Candidates) == 0 {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "empty response from API: no candidates"}
	}

	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "output truncated (finishReason: MAX_TOKENS)"}
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "empty response from API: no parts"}
	}

	return &port.AIResponse{
		Raw:   json.RawMessage(resp.Candidates[0].Content.Parts[0].Text),
		Model: model,
	}, nil
}
