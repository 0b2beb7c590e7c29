package claude

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
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	name       = "claude"
)

// Provider implements port.AIProvider using the Anthropic Messages API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates a Claude provider from a tier config.
func NewProvider(cfg *config.TierConfig) *Provider {
	return newProvider(cfg, apiURL)
}

// NewProviderWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewProviderWithEndpoint(cfg *config.TierConfig, endpoint string) *Provider {
	return newProvider(cfg, endpoint)
}

func newProvider(cfg *config.TierConfig, endpoint string) *Provider {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		// The caller bounds each attempt with a context deadline; this is a backstop.
		client: &http.Client{Timeout: cfg.Timeout() + 5*time.Second},
	}
}

func (p *Provider) Complete(ctx context.Context, req port.AIRequest) (*port.AIResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	contentBlocks, err := buildContentBlocks(req)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": req.MaxOutputTokens,
		"system":     req.Instructions + "\nJSON Schema:\n" + string(schemaJSON),
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
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
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ai.StatusError(name, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, model)
}

func buildContentBlocks(req port.AIRequest) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if len(req.Content) > 0 {
		encoded := base64.StdEncoding.EncodeToString(req.Content)
		switch req.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       encoded,
				},
			})
		case "image/jpeg", "image/png", "image/webp":
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": req.ContentType,
					"data":       encoded,
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", req.ContentType)
		}
	}

	text := req.Text
	if text == "" {
		text = "Extract the fields from the attached document."
	}
	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": text,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.AIResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: fmt.Sprintf("unmarshaling response: %v", err)}
	}

	if len(resp.Content) == 0 {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "empty response from API"}
	}

	if resp.StopReason == "max_tokens" {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "output truncated (stop_reason: max_tokens)"}
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.AIResponse{
		Raw:   json.RawMessage(resp.Content[0].Text),
		Model: model,
	}, nil
}
