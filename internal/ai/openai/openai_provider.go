package openai

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
	apiURL = "https://api.openai.com/v1/chat/completions"
	name   = "openai"
)

// Provider implements port.AIProvider using the OpenAI Chat Completions API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates an OpenAI provider from a tier config.
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
		model = "gpt-4o-mini"
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout() + 5*time.Second},
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

	reqBody := map[string]interface{}{
		"model":                 model,
		"max_completion_tokens": req.MaxOutputTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": req.Instructions,
			},
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   "freight_extraction",
				"schema": req.Schema,
				"strict": false,
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
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
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
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.ContentType, base64.StdEncoding.EncodeToString(req.Content))
		switch req.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "file",
				"file": map[string]interface{}{
					"filename":  "document.pdf",
					"file_data": dataURI,
				},
			})
		case "image/jpeg", "image/png", "image/webp":
			blocks = append(blocks, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": dataURI,
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

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.AIResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: fmt.Sprintf("unmarshaling response: %v", err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "empty response from API: no choices"}
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, &ai.ProviderError{Provider: name, Status: http.StatusOK, Message: "output truncated (finish_reason: length)"}
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.AIResponse{
		Raw:   json.RawMessage(resp.Choices[0].Message.Content),
		Model: model,
	}, nil
}
