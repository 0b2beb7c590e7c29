package port

import (
	"context"
	"encoding/json"
)

// AIRequest carries one structured-extraction call to a language-model
// provider. Content is optional binary input (image or PDF) for vision models.
type AIRequest struct {
	Model           string
	Instructions    string
	Text            string
	Content         []byte
	ContentType     string
	Schema          map[string]any
	MaxOutputTokens int
}

// AIResponse contains the raw JSON object returned by the provider.
type AIResponse struct {
	Raw   json.RawMessage
	Model string
}

// AIProvider abstracts a language-model vendor.
type AIProvider interface {
	Complete(ctx context.Context, req AIRequest) (*AIResponse, error)
}
