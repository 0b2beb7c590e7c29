package ai

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// ProviderError is a failed call to a model provider: a transport failure, a
// non-2xx status or an unusable response envelope.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Message)
}

// SchemaViolation means the model answered but the answer does not satisfy
// the requested JSON schema. It is never returned as data.
type SchemaViolation struct {
	Details string
}

func (e *SchemaViolation) Error() string {
	return "schema violation: " + e.Details
}

// Timeout means one attempt on a tier exceeded its per-attempt deadline.
type Timeout struct {
	Tier  Tier
	After time.Duration
}

func (e *Timeout) Error() string {
	return fmt.Sprintf("%s tier timed out after %s", e.Tier, e.After)
}

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// StatusError builds the error a provider returns for a non-200 response.
// 429 responses become a RateLimitError wrapping the ProviderError.
func StatusError(provider string, status int, body []byte, retryAfter string) error {
	base := &ProviderError{Provider: provider, Status: status, Message: truncate(string(body), 500)}
	if status == 429 {
		return NewRateLimitError(provider, base, ParseRetryAfterHeader(retryAfter))
	}
	return base
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
