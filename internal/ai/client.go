package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"freightdesk/internal/config"
	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

// Tier abstracts provider and model selection.
type Tier string

const (
	TierCheap    Tier = "cheap"
	TierStandard Tier = "standard"
	TierVision   Tier = "vision"
)

// ladder is the escalation order.
var ladder = []Tier{TierCheap, TierStandard, TierVision}

// attemptsPerTier is one attempt plus one retry.
const attemptsPerTier = 2

// circuitState tracks rate-limit backoff for a single tier.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Binding assigns a provider and model to a tier.
type Binding struct {
	Tier     Tier
	Name     string
	Provider port.AIProvider
	Model    string
	Timeout  time.Duration
}

type boundTier struct {
	Binding
	circuit *circuitState
}

// Options tunes response handling.
type Options struct {
	DefaultConfidence float64
	MaxOutputTokens   int
}

// Request is one extraction call. Callers choose a tier, never a model.
type Request struct {
	Tier        Tier
	Strategy    string
	Text        string
	Content     []byte
	ContentType string
	Specs       []domain.FieldSpec
}

// Result is a schema-conformant answer converted to extraction fields.
type Result struct {
	Fields    []domain.ExtractionField
	Tier      Tier
	Model     string
	Attempts  int
	Discarded []string
}

// Client sends extraction requests to tiered providers with retry and
// escalation. It is safe for concurrent use.
type Client struct {
	tiers map[Tier]*boundTier
	opts  Options
	now   func() time.Time
}

// NewClient creates a Client from explicit tier bindings.
func NewClient(bindings []Binding, opts Options) *Client {
	if opts.DefaultConfidence <= 0 {
		opts.DefaultConfidence = 0.6
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 4096
	}
	tiers := make(map[Tier]*boundTier, len(bindings))
	for _, b := range bindings {
		if b.Timeout <= 0 {
			b.Timeout = 60 * time.Second
		}
		tiers[b.Tier] = &boundTier{Binding: b, circuit: &circuitState{}}
	}
	return &Client{tiers: tiers, opts: opts, now: time.Now}
}

// NewClientFromConfig builds providers for every configured tier through the
// provider registry.
func NewClientFromConfig(cfg *config.AIConfig) (*Client, error) {
	var bindings []Binding
	for _, tier := range ladder {
		tc := cfg.Tier(string(tier))
		if tc == nil {
			continue
		}
		p, err := NewProvider(tc)
		if err != nil {
			return nil, fmt.Errorf("creating %s tier provider: %w", tier, err)
		}
		bindings = append(bindings, Binding{
			Tier:     tier,
			Name:     tc.Provider,
			Provider: p,
			Model:    tc.Model,
			Timeout:  tc.Timeout(),
		})
		log.Printf("ai.NewClientFromConfig: %s tier -> %s/%s", tier, tc.Provider, tc.Model)
	}
	return NewClient(bindings, Options{
		DefaultConfidence: cfg.DefaultConfidence,
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}), nil
}

// HasTier reports whether tier or any higher tier is configured.
func (c *Client) HasTier(tier Tier) bool {
	return len(c.escalation(tier)) > 0
}

// Extract asks the requested tier for the fields in req.Specs. A failed
// attempt is retried once on the same tier, then the request escalates to the
// next higher configured tier. When every attempt fails the last typed error
// is returned (ProviderError, SchemaViolation, Timeout or RateLimitError).
// Caller cancellation aborts immediately with ctx.Err().
func (c *Client) Extract(ctx context.Context, req Request) (*Result, error) {
	tiers := c.escalation(req.Tier)
	if len(tiers) == 0 {
		return nil, &ProviderError{Provider: "none", Message: fmt.Sprintf("no provider configured for %s tier or above", req.Tier)}
	}
	contract, err := NewContract(req.Specs)
	if err != nil {
		return nil, fmt.Errorf("building response contract: %w", err)
	}
	instructions := BuildInstructions(req.Specs)

	var lastErr error
	attempts := 0
	for _, bt := range tiers {
		if resetAt, open := bt.circuit.isOpenWithReset(c.now()); open {
			log.Printf("ai.Client: skipping %s tier (circuit open until %s)", bt.Tier, resetAt.Format(time.RFC3339))
			lastErr = NewRateLimitError(bt.Name, fmt.Errorf("circuit open"), int(time.Until(resetAt).Seconds()))
			continue
		}

		for i := 0; i < attemptsPerTier; i++ {
			attempts++
			res, err := c.attempt(ctx, bt, contract, instructions, req)
			if err == nil {
				res.Attempts = attempts
				return res, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("ai.Client: %s tier attempt %d failed: %v", bt.Tier, i+1, err)
			lastErr = err

			var rlErr *RateLimitError
			if errors.As(err, &rlErr) {
				bt.circuit.open(c.now().Add(rlErr.RetryAfter))
				break
			}
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, bt *boundTier, contract *Contract, instructions string, req Request) (*Result, error) {
	actx, cancel := context.WithTimeout(ctx, bt.Timeout)
	defer cancel()

	resp, err := bt.Provider.Complete(actx, port.AIRequest{
		Model:           bt.Model,
		Instructions:    instructions,
		Text:            req.Text,
		Content:         req.Content,
		ContentType:     req.ContentType,
		Schema:          contract.Schema(),
		MaxOutputTokens: c.opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, c.classify(ctx, actx, bt, err)
	}
	if actx.Err() != nil {
		return nil, c.classify(ctx, actx, bt, actx.Err())
	}

	d, err := contract.Decode(resp.Raw)
	if err != nil {
		return nil, err
	}
	logDiscarded(bt.Tier, d.discarded)

	model := resp.Model
	if model == "" {
		model = bt.Model
	}
	return &Result{
		Fields:    contract.Fields(d, c.opts.DefaultConfidence, req.Strategy),
		Tier:      bt.Tier,
		Model:     model,
		Discarded: d.discarded,
	}, nil
}

// classify maps a provider failure onto the typed error taxonomy.
func (c *Client) classify(ctx, actx context.Context, bt *boundTier, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var ne net.Error
	if errors.Is(actx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return &Timeout{Tier: bt.Tier, After: bt.Timeout}
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr
	}
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr
	}
	var sv *SchemaViolation
	if errors.As(err, &sv) {
		return sv
	}
	return &ProviderError{Provider: bt.Name, Message: err.Error()}
}

// escalation returns the configured tiers from tier upwards.
func (c *Client) escalation(tier Tier) []*boundTier {
	var out []*boundTier
	started := false
	for _, t := range ladder {
		if t == tier {
			started = true
		}
		if !started {
			continue
		}
		if bt, ok := c.tiers[t]; ok {
			out = append(out, bt)
		}
	}
	return out
}
