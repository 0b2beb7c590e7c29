// Package pipeline runs the selected extraction strategies for one document
// and merges their candidates into a single ExtractionResult.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"freightdesk/internal/ai"
	"freightdesk/internal/domain"
	"freightdesk/internal/strategy"
)

// Config holds pipeline thresholds.
type Config struct {
	// SuccessThreshold is the minimum confidence every required field needs
	// for a success status.
	SuccessThreshold float64
	// StrategyBudget bounds each strategy. Zero means unbounded.
	StrategyBudget time.Duration
}

// Selector picks strategies for a document.
type Selector interface {
	Select(doc *domain.RawDocument) ([]strategy.Strategy, string)
}

// Pipeline orchestrates strategies and merges their output.
type Pipeline struct {
	selector Selector
	cfg      Config
	now      func() time.Time
}

// New creates a Pipeline.
func New(selector Selector, cfg Config) *Pipeline {
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 0.7
	}
	return &Pipeline{selector: selector, cfg: cfg, now: time.Now}
}

type outcome struct {
	name   string
	fields []domain.ExtractionField
	err    error
}

// Run extracts doc. Strategies run concurrently and the merge waits for all
// of them; a failing strategy only adds an entry to Errors. If ctx is
// cancelled Run returns ctx.Err() and no result.
func (p *Pipeline) Run(ctx context.Context, doc *domain.RawDocument) (*domain.ExtractionResult, error) {
	strategies, group := p.selector.Select(doc)

	result := &domain.ExtractionResult{
		DocumentID: doc.ID,
		Errors:     []domain.ExtractionError{},
		Strategies: []string{},
	}

	if len(strategies) == 0 {
		log.Printf("pipeline.Run: no strategy supports document %s (mime=%s, channel=%s)", doc.ID, doc.MIMEType, doc.Channel)
		result.Fields = Merge(nil)
		result.Status = domain.ExtractionStatusFailed
		result.Errors = append(result.Errors, domain.ExtractionError{
			Kind:    domain.ErrorKindNoStrategy,
			Message: fmt.Sprintf("no strategy supports %s documents", doc.MIMEType),
		})
		result.CreatedAt = p.now().UTC()
		return result, nil
	}

	outcomes := make([]outcome, len(strategies))
	// A plain Group: goroutines never return errors, so one failure cannot
	// cancel the others.
	var g errgroup.Group
	for i, s := range strategies {
		g.Go(func() error {
			fields, err := p.runOne(ctx, s, doc)
			outcomes[i] = outcome{name: s.Name(), fields: fields, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []domain.ExtractionField
	failed := 0
	for _, o := range outcomes {
		result.Strategies = append(result.Strategies, o.name)
		if o.err != nil {
			failed++
			log.Printf("pipeline.Run: strategy %s failed for document %s: %v", o.name, doc.ID, o.err)
			result.Errors = append(result.Errors, domain.ExtractionError{
				Strategy: o.name,
				Kind:     classify(o.err),
				Message:  o.err.Error(),
			})
			continue
		}
		candidates = append(candidates, o.fields...)
	}

	allFailed := failed == len(outcomes)
	result.Fields = Merge(candidates)
	result.Confidence = Confidence(result.Fields)
	result.Status = Status(result.Fields, p.cfg.SuccessThreshold, allFailed)

	if result.Status == domain.ExtractionStatusFailed {
		msg := "no required field was populated"
		if allFailed {
			msg = "every strategy failed"
		}
		result.Errors = append(result.Errors, domain.ExtractionError{Kind: domain.ErrorKindTotalFailure, Message: msg})
	}

	result.CreatedAt = p.now().UTC()
	log.Printf("pipeline.Run: document %s group=%s strategies=%v status=%s confidence=%.2f",
		doc.ID, group, result.Strategies, result.Status, result.Confidence)
	return result, nil
}

// runOne runs s within the strategy budget. A strategy that ignores its
// context is abandoned when the budget expires; its late result is dropped.
func (p *Pipeline) runOne(ctx context.Context, s strategy.Strategy, doc *domain.RawDocument) (fields []domain.ExtractionField, err error) {
	sctx := ctx
	if p.cfg.StrategyBudget > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, p.cfg.StrategyBudget)
		defer cancel()
	}

	type res struct {
		fields []domain.ExtractionField
		err    error
	}
	done := make(chan res, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- res{err: fmt.Errorf("strategy panicked: %v", r)}
			}
		}()
		f, e := s.Extract(sctx, doc)
		done <- res{fields: f, err: e}
	}()

	select {
	case r := <-done:
		return r.fields, r.err
	case <-sctx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("strategy exceeded budget of %s: %w", p.cfg.StrategyBudget, context.DeadlineExceeded)
	}
}

// classify maps a strategy error onto the recorded error kinds.
func classify(err error) domain.ErrorKind {
	var (
		sv *ai.SchemaViolation
		to *ai.Timeout
		pe *ai.ProviderError
		rl *ai.RateLimitError
	)
	switch {
	case errors.As(err, &sv):
		return domain.ErrorKindSchemaViolation
	case errors.As(err, &to), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindTimeout
	case errors.As(err, &pe), errors.As(err, &rl):
		return domain.ErrorKindProviderError
	default:
		return domain.ErrorKindStrategyFailure
	}
}
