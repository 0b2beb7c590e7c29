// Package dispatch delivers mapped payloads to downstream collaborators.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

// Dispatcher fans a payload out to every configured target. It carries no
// business logic.
type Dispatcher struct {
	targets []port.ExportTarget
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher. timeout bounds each target; zero means
// no bound beyond ctx.
func NewDispatcher(targets []port.ExportTarget, timeout time.Duration) *Dispatcher {
	return &Dispatcher{targets: targets, timeout: timeout}
}

// Targets returns the configured target names.
func (d *Dispatcher) Targets() []string {
	names := make([]string, len(d.targets))
	for i, t := range d.targets {
		names[i] = t.Name()
	}
	return names
}

// Dispatch delivers payload to all targets concurrently and returns one result
// per target, in target order. A failing target never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, docID uuid.UUID, payload *domain.MappedPayload) []domain.DispatchResult {
	results := make([]domain.DispatchResult, len(d.targets))
	req := port.ExportRequest{DocumentID: docID, Payload: payload}

	var wg sync.WaitGroup
	for i, t := range d.targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.deliver(ctx, t, req)
		}()
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, t port.ExportTarget, req port.ExportRequest) (res domain.DispatchResult) {
	start := time.Now()
	res.Target = t.Name()
	defer func() {
		if r := recover(); r != nil {
			res.Status = domain.DispatchStatusFailed
			res.Error = fmt.Sprintf("target panicked: %v", r)
		}
		res.Duration = time.Since(start)
		if res.Status == domain.DispatchStatusFailed {
			log.Printf("dispatch.Dispatcher: %s failed for document %s: %s", res.Target, req.DocumentID, res.Error)
		}
	}()

	tctx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := t.Export(tctx, req); err != nil {
		res.Status = domain.DispatchStatusFailed
		res.Error = err.Error()
		return res
	}
	res.Status = domain.DispatchStatusDelivered
	return res
}
