package reference

import (
	"context"
	"log"
	"time"
)

// Refresher periodically reloads reference data and swaps it into a Lookup.
// A failed reload keeps the previous snapshot.
type Refresher struct {
	lookup   *Lookup
	source   Source
	interval time.Duration
}

// NewRefresher creates a Refresher.
func NewRefresher(lookup *Lookup, source Source, interval time.Duration) *Refresher {
	return &Refresher{lookup: lookup, source: source, interval: interval}
}

// Run reloads on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		log.Printf("reference.Refresher: disabled")
		return
	}
	log.Printf("reference.Refresher: started (interval=%s)", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("reference.Refresher: shutting down")
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				log.Printf("reference.Refresher: refresh failed, keeping previous data: %v", err)
			}
		}
	}
}

// Refresh reloads once. Empty datasets are rejected.
func (r *Refresher) Refresh(ctx context.Context) error {
	vehicles, ports, err := r.source.Load(ctx)
	if err != nil {
		return err
	}
	if len(vehicles) == 0 && len(ports) == 0 {
		return errEmptyDataset
	}
	r.lookup.Replace(vehicles, ports)
	log.Printf("reference.Refresher: swapped in %d vehicles, %d ports", len(vehicles), len(ports))
	return nil
}
