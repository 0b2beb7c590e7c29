package service

import (
	"context"
	"log"
	"sync"
	"time"

	"freightdesk/internal/port"
)

// ExtractQueueConfig holds settings for the extraction queue worker.
type ExtractQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	Timeout      time.Duration
}

// ExtractQueueWorker polls for queued documents and extracts them with
// bounded concurrency.
type ExtractQueueWorker struct {
	docRepo port.DocumentRepository
	svc     ExtractionService
	cfg     ExtractQueueConfig
	wg      sync.WaitGroup
}

// NewExtractQueueWorker creates a new ExtractQueueWorker.
func NewExtractQueueWorker(docRepo port.DocumentRepository, svc ExtractionService, cfg ExtractQueueConfig) *ExtractQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &ExtractQueueWorker{docRepo: docRepo, svc: svc, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *ExtractQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("extractQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("extractQueueWorker: shutting down, waiting for in-flight extractions...")
			w.wg.Wait()
			log.Printf("extractQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.docRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("extractQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// Detached from the poll context so in-flight work
					// completes during shutdown.
					extractCtx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
					defer cancel()

					log.Printf("extractQueueWorker: extracting document %s (attempt %d)", doc.ID, doc.Attempts)
					w.svc.ProcessQueued(extractCtx, &doc, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
