package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/ai"
	"freightdesk/internal/ai/claude"
	"freightdesk/internal/ai/gemini"
	"freightdesk/internal/ai/openai"
	"freightdesk/internal/config"
	"freightdesk/internal/dispatch"
	"freightdesk/internal/domain"
	"freightdesk/internal/email/noop"
	"freightdesk/internal/email/ses"
	"freightdesk/internal/handler"
	"freightdesk/internal/mapper"
	"freightdesk/internal/normalize"
	"freightdesk/internal/pattern"
	"freightdesk/internal/pipeline"
	"freightdesk/internal/port"
	"freightdesk/internal/reference"
	"freightdesk/internal/repository/postgres"
	"freightdesk/internal/router"
	"freightdesk/internal/service"
	s3storage "freightdesk/internal/storage/s3"
	"freightdesk/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	ai.RegisterProvider("claude", func(cfg *config.TierConfig) (port.AIProvider, error) {
		return claude.NewProvider(cfg), nil
	})
	ai.RegisterProvider("openai", func(cfg *config.TierConfig) (port.AIProvider, error) {
		return openai.NewProvider(cfg), nil
	})
	ai.RegisterProvider("gemini", func(cfg *config.TierConfig) (port.AIProvider, error) {
		return gemini.NewProvider(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	extractionRepo := postgres.NewExtractionRepo(db)
	referenceRepo := postgres.NewReferenceRepo(db)

	// Reference data must be available before serving.
	var refSource reference.Source
	switch cfg.Reference.Source {
	case "yaml":
		refSource = reference.NewFileSource(cfg.Reference.SeedPath)
	default:
		refSource = reference.NewRepositorySource(referenceRepo)
	}
	lookup, err := reference.Load(ctx, refSource)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	// Initialize storage and email
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Extraction strategies
	registerProviders()
	aiClient, err := ai.NewClientFromConfig(&cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to initialize AI client: %w", err)
	}
	strategies := []strategy.Strategy{strategy.NewPattern(pattern.NewExtractor(lookup))}
	textTier := ai.Tier(cfg.AI.TextTier)
	if aiClient.HasTier(textTier) {
		strategies = append(strategies, strategy.NewAIText(aiClient, textTier))
	}
	if aiClient.HasTier(ai.TierVision) {
		strategies = append(strategies, strategy.NewAIVision(aiClient))
	}
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}
	log.Printf("server: extraction strategies: %s", strings.Join(names, ", "))

	pipe := pipeline.New(strategy.NewSelector(strategies...), pipeline.Config{
		SuccessThreshold: cfg.Pipeline.SuccessThreshold,
		StrategyBudget:   cfg.StrategyBudget(),
	})

	normalizer := normalize.New(lookup, normalize.Options{
		DefaultCountry:   cfg.Pipeline.DefaultCountry,
		PreferredCompany: cfg.Pipeline.PreferredCompany,
		CompanyOverride:  cfg.Pipeline.CompanyOverride,
		Locale:           cfg.Pipeline.Locale,
	})
	fieldMapper := mapper.New(mapper.DefaultTable(lookup))

	targets, err := dispatch.BuildTargets(&cfg.Dispatch, dispatch.Deps{
		Extractions: extractionRepo,
		Storage:     s3Client,
		Email:       emailSender,
	})
	if err != nil {
		return fmt.Errorf("failed to build dispatch targets: %w", err)
	}
	dispatcher := dispatch.NewDispatcher(targets, cfg.Dispatch.Timeout())
	log.Printf("server: dispatch targets: %s", strings.Join(dispatcher.Targets(), ", "))

	maxBytes := cfg.Pipeline.MaxDocumentSizeMB * 1024 * 1024
	extractionSvc := service.NewExtractionService(
		docRepo, extractionRepo, s3Client, pipe, normalizer, fieldMapper, dispatcher,
		service.ExtractionConfig{
			Bucket:           cfg.S3.Bucket,
			MaxDocumentBytes: maxBytes,
			Defaults: domain.RequestContext{
				PreferredCompany: cfg.Pipeline.PreferredCompany,
				OverrideCompany:  cfg.Pipeline.CompanyOverride,
				DefaultCountry:   cfg.Pipeline.DefaultCountry,
				Locale:           cfg.Pipeline.Locale,
			},
		},
	)

	// Background workers
	var wg sync.WaitGroup
	worker := service.NewExtractQueueWorker(docRepo, extractionSvc, service.ExtractQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
		Timeout:      time.Duration(cfg.Pipeline.ExtractTimeoutSecs) * time.Second,
	})
	refresher := reference.NewRefresher(lookup, refSource, time.Duration(cfg.Reference.RefreshIntervalSecs)*time.Second)
	wg.Add(2)
	go func() { defer wg.Done(); worker.Start(ctx) }()
	go func() { defer wg.Done(); refresher.Run(ctx) }()

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc, maxBytes)
	exportH := handler.NewExportHandler(extractionSvc, fieldMapper.Targets())
	healthH := handler.NewHealthHandler(db, lookup)

	r := router.Setup(router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		// Multipart overhead on top of the document itself.
		MaxBodyBytes: maxBytes + 1<<20,
	}, extractionH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Printf("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown error: %v", err)
	}
	wg.Wait()
	return nil
}
