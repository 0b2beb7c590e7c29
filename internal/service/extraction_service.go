package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/mapper"
	"freightdesk/internal/normalize"
	"freightdesk/internal/port"
)

// SubmitInput is the DTO for a quote request submission. Either Content or
// Text must be set; both may be.
type SubmitInput struct {
	Filename       string
	ContentType    string
	Content        []byte
	Text           string
	Channel        domain.Channel
	RequestContext domain.RequestContext
	Async          bool
}

// Outcome is the result of one extraction run.
type Outcome struct {
	Document *domain.Document         `json:"document"`
	Result   *domain.ExtractionResult `json:"result,omitempty"`
	Payload  *domain.MappedPayload    `json:"payload,omitempty"`
	Dispatch []domain.DispatchResult  `json:"dispatch,omitempty"`
}

// ExtractionView is the stored state of a document.
type ExtractionView struct {
	Document  *domain.Document      `json:"document"`
	SourceURL string                `json:"source_url,omitempty"`
	Result    *domain.StoredResult  `json:"result,omitempty"`
	Payload   *domain.StoredPayload `json:"payload,omitempty"`
}

// sourceURLExpiry is the lifetime of presigned links to stored originals.
const sourceURLExpiry = 15 * 60

// Pipeline runs strategies over a raw document.
type Pipeline interface {
	Run(ctx context.Context, doc *domain.RawDocument) (*domain.ExtractionResult, error)
}

// Dispatcher delivers a mapped payload to downstream targets.
type Dispatcher interface {
	Dispatch(ctx context.Context, docID uuid.UUID, payload *domain.MappedPayload) []domain.DispatchResult
}

// ExtractionService defines the quote request extraction contract.
type ExtractionService interface {
	Submit(ctx context.Context, input SubmitInput) (*Outcome, error)
	Extract(ctx context.Context, doc *domain.Document, rc domain.RequestContext) (*Outcome, error)
	Retry(ctx context.Context, docID uuid.UUID) (*Outcome, error)
	Get(ctx context.Context, docID uuid.UUID) (*ExtractionView, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error)
	ProcessQueued(ctx context.Context, doc *domain.Document, maxAttempts int)
}

// ExtractionConfig holds service settings.
type ExtractionConfig struct {
	Bucket           string
	MaxDocumentBytes int64
	Defaults         domain.RequestContext
}

type extractionService struct {
	docRepo    port.DocumentRepository
	resultRepo port.ExtractionRepository
	storage    port.ObjectStorage
	pipeline   Pipeline
	normalizer *normalize.Normalizer
	mapper     *mapper.Mapper
	dispatcher Dispatcher
	cfg        ExtractionConfig
	inProgress sync.Map
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	docRepo port.DocumentRepository,
	resultRepo port.ExtractionRepository,
	storage port.ObjectStorage,
	pipeline Pipeline,
	normalizer *normalize.Normalizer,
	m *mapper.Mapper,
	dispatcher Dispatcher,
	cfg ExtractionConfig,
) ExtractionService {
	return &extractionService{
		docRepo:    docRepo,
		resultRepo: resultRepo,
		storage:    storage,
		pipeline:   pipeline,
		normalizer: normalizer,
		mapper:     m,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

func (s *extractionService) Submit(ctx context.Context, input SubmitInput) (*Outcome, error) {
	if len(input.Content) == 0 && strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyDocument
	}
	if s.cfg.MaxDocumentBytes > 0 && int64(len(input.Content)) > s.cfg.MaxDocumentBytes {
		return nil, domain.ErrFileTooLarge
	}

	doc := &domain.Document{
		ID:       uuid.New(),
		Filename: input.Filename,
		MIMEType: "text/plain",
		Status:   domain.DocumentStatusProcessing,
		Text:     input.Text,
	}
	if input.Async {
		doc.Status = domain.DocumentStatusQueued
	}

	if len(input.Content) > 0 {
		mimeType, err := detectMIME(input.Filename, input.ContentType, input.Content)
		if err != nil {
			return nil, err
		}
		doc.MIMEType = mimeType
		doc.SizeBytes = int64(len(input.Content))
		if doc.Text == "" {
			doc.Text = textLayer(mimeType, input.Content)
		}
		if mimeType == "application/pdf" {
			doc.PageCount = pdfPageCount(input.Content)
		}
	}

	channel, err := resolveChannel(input.Channel, doc.MIMEType)
	if err != nil {
		return nil, err
	}
	doc.Channel = channel

	rc := s.withDefaults(input.RequestContext)
	doc.PreferredCompany = rc.PreferredCompany
	doc.OverrideCompany = rc.OverrideCompany
	doc.DefaultCountry = rc.DefaultCountry
	doc.Locale = rc.Locale

	if len(input.Content) > 0 {
		doc.StorageBucket = s.cfg.Bucket
		doc.StorageKey = fmt.Sprintf("documents/%s/%s", doc.ID, storageName(input.Filename, doc.MIMEType))
		log.Printf("extractionService.Submit: uploading document %s (%s, %d bytes)", doc.ID, doc.MIMEType, doc.SizeBytes)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      doc.StorageBucket,
			Key:         doc.StorageKey,
			Body:        bytes.NewReader(input.Content),
			ContentType: doc.MIMEType,
			Size:        doc.SizeBytes,
		})
		if err != nil {
			log.Printf("extractionService.Submit: S3 upload failed for document %s: %v", doc.ID, err)
			return nil, domain.ErrUploadFailed
		}
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		if doc.StorageKey != "" {
			if delErr := s.storage.Delete(ctx, doc.StorageBucket, doc.StorageKey); delErr != nil {
				log.Printf("extractionService.Submit: failed to clean up S3 object %s: %v", doc.StorageKey, delErr)
			}
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}

	if input.Async {
		log.Printf("extractionService.Submit: document %s queued", doc.ID)
		return &Outcome{Document: doc}, nil
	}

	if _, loaded := s.inProgress.LoadOrStore(doc.ID, struct{}{}); loaded {
		return nil, domain.ErrExtractionInProgress
	}
	defer s.inProgress.Delete(doc.ID)

	doc.Attempts++
	return s.run(ctx, doc, s.rawDocument(doc, input.Content), rc)
}

// Extract runs extraction for a stored document. At most one extraction per
// document runs at a time.
func (s *extractionService) Extract(ctx context.Context, doc *domain.Document, rc domain.RequestContext) (*Outcome, error) {
	if _, loaded := s.inProgress.LoadOrStore(doc.ID, struct{}{}); loaded {
		return nil, domain.ErrExtractionInProgress
	}
	defer s.inProgress.Delete(doc.ID)

	var content []byte
	if doc.StorageKey != "" {
		var err error
		content, err = s.storage.Download(ctx, doc.StorageBucket, doc.StorageKey)
		if err != nil {
			s.fail(ctx, doc, fmt.Sprintf("downloading document: %v", err))
			return nil, fmt.Errorf("downloading document: %w", err)
		}
	}
	return s.run(ctx, doc, s.rawDocument(doc, content), s.withDefaults(rc))
}

func (s *extractionService) Retry(ctx context.Context, docID uuid.UUID) (*Outcome, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Attempts++
	doc.Status = domain.DocumentStatusProcessing
	return s.Extract(ctx, doc, doc.RequestContext())
}

func (s *extractionService) Get(ctx context.Context, docID uuid.UUID) (*ExtractionView, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	view := &ExtractionView{Document: doc}

	if doc.StorageKey != "" {
		url, err := s.storage.GetPresignedURL(ctx, doc.StorageBucket, doc.StorageKey, sourceURLExpiry)
		if err != nil {
			log.Printf("extractionService.Get: presigning %s: %v", doc.StorageKey, err)
		} else {
			view.SourceURL = url
		}
	}

	view.Result, err = s.resultRepo.LatestResult(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading result: %w", err)
	}
	view.Payload, err = s.resultRepo.GetPayload(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading payload: %w", err)
	}
	return view, nil
}

func (s *extractionService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

func (s *extractionService) ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error) {
	return s.resultRepo.ListPayloads(ctx, offset, limit)
}

// ProcessQueued extracts a document claimed by the queue worker. Failures
// caused by provider errors or timeouts are re-queued until maxAttempts.
func (s *extractionService) ProcessQueued(ctx context.Context, doc *domain.Document, maxAttempts int) {
	out, err := s.Extract(ctx, doc, doc.RequestContext())
	if err != nil {
		if errors.Is(err, domain.ErrExtractionInProgress) {
			log.Printf("extractionService.ProcessQueued: document %s already in progress", doc.ID)
		}
		return
	}
	if out.Result.Status != domain.ExtractionStatusFailed || !retryable(out.Result) || doc.Attempts >= maxAttempts {
		return
	}
	doc.Status = domain.DocumentStatusQueued
	if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
		log.Printf("extractionService.ProcessQueued: failed to re-queue document %s: %v", doc.ID, err)
		return
	}
	log.Printf("extractionService.ProcessQueued: document %s re-queued (attempt %d of %d)", doc.ID, doc.Attempts, maxAttempts)
}

// run executes pipeline, persistence and, unless extraction failed,
// normalization, mapping and dispatch.
func (s *extractionService) run(ctx context.Context, doc *domain.Document, raw *domain.RawDocument, rc domain.RequestContext) (*Outcome, error) {
	result, err := s.pipeline.Run(ctx, raw)
	if err != nil {
		s.fail(context.WithoutCancel(ctx), doc, fmt.Sprintf("extraction aborted: %v", err))
		return nil, err
	}
	if err := s.resultRepo.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("saving extraction result: %w", err)
	}

	now := time.Now().UTC()
	doc.ExtractionStatus = result.Status
	doc.Confidence = result.Confidence
	doc.ExtractedAt = &now
	out := &Outcome{Document: doc, Result: result}

	if result.Status == domain.ExtractionStatusFailed {
		doc.Status = domain.DocumentStatusFailed
		doc.LastError = summarizeErrors(result.Errors)
		if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
			log.Printf("extractionService.run: failed to update document %s: %v", doc.ID, err)
		}
		log.Printf("extractionService.run: document %s extraction failed: %s", doc.ID, doc.LastError)
		return out, nil
	}

	record := s.normalizer.Record(result, rc)
	out.Payload = s.mapper.Map(record)
	out.Dispatch = s.dispatcher.Dispatch(ctx, doc.ID, out.Payload)
	if err := s.resultRepo.SaveDispatchResults(ctx, doc.ID, out.Dispatch); err != nil {
		log.Printf("extractionService.run: failed to save dispatch results for %s: %v", doc.ID, err)
	}

	doc.Status = domain.DocumentStatusCompleted
	doc.LastError = ""
	if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}
	log.Printf("extractionService.run: document %s extracted (status=%s, confidence=%.2f)", doc.ID, result.Status, result.Confidence)
	return out, nil
}

func (s *extractionService) fail(ctx context.Context, doc *domain.Document, msg string) {
	doc.Status = domain.DocumentStatusFailed
	doc.LastError = msg
	if err := s.docRepo.UpdateStatus(ctx, doc); err != nil {
		log.Printf("extractionService.fail: failed to update document %s: %v", doc.ID, err)
	}
}

func (s *extractionService) rawDocument(doc *domain.Document, content []byte) *domain.RawDocument {
	return &domain.RawDocument{
		ID:       doc.ID,
		Content:  content,
		Text:     doc.Text,
		MIMEType: doc.MIMEType,
		Channel:  doc.Channel,
		Filename: doc.Filename,
	}
}

// withDefaults fills unset request settings from configuration.
func (s *extractionService) withDefaults(rc domain.RequestContext) domain.RequestContext {
	d := s.cfg.Defaults
	if rc.PreferredCompany == "" {
		rc.PreferredCompany = d.PreferredCompany
		rc.OverrideCompany = rc.OverrideCompany || d.OverrideCompany
	}
	if rc.DefaultCountry == "" {
		rc.DefaultCountry = d.DefaultCountry
	}
	if rc.Locale == "" {
		rc.Locale = d.Locale
	}
	rc.DefaultCountry = strings.ToUpper(rc.DefaultCountry)
	return rc
}

func resolveChannel(requested domain.Channel, mimeType string) (domain.Channel, error) {
	if requested != "" {
		if !domain.ValidChannels[requested] {
			return "", domain.ErrInvalidChannel
		}
		return requested, nil
	}
	if c, ok := domain.AllowedContentTypes[mimeType]; ok {
		return c, nil
	}
	return domain.ChannelText, nil
}

func storageName(filename, mimeType string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), "/", "_")
	if name != "" {
		return name
	}
	if ext := domain.ExtensionFor(mimeType); ext != "" {
		return "original." + ext
	}
	return "original"
}

// retryable reports whether a failed result was caused by transient
// provider trouble rather than the document itself.
func retryable(r *domain.ExtractionResult) bool {
	for _, e := range r.Errors {
		if e.Kind == domain.ErrorKindTimeout || e.Kind == domain.ErrorKindProviderError {
			return true
		}
	}
	return false
}

func summarizeErrors(errs []domain.ExtractionError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Strategy != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Strategy, e.Message))
		} else {
			parts = append(parts, e.Message)
		}
	}
	return strings.Join(parts, "; ")
}
