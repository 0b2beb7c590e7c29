package port

import (
	"context"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
)

// DocumentRepository defines the contract for submitted document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, doc *domain.Document) error
	// ClaimQueued atomically moves up to limit queued documents to processing.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
}

// ExtractionRepository persists extraction results and mapped payloads.
type ExtractionRepository interface {
	SaveResult(ctx context.Context, result *domain.ExtractionResult) error
	LatestResult(ctx context.Context, docID uuid.UUID) (*domain.StoredResult, error)
	SavePayload(ctx context.Context, payload *domain.MappedPayload) error
	GetPayload(ctx context.Context, docID uuid.UUID) (*domain.StoredPayload, error)
	ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error)
	SaveDispatchResults(ctx context.Context, docID uuid.UUID, results []domain.DispatchResult) error
}
