package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO documents (
		id, filename, mime_type, channel, storage_bucket, storage_key, size_bytes, page_count, text_content,
		preferred_company, override_company, default_country, locale,
		status, extraction_status, confidence, last_error, attempts, extracted_at,
		created_at, updated_at
	) VALUES (
		:id, :filename, :mime_type, :channel, :storage_bucket, :storage_key, :size_bytes, :page_count, :text_content,
		:preferred_company, :override_company, :default_country, :locale,
		:status, :extraction_status, :confidence, :last_error, :attempts, :extracted_at,
		:created_at, :updated_at
	)`, doc)
	if err != nil {
		if mapped := mapError(err, domain.ErrNotFound, domain.ErrDocumentExists); errors.Is(mapped, domain.ErrDocumentExists) {
			return mapped
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if mapped := mapError(err, domain.ErrNotFound, nil); errors.Is(mapped, domain.ErrNotFound) {
			return nil, mapped
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			status = $1, extraction_status = $2, confidence = $3,
			last_error = $4, attempts = $5, extracted_at = $6, updated_at = $7
		 WHERE id = $8`,
		doc.Status, doc.ExtractionStatus, doc.Confidence,
		doc.LastError, doc.Attempts, doc.ExtractedAt, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued moves up to limit queued documents to processing, oldest first.
// Rows locked by another worker are skipped.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE documents SET status = $1, attempts = attempts + 1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.DocumentStatusProcessing, time.Now().UTC(), domain.DocumentStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}
