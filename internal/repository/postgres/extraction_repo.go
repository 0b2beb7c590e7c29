package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) SaveResult(ctx context.Context, result *domain.ExtractionResult) error {
	fields, err := json.Marshal(result.Fields)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveResult marshal fields: %w", err)
	}
	errs, err := json.Marshal(nonNil(result.Errors))
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveResult marshal errors: %w", err)
	}
	strategies, err := json.Marshal(nonNil(result.Strategies))
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveResult marshal strategies: %w", err)
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO extraction_results (id, document_id, status, confidence, fields, errors, strategies, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), result.DocumentID, result.Status, result.Confidence,
		fields, errs, strategies, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveResult: %w", err)
	}
	return nil
}

func (r *extractionRepo) LatestResult(ctx context.Context, docID uuid.UUID) (*domain.StoredResult, error) {
	var res domain.StoredResult
	err := r.db.GetContext(ctx, &res,
		`SELECT * FROM extraction_results WHERE document_id = $1
		 ORDER BY created_at DESC LIMIT 1`, docID)
	if err != nil {
		if mapped := mapError(err, domain.ErrNotFound, nil); errors.Is(mapped, domain.ErrNotFound) {
			return nil, mapped
		}
		return nil, fmt.Errorf("extractionRepo.LatestResult: %w", err)
	}
	return &res, nil
}

// SavePayload upserts the payload object for its document.
func (r *extractionRepo) SavePayload(ctx context.Context, payload *domain.MappedPayload) error {
	obj, err := json.Marshal(payload.Object())
	if err != nil {
		return fmt.Errorf("extractionRepo.SavePayload marshal payload: %w", err)
	}
	omitted, err := json.Marshal(nonNil(payload.Omitted))
	if err != nil {
		return fmt.Errorf("extractionRepo.SavePayload marshal omitted: %w", err)
	}
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO mapped_payloads (document_id, payload, omitted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (document_id) DO UPDATE SET
			payload = EXCLUDED.payload, omitted = EXCLUDED.omitted, updated_at = EXCLUDED.updated_at`,
		payload.DocumentID, obj, omitted, now)
	if err != nil {
		return fmt.Errorf("extractionRepo.SavePayload: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetPayload(ctx context.Context, docID uuid.UUID) (*domain.StoredPayload, error) {
	var p domain.StoredPayload
	err := r.db.GetContext(ctx, &p, "SELECT * FROM mapped_payloads WHERE document_id = $1", docID)
	if err != nil {
		if mapped := mapError(err, domain.ErrNotFound, nil); errors.Is(mapped, domain.ErrNotFound) {
			return nil, mapped
		}
		return nil, fmt.Errorf("extractionRepo.GetPayload: %w", err)
	}
	return &p, nil
}

func (r *extractionRepo) ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM mapped_payloads"); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.ListPayloads count: %w", err)
	}
	var payloads []domain.StoredPayload
	err := r.db.SelectContext(ctx, &payloads,
		`SELECT * FROM mapped_payloads ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.ListPayloads: %w", err)
	}
	return payloads, total, nil
}

// SaveDispatchResults records one row per target in a single transaction.
func (r *extractionRepo) SaveDispatchResults(ctx context.Context, docID uuid.UUID, results []domain.DispatchResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("extractionRepo.SaveDispatchResults begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for _, res := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO dispatch_results (id, document_id, target, status, error, duration_ms, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), docID, res.Target, res.Status, res.Error, res.Duration.Milliseconds(), now)
		if err != nil {
			return fmt.Errorf("extractionRepo.SaveDispatchResults: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("extractionRepo.SaveDispatchResults commit: %w", err)
	}
	return nil
}

// nonNil keeps empty slices from being stored as JSON null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
