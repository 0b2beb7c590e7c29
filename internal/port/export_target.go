package port

import (
	"context"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
)

// ExportRequest is the finalized payload handed to a downstream collaborator.
type ExportRequest struct {
	DocumentID uuid.UUID
	Payload    *domain.MappedPayload
}

// ExportTarget is a downstream collaborator receiving mapped payloads.
type ExportTarget interface {
	Name() string
	Export(ctx context.Context, req ExportRequest) error
}
