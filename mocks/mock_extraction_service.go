package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"freightdesk/internal/domain"
	"freightdesk/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Submit(ctx context.Context, input service.SubmitInput) (*service.Outcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome), args.Error(1)
}

func (m *MockExtractionService) Extract(ctx context.Context, doc *domain.Document, rc domain.RequestContext) (*service.Outcome, error) {
	args := m.Called(ctx, doc, rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome), args.Error(1)
}

func (m *MockExtractionService) Retry(ctx context.Context, docID uuid.UUID) (*service.Outcome, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome), args.Error(1)
}

func (m *MockExtractionService) Get(ctx context.Context, docID uuid.UUID) (*service.ExtractionView, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractionView), args.Error(1)
}

func (m *MockExtractionService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StoredPayload), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) ProcessQueued(ctx context.Context, doc *domain.Document, maxAttempts int) {
	m.Called(ctx, doc, maxAttempts)
}
