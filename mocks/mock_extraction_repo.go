package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"freightdesk/internal/domain"
)

// MockExtractionRepo is a mock implementation of port.ExtractionRepository.
type MockExtractionRepo struct {
	mock.Mock
}

func (m *MockExtractionRepo) SaveResult(ctx context.Context, result *domain.ExtractionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockExtractionRepo) LatestResult(ctx context.Context, docID uuid.UUID) (*domain.StoredResult, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredResult), args.Error(1)
}

func (m *MockExtractionRepo) SavePayload(ctx context.Context, payload *domain.MappedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockExtractionRepo) GetPayload(ctx context.Context, docID uuid.UUID) (*domain.StoredPayload, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredPayload), args.Error(1)
}

func (m *MockExtractionRepo) ListPayloads(ctx context.Context, offset, limit int) ([]domain.StoredPayload, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StoredPayload), args.Int(1), args.Error(2)
}

func (m *MockExtractionRepo) SaveDispatchResults(ctx context.Context, docID uuid.UUID, results []domain.DispatchResult) error {
	args := m.Called(ctx, docID, results)
	return args.Error(0)
}
