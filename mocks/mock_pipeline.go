package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"freightdesk/internal/domain"
)

// MockPipeline is a mock implementation of service.Pipeline.
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Run(ctx context.Context, doc *domain.RawDocument) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

// MockDispatcher is a mock implementation of service.Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, docID uuid.UUID, payload *domain.MappedPayload) []domain.DispatchResult {
	args := m.Called(ctx, docID, payload)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.DispatchResult)
}
