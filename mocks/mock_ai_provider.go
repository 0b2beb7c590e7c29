package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightdesk/internal/port"
)

// MockAIProvider is a mock implementation of port.AIProvider.
type MockAIProvider struct {
	mock.Mock
}

func (m *MockAIProvider) Complete(ctx context.Context, req port.AIRequest) (*port.AIResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.AIResponse), args.Error(1)
}
