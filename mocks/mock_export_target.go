package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightdesk/internal/port"
)

// MockExportTarget is a mock implementation of port.ExportTarget.
type MockExportTarget struct {
	mock.Mock
	TargetName string
}

func (m *MockExportTarget) Name() string {
	return m.TargetName
}

func (m *MockExportTarget) Export(ctx context.Context, req port.ExportRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
