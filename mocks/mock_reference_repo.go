package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightdesk/internal/domain"
)

// MockReferenceRepo is a mock implementation of port.ReferenceRepository.
type MockReferenceRepo struct {
	mock.Mock
}

func (m *MockReferenceRepo) LoadVehicles(ctx context.Context) ([]domain.VehicleReferenceEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleReferenceEntry), args.Error(1)
}

func (m *MockReferenceRepo) LoadPorts(ctx context.Context) ([]domain.PortReferenceEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PortReferenceEntry), args.Error(1)
}
