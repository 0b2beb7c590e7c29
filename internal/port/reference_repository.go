package port

import (
	"context"

	"freightdesk/internal/domain"
)

// ReferenceRepository loads the vehicle and port reference datasets.
type ReferenceRepository interface {
	LoadVehicles(ctx context.Context) ([]domain.VehicleReferenceEntry, error)
	LoadPorts(ctx context.Context) ([]domain.PortReferenceEntry, error)
}
