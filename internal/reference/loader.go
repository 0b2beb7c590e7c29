package reference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-yaml"

	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

// Source supplies complete reference datasets.
type Source interface {
	Load(ctx context.Context) ([]domain.VehicleReferenceEntry, []domain.PortReferenceEntry, error)
}

// RepositorySource loads reference data from a ReferenceRepository.
type RepositorySource struct {
	repo port.ReferenceRepository
}

// NewRepositorySource creates a Source backed by repo.
func NewRepositorySource(repo port.ReferenceRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) Load(ctx context.Context) ([]domain.VehicleReferenceEntry, []domain.PortReferenceEntry, error) {
	vehicles, err := s.repo.LoadVehicles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading vehicles: %w", err)
	}
	ports, err := s.repo.LoadPorts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ports: %w", err)
	}
	return vehicles, ports, nil
}

var errEmptyDataset = errors.New("reference dataset is empty")

// Seed is the YAML layout of a reference seed file.
type Seed struct {
	Vehicles []domain.VehicleReferenceEntry `yaml:"vehicles"`
	Ports    []domain.PortReferenceEntry    `yaml:"ports"`
}

// FileSource loads reference data from a YAML seed file.
type FileSource struct {
	path string
}

// NewFileSource creates a Source reading path on every load.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) ([]domain.VehicleReferenceEntry, []domain.PortReferenceEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading seed file: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, nil, err
	}
	return seed.Vehicles, seed.Ports, nil
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed yaml: %w", err)
	}
	return &seed, nil
}

// Load builds a Lookup from src. Any failure is reported as
// domain.ErrReferenceUnavailable so startup can abort.
func Load(ctx context.Context, src Source) (*Lookup, error) {
	vehicles, ports, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReferenceUnavailable, err)
	}
	if len(vehicles) == 0 && len(ports) == 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrReferenceUnavailable, errEmptyDataset)
	}
	log.Printf("reference.Load: loaded %d vehicles, %d ports", len(vehicles), len(ports))
	return New(vehicles, ports), nil
}
