package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"freightdesk/internal/domain"
	"freightdesk/internal/port"
)

type referenceRepo struct {
	db *sqlx.DB
}

// NewReferenceRepo creates a new PostgreSQL-backed ReferenceRepository.
func NewReferenceRepo(db *sqlx.DB) port.ReferenceRepository {
	return &referenceRepo{db: db}
}

type aliasRow struct {
	RefID string `db:"ref_id"`
	Alias string `db:"alias"`
}

func (r *referenceRepo) LoadVehicles(ctx context.Context) ([]domain.VehicleReferenceEntry, error) {
	var entries []domain.VehicleReferenceEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, brand, model, length_m, width_m, height_m, weight_kg
		 FROM vehicle_references ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("referenceRepo.LoadVehicles: %w", err)
	}
	aliases, err := r.aliases(ctx, "vehicle_aliases")
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Aliases = aliases[entries[i].ID]
	}
	return entries, nil
}

func (r *referenceRepo) LoadPorts(ctx context.Context) ([]domain.PortReferenceEntry, error) {
	var entries []domain.PortReferenceEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, name, country FROM port_references ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("referenceRepo.LoadPorts: %w", err)
	}
	aliases, err := r.aliases(ctx, "port_aliases")
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Aliases = aliases[entries[i].ID]
	}
	return entries, nil
}

// aliases loads an alias table grouped by reference id. table is one of the
// two fixed alias table names.
func (r *referenceRepo) aliases(ctx context.Context, table string) (map[string][]string, error) {
	var rows []aliasRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT ref_id, alias FROM "+table+" ORDER BY ref_id, alias")
	if err != nil {
		return nil, fmt.Errorf("referenceRepo.aliases %s: %w", table, err)
	}
	out := make(map[string][]string)
	for _, row := range rows {
		out[row.RefID] = append(out[row.RefID], row.Alias)
	}
	return out, nil
}
