package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xuri/excelize/v2"

	"freightdesk/internal/domain"
	"freightdesk/internal/reference"
)

const batchSize = 200

const (
	vehicleSheet = "Vehicles"
	portSheet    = "Ports"
)

// header maps folded column titles to their index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, title := range row {
		h[reference.Fold(title)] = i
	}
	return h
}

// get returns the first non-missing column among names.
func (h header) get(row []string, names ...string) string {
	for _, n := range names {
		if i, ok := h[n]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

// readWorkbook reads the Vehicles and Ports sheets. The first row of each
// sheet is the header; column order is free.
func readWorkbook(f *excelize.File) (*reference.Seed, error) {
	seed := &reference.Seed{}

	rows, err := f.GetRows(vehicleSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", vehicleSheet, err)
	}
	if len(rows) > 0 {
		h := newHeader(rows[0])
		for i, row := range rows[1:] {
			v, ok, err := vehicleRow(h, row)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", vehicleSheet, i+2, err)
			}
			if ok {
				seed.Vehicles = append(seed.Vehicles, v)
			}
		}
	}

	rows, err = f.GetRows(portSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", portSheet, err)
	}
	if len(rows) > 0 {
		h := newHeader(rows[0])
		for _, row := range rows[1:] {
			id := strings.ToUpper(h.get(row, "id", "locode", "un locode"))
			if id == "" {
				continue
			}
			seed.Ports = append(seed.Ports, domain.PortReferenceEntry{
				ID:      id,
				Name:    h.get(row, "name", "port"),
				Country: strings.ToUpper(h.get(row, "country")),
				Aliases: splitAliases(h.get(row, "aliases", "alias")),
			})
		}
	}

	sort.Slice(seed.Vehicles, func(i, j int) bool { return seed.Vehicles[i].ID < seed.Vehicles[j].ID })
	sort.Slice(seed.Ports, func(i, j int) bool { return seed.Ports[i].ID < seed.Ports[j].ID })
	return seed, nil
}

func vehicleRow(h header, row []string) (domain.VehicleReferenceEntry, bool, error) {
	brand := h.get(row, "brand", "merk", "make")
	model := h.get(row, "model", "type")
	if model == "" {
		return domain.VehicleReferenceEntry{}, false, nil
	}
	id := h.get(row, "id")
	if id == "" {
		id = strings.ReplaceAll(reference.Fold(brand+" "+model), " ", "-")
	}
	v := domain.VehicleReferenceEntry{
		ID:      id,
		Brand:   brand,
		Model:   model,
		Aliases: splitAliases(h.get(row, "aliases", "alias")),
	}
	var err error
	if v.LengthM, err = number(h.get(row, "length m", "length", "lengte")); err != nil {
		return v, false, fmt.Errorf("length: %w", err)
	}
	if v.WidthM, err = number(h.get(row, "width m", "width", "breedte")); err != nil {
		return v, false, fmt.Errorf("width: %w", err)
	}
	if v.HeightM, err = number(h.get(row, "height m", "height", "hoogte")); err != nil {
		return v, false, fmt.Errorf("height: %w", err)
	}
	if v.WeightKg, err = number(h.get(row, "weight kg", "weight", "gewicht")); err != nil {
		return v, false, fmt.Errorf("weight: %w", err)
	}
	return v, true, nil
}

// number parses a cell that may use a decimal comma. Empty cells are zero.
func number(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func splitAliases(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ";") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func writeYAML(w io.Writer, seed *reference.Seed) error {
	b, err := yaml.Marshal(seed)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func writeSQL(w io.Writer, seed *reference.Seed) error {
	p := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format+"\n", args...)
		return err
	}
	if err := p("-- Reference seed data generated from Excel.\n-- %d vehicles, %d ports.\nBEGIN;\n", len(seed.Vehicles), len(seed.Ports)); err != nil {
		return err
	}

	for i := 0; i < len(seed.Vehicles); i += batchSize {
		batch := seed.Vehicles[i:min(i+batchSize, len(seed.Vehicles))]
		values := make([]string, len(batch))
		for j, v := range batch {
			values[j] = fmt.Sprintf("(%s, %s, %s, %s, %s, %s, %s)",
				quote(v.ID), quote(v.Brand), quote(v.Model),
				num(v.LengthM), num(v.WidthM), num(v.HeightM), num(v.WeightKg))
		}
		if err := p("INSERT INTO vehicle_references (id, brand, model, length_m, width_m, height_m, weight_kg) VALUES\n%s\nON CONFLICT (id) DO UPDATE SET brand = EXCLUDED.brand, model = EXCLUDED.model, length_m = EXCLUDED.length_m, width_m = EXCLUDED.width_m, height_m = EXCLUDED.height_m, weight_kg = EXCLUDED.weight_kg;\n",
			strings.Join(values, ",\n")); err != nil {
			return err
		}
	}
	var aliases []string
	for _, v := range seed.Vehicles {
		for _, a := range v.Aliases {
			aliases = append(aliases, fmt.Sprintf("(%s, %s)", quote(v.ID), quote(a)))
		}
	}
	if err := writeAliases(p, "vehicle_aliases", aliases); err != nil {
		return err
	}

	if len(seed.Ports) > 0 {
		values := make([]string, len(seed.Ports))
		aliases = aliases[:0]
		for j, port := range seed.Ports {
			values[j] = fmt.Sprintf("(%s, %s, %s)", quote(port.ID), quote(port.Name), quote(port.Country))
			for _, a := range port.Aliases {
				aliases = append(aliases, fmt.Sprintf("(%s, %s)", quote(port.ID), quote(a)))
			}
		}
		if err := p("INSERT INTO port_references (id, name, country) VALUES\n%s\nON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, country = EXCLUDED.country;\n",
			strings.Join(values, ",\n")); err != nil {
			return err
		}
		if err := writeAliases(p, "port_aliases", aliases); err != nil {
			return err
		}
	}
	return p("COMMIT;")
}

func writeAliases(p func(string, ...any) error, table string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	return p("INSERT INTO %s (ref_id, alias) VALUES\n%s\nON CONFLICT DO NOTHING;\n", table, strings.Join(values, ",\n"))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
