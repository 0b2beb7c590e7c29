package reference

import (
	"sort"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"freightdesk/internal/domain"
)

// Domain selects which reference table a lookup searches.
type Domain string

const (
	DomainVehicle Domain = "vehicle"
	DomainPort    Domain = "port"
)

const (
	resolveConfidence = 0.95
	scanConfidence    = 0.9
	// shorter aliases are only matched exactly, never found inside text
	minScanAlias = 3
)

// Match is a resolved reference entry.
type Match struct {
	Domain     Domain
	ID         string
	Alias      string
	Confidence float64
}

type alias struct {
	folded string
	id     string
}

// tables is one immutable snapshot of the reference data.
type tables struct {
	vehicles map[string]domain.VehicleReferenceEntry
	ports    map[string]domain.PortReferenceEntry
	exact    map[Domain]map[string]string
	// ordered by alias length descending, then id ascending
	aliases map[Domain][]alias
}

// Lookup resolves free-text mentions against the vehicle and port reference
// data. Readers never lock; Replace swaps in a complete new snapshot.
type Lookup struct {
	current atomic.Pointer[tables]
}

// New builds a Lookup from entries.
func New(vehicles []domain.VehicleReferenceEntry, ports []domain.PortReferenceEntry) *Lookup {
	l := &Lookup{}
	l.Replace(vehicles, ports)
	return l
}

// Replace atomically swaps the reference data. Concurrent readers see either
// the old or the new snapshot, never a mix.
func (l *Lookup) Replace(vehicles []domain.VehicleReferenceEntry, ports []domain.PortReferenceEntry) {
	l.current.Store(buildTables(vehicles, ports))
}

// Size returns the number of vehicle and port entries in the current snapshot.
func (l *Lookup) Size() (vehicles, ports int) {
	t := l.current.Load()
	return len(t.vehicles), len(t.ports)
}

// Resolve matches span exactly (after folding) against one alias.
func (l *Lookup) Resolve(span string, d Domain) (Match, bool) {
	t := l.current.Load()
	folded := Fold(span)
	if folded == "" {
		return Match{}, false
	}
	id, ok := t.exact[d][folded]
	if !ok {
		return Match{}, false
	}
	return Match{Domain: d, ID: id, Alias: folded, Confidence: resolveConfidence}, true
}

// Scan finds the longest alias contained in text on token boundaries. Ties
// between aliases of equal length go to the smaller id. Aliases without a
// letter or shorter than three characters ("320", "H2") are skipped since
// they collide with quantities.
func (l *Lookup) Scan(text string, d Domain) (Match, bool) {
	t := l.current.Load()
	folded := Fold(text)
	if folded == "" {
		return Match{}, false
	}
	padded := " " + folded + " "
	for _, a := range t.aliases[d] {
		if strings.Contains(padded, " "+a.folded+" ") {
			return Match{Domain: d, ID: a.id, Alias: a.folded, Confidence: scanConfidence}, true
		}
	}
	return Match{}, false
}

// Vehicle returns the vehicle entry with id.
func (l *Lookup) Vehicle(id string) (domain.VehicleReferenceEntry, bool) {
	v, ok := l.current.Load().vehicles[id]
	return v, ok
}

// Port returns the port entry with id.
func (l *Lookup) Port(id string) (domain.PortReferenceEntry, bool) {
	p, ok := l.current.Load().ports[id]
	return p, ok
}

func buildTables(vehicles []domain.VehicleReferenceEntry, ports []domain.PortReferenceEntry) *tables {
	t := &tables{
		vehicles: make(map[string]domain.VehicleReferenceEntry, len(vehicles)),
		ports:    make(map[string]domain.PortReferenceEntry, len(ports)),
		exact:    map[Domain]map[string]string{DomainVehicle: {}, DomainPort: {}},
		aliases:  map[Domain][]alias{},
	}
	for idx := range vehicles {
		v := vehicles[idx]
		if v.ID == "" {
			continue
		}
		t.vehicles[v.ID] = v
		names := append([]string{v.Model, v.Brand + " " + v.Model}, v.Aliases...)
		t.add(DomainVehicle, v.ID, names)
	}
	for idx := range ports {
		p := ports[idx]
		if p.ID == "" {
			continue
		}
		t.ports[p.ID] = p
		names := append([]string{p.ID, p.Name}, p.Aliases...)
		t.add(DomainPort, p.ID, names)
	}
	for d := range t.aliases {
		list := t.aliases[d]
		sort.Slice(list, func(i, j int) bool {
			if len(list[i].folded) != len(list[j].folded) {
				return len(list[i].folded) > len(list[j].folded)
			}
			if list[i].id != list[j].id {
				return list[i].id < list[j].id
			}
			return list[i].folded < list[j].folded
		})
	}
	return t
}

func (t *tables) add(d Domain, id string, names []string) {
	for _, n := range names {
		f := Fold(n)
		if f == "" {
			continue
		}
		if prev, ok := t.exact[d][f]; !ok || id < prev {
			t.exact[d][f] = id
		}
		if scannable(f) {
			t.aliases[d] = append(t.aliases[d], alias{folded: f, id: id})
		}
	}
}

func scannable(folded string) bool {
	return utf8.RuneCountInString(folded) >= minScanAlias && strings.IndexFunc(folded, unicode.IsLetter) >= 0
}
