package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Depot is the location index of the hub.
const Depot = 0

// Location is one row of the location table.
type Location struct {
	Name    string
	Address Address
}

// LocationTable is the ordered list of unique stops; index 0 is the depot.
type LocationTable struct {
	locations []Location
	byKey     map[string]int
	byStreet  map[string]int
}

func NewLocationTable(locations []Location) (*LocationTable, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("new location table: depot row is required")
	}

	t := &LocationTable{
		locations: make([]Location, len(locations)),
		byKey:     make(map[string]int, len(locations)),
		byStreet:  make(map[string]int, len(locations)),
	}
	copy(t.locations, locations)

	ambiguous := make(map[string]struct{})
	for i, loc := range locations {
		key := loc.Address.Key()
		if prev, ok := t.byKey[key]; ok {
			return nil, fmt.Errorf("new location table: row %d duplicates row %d (%s)", i, prev, loc.Address)
		}
		t.byKey[key] = i

		street := normalizeStreet(loc.Address.Street)
		if _, ok := t.byStreet[street]; ok {
			ambiguous[street] = struct{}{}
			continue
		}
		t.byStreet[street] = i
	}
	// A street shared by two zips can only be resolved with the zip.
	for street := range ambiguous {
		delete(t.byStreet, street)
	}

	return t, nil
}

// Lookup maps an address to its location index, matching street and zip first
// and falling back to a unique street match.
func (t *LocationTable) Lookup(addr Address) (int, error) {
	if i, ok := t.byKey[addr.Key()]; ok {
		return i, nil
	}
	if i, ok := t.byStreet[normalizeStreet(addr.Street)]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("lookup %q: %w", addr.String(), ErrUnknownLocation)
}

func (t *LocationTable) At(i int) Location { return t.locations[i] }

func (t *LocationTable) Len() int { return len(t.locations) }

// DistanceMatrix holds road miles between location indices. Only one of
// [i][j] and [j][i] needs to be populated; empty cells are NaN.
type DistanceMatrix struct {
	m *mat.Dense
	n int
}

// NewDistanceMatrix builds a matrix from rows where math.NaN() marks an empty
// cell. Every pair must be populated in at least one direction.
func NewDistanceMatrix(rows [][]float64) (*DistanceMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("new distance matrix: no rows: %w", ErrInvalidMatrix)
	}

	m := mat.NewDense(n, n, nil)
	for i, row := range rows {
		if len(row) > n {
			return nil, fmt.Errorf("new distance matrix: row %d has %d cells, want at most %d: %w", i, len(row), n, ErrInvalidMatrix)
		}
		for j := 0; j < n; j++ {
			v := math.NaN()
			if j < len(row) {
				v = row[j]
			}
			if i == j && math.IsNaN(v) {
				v = 0
			}
			if v < 0 {
				return nil, fmt.Errorf("new distance matrix: negative miles at [%d][%d]: %w", i, j, ErrInvalidMatrix)
			}
			m.Set(i, j, v)
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			if math.IsNaN(m.At(i, j)) && math.IsNaN(m.At(j, i)) {
				return nil, fmt.Errorf("new distance matrix: no miles between %d and %d: %w", i, j, ErrInvalidMatrix)
			}
		}
	}

	return &DistanceMatrix{m: m, n: n}, nil
}

func (d *DistanceMatrix) Len() int { return d.n }

// Miles looks up [from][to], falling back to [to][from] when the forward
// cell is empty.
func (d *DistanceMatrix) Miles(from, to int) float64 {
	if v := d.m.At(from, to); !math.IsNaN(v) {
		return v
	}
	return d.m.At(to, from)
}

// RouteMiles sums the legs of route in order.
func (d *DistanceMatrix) RouteMiles(route []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(route); i++ {
		total += d.Miles(route[i], route[i+1])
	}
	return total
}

// RoadNetwork pairs the location table with its aligned distance matrix.
// Both are read-only after load.
type RoadNetwork struct {
	Locations *LocationTable
	Distances *DistanceMatrix
}

func NewRoadNetwork(locations *LocationTable, distances *DistanceMatrix) (*RoadNetwork, error) {
	if locations == nil || distances == nil {
		return nil, fmt.Errorf("new road network: locations and distances are required")
	}
	if locations.Len() != distances.Len() {
		return nil, fmt.Errorf(
			"new road network: %d locations but %dx%d distances: %w",
			locations.Len(), distances.Len(), distances.Len(), ErrInvalidMatrix,
		)
	}
	return &RoadNetwork{Locations: locations, Distances: distances}, nil
}

// StopOf resolves the location index a package is delivered to.
func (n *RoadNetwork) StopOf(p *Package) (int, error) {
	i, err := n.Locations.Lookup(p.DeliveryAddress())
	if err != nil {
		return 0, fmt.Errorf("package %d: %w", p.PackageID, err)
	}
	return i, nil
}
