package services

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// lineNetwork places n locations on a straight road two miles apart, with
// only the lower triangle of the matrix populated. Location 0 is the depot.
// At 18 mph each two-mile leg takes 6m40s.
func lineNetwork(t *testing.T, n int) *domain.RoadNetwork {
	t.Helper()

	locs := make([]domain.Location, n)
	rows := make([][]float64, n)
	for i := range n {
		locs[i] = domain.Location{Name: fmt.Sprintf("Stop %d", i), Address: stopAddress(i)}
		rows[i] = make([]float64, i+1)
		for j := 0; j <= i; j++ {
			rows[i][j] = 2 * float64(i-j)
		}
	}

	table, err := domain.NewLocationTable(locs)
	require.NoError(t, err)
	dm, err := domain.NewDistanceMatrix(rows)
	require.NoError(t, err)
	net, err := domain.NewRoadNetwork(table, dm)
	require.NoError(t, err)
	return net
}

func stopAddress(i int) domain.Address {
	return domain.Address{
		Street: fmt.Sprintf("%d Main St", 100*(i+1)),
		City:   "Salt Lake City",
		State:  "UT",
		Zip:    fmt.Sprintf("841%02d", i),
	}
}

func newPackage(t *testing.T, id, loc int, deadline domain.TimeOfDay, notes string) *domain.Package {
	t.Helper()

	p, err := domain.NewPackage(id, stopAddress(loc), deadline, 2, notes)
	require.NoError(t, err)
	return p
}

func newIndex(t *testing.T, pkgs ...*domain.Package) *domain.PackageIndex {
	t.Helper()

	idx := domain.NewPackageIndex()
	for _, p := range pkgs {
		require.NoError(t, idx.Insert(p))
	}
	return idx
}

// newFleet builds independent trucks numbered from 1 with the given departures.
func newFleet(t *testing.T, departures ...domain.TimeOfDay) *domain.Fleet {
	t.Helper()

	trucks := make([]*domain.Truck, len(departures))
	for i, d := range departures {
		trucks[i] = domain.NewTruck(i+1, fmt.Sprintf("Driver %d", i+1), d)
	}
	fleet, err := domain.NewFleet(trucks...)
	require.NoError(t, err)
	return fleet
}

func truckOf(t *testing.T, fleet *domain.Fleet, id int) *domain.Truck {
	t.Helper()

	tr, err := fleet.Truck(id)
	require.NoError(t, err)
	return tr
}
