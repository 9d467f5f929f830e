package domain

import (
	"math"
	"testing"
)

// testNetwork is a depot plus three stops with the upper triangle empty:
//
//	    0    1    2    3
//	0   0
//	1   3    0
//	2   6   4.5   0
//	3   9    6    3    0
func testNetwork(t *testing.T) *RoadNetwork {
	t.Helper()

	locs, err := NewLocationTable([]Location{
		{Name: "Hub", Address: Address{Street: "4001 South 700 East", Zip: "84107"}},
		{Name: "A", Address: Address{Street: "195 W Oakland Ave", Zip: "84115"}},
		{Name: "B", Address: Address{Street: "2530 S 500 E", Zip: "84106"}},
		{Name: "C", Address: Address{Street: "233 Canyon Rd", Zip: "84103"}},
	})
	if err != nil {
		t.Fatalf("location table: %v", err)
	}

	dm, err := NewDistanceMatrix([][]float64{
		{0},
		{3, 0},
		{6, 4.5, 0},
		{9, 6, 3, 0},
	})
	if err != nil {
		t.Fatalf("distance matrix: %v", err)
	}

	net, err := NewRoadNetwork(locs, dm)
	if err != nil {
		t.Fatalf("road network: %v", err)
	}
	return net
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
