package domain

import (
	"errors"
	"math"
	"testing"
)

func TestTruckLoadRespectsCapacity(t *testing.T) {
	truck := NewTruck(1, "Ada", Clock(8, 0))
	truck.Capacity = 2

	if err := truck.LoadMultiple([]int{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := truck.Load(3)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("load over capacity: err = %v, want ErrCapacityExceeded", err)
	}
	if len(truck.PackageIDs) != 2 {
		t.Fatalf("len(PackageIDs) = %d, want 2", len(truck.PackageIDs))
	}

	if !truck.Unload(1) || truck.Has(1) {
		t.Fatalf("package 1 should have been unloaded")
	}
	if truck.Unload(1) {
		t.Fatalf("unloading an absent package should report false")
	}
}

func TestTruckUpdateRouteOnlyOnImprovement(t *testing.T) {
	truck := NewTruck(2, "Bo", Clock(9, 5))

	if !math.IsInf(truck.BestDistance, 1) {
		t.Fatalf("new truck BestDistance = %v, want +Inf", truck.BestDistance)
	}
	if !truck.UpdateRoute([]int{0, 1, 2}, 10) {
		t.Fatalf("first route should be accepted")
	}
	if truck.UpdateRoute([]int{0, 2, 1}, 10) {
		t.Fatalf("equal distance should be rejected")
	}
	if truck.UpdateRoute([]int{0, 2, 1}, 12) {
		t.Fatalf("worse distance should be rejected")
	}
	if got := truck.Route; len(got) != 3 || got[1] != 1 {
		t.Fatalf("route = %v, want [0 1 2]", got)
	}
	if !truck.UpdateRoute([]int{0, 2, 1}, 9.5) {
		t.Fatalf("better route should be accepted")
	}
	if truck.BestDistance != 9.5 {
		t.Fatalf("BestDistance = %v, want 9.5", truck.BestDistance)
	}
}

func TestTruckExecuteRoute(t *testing.T) {
	net := testNetwork(t)

	truck := NewTruck(1, "Ada", Clock(8, 0))
	truck.Route = []int{0, 1, 2}

	tests := []struct {
		name     string
		at       TimeOfDay
		location int
		miles    float64
	}{
		{"before departure", Clock(7, 59), 0, 0},
		{"at departure", Clock(8, 0), 0, 0},
		{"mid first leg", Clock(8, 5), 0, 1.5},
		{"arrived first stop", Clock(8, 10).Add(1), 1, 3},
		{"mid second leg", Clock(8, 20), 1, 6},
		{"route complete", Clock(8, 25).Add(1), 2, 7.5},
		{"long after", Clock(16, 0), 2, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, miles := truck.ExecuteRoute(tt.at, net.Distances)
			if loc != tt.location {
				t.Errorf("location = %d, want %d", loc, tt.location)
			}
			if !approx(miles, tt.miles) {
				t.Errorf("miles = %v, want %v", miles, tt.miles)
			}
		})
	}
}

func TestTruckExecuteRouteIsMonotonic(t *testing.T) {
	net := testNetwork(t)

	truck := NewTruck(1, "Ada", Clock(8, 0))
	truck.Route = []int{0, 3, 1, 2, 0}
	total := net.Distances.RouteMiles(truck.Route)

	prev := -1.0
	for at := Clock(7, 30); at <= Clock(11, 0); at = at.Add(37_000_000_000) {
		_, miles := truck.ExecuteRoute(at, net.Distances)
		if miles < prev {
			t.Fatalf("miles decreased at %s: %v < %v", at, miles, prev)
		}
		prev = miles
	}

	finish := truck.FinishAt(net.Distances)
	loc, miles := truck.ExecuteRoute(finish.Add(1), net.Distances)
	if loc != Depot || !approx(miles, total) {
		t.Fatalf("after finish: (%d, %v), want (0, %v)", loc, miles, total)
	}
}

func TestNewFleetHandOffOrder(t *testing.T) {
	build := func(from, to int) error {
		trucks := []*Truck{
			NewTruck(1, "Driver 1", Clock(8, 0)),
			NewTruck(2, "Driver 2", Clock(9, 5)),
			NewTruck(3, "Driver 1", Clock(10, 20)),
		}
		trucks[from-1].ReturnsToDepot = true
		trucks[from-1].HandsOffTo = to
		_, err := NewFleet(trucks...)
		return err
	}

	if err := build(1, 3); err != nil {
		t.Fatalf("1->3: %v", err)
	}
	if err := build(3, 1); err == nil {
		t.Fatal("3->1: expected error")
	}
	if err := build(2, 2); err == nil {
		t.Fatal("2->2: expected error")
	}
}
