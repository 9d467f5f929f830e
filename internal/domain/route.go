package domain

import (
	"fmt"
	"math"
	"slices"
)

// Represents a single stop in a delivery route.
// A RouteStop corresponds to arriving at a location index at a simulated time
// and delivering every package addressed there.
type RouteStop struct {
	Location   int
	ArriveAt   TimeOfDay
	PackageIDs []int
}

// Represents the simulated timeline for a single truck's stored route.
type RoutePlan struct {
	TruckID    int
	DepartAt   TimeOfDay
	Stops      []RouteStop
	TotalMiles float64
	FinishAt   TimeOfDay
}

// TruckState is the persisted part of a Truck after dispatch.
type TruckState struct {
	TruckID      int       `json:"truck_id"`
	DepartAt     TimeOfDay `json:"depart_at"`
	PackageIDs   []int     `json:"package_ids"`
	Route        []int     `json:"route"`
	BestDistance float64   `json:"best_distance"`
}

// PackageState is the persisted part of a Package after dispatch.
type PackageState struct {
	PackageID    int       `json:"package_id"`
	TruckID      int       `json:"truck_id"`
	DispatchedAt TimeOfDay `json:"dispatched_at"`
	DeliveredAt  TimeOfDay `json:"delivered_at"`
}

// PlanSnapshot captures a finished dispatch so it can be restored without
// rerunning the optimizer.
type PlanSnapshot struct {
	Fingerprint string         `json:"fingerprint"`
	Trucks      []TruckState   `json:"trucks"`
	Packages    []PackageState `json:"packages"`
}

// TakeSnapshot records fleet and package state.
func TakeSnapshot(fingerprint string, fleet *Fleet, packages *PackageIndex) PlanSnapshot {
	s := PlanSnapshot{Fingerprint: fingerprint}
	for _, t := range fleet.Trucks() {
		best := t.BestDistance
		if math.IsInf(best, 1) {
			best = -1
		}
		s.Trucks = append(s.Trucks, TruckState{
			TruckID:      t.TruckID,
			DepartAt:     t.DepartAt,
			PackageIDs:   slices.Clone(t.PackageIDs),
			Route:        slices.Clone(t.Route),
			BestDistance: best,
		})
	}
	for _, p := range packages.All() {
		s.Packages = append(s.Packages, PackageState{
			PackageID:    p.PackageID,
			TruckID:      p.TruckID,
			DispatchedAt: p.DispatchedAt,
			DeliveredAt:  p.DeliveredAt,
		})
	}
	return s
}

// Apply writes the snapshot back onto fleet and packages.
func (s PlanSnapshot) Apply(fleet *Fleet, packages *PackageIndex) error {
	if len(s.Trucks) != fleet.Len() {
		return fmt.Errorf("apply snapshot: %d trucks, fleet has %d", len(s.Trucks), fleet.Len())
	}

	for _, ts := range s.Trucks {
		t, err := fleet.Truck(ts.TruckID)
		if err != nil {
			return fmt.Errorf("apply snapshot: %w", err)
		}
		if len(ts.PackageIDs) > t.Capacity {
			return fmt.Errorf("apply snapshot: truck %d: %w", t.TruckID, ErrCapacityExceeded)
		}
		t.DepartAt = ts.DepartAt
		t.PackageIDs = slices.Clone(ts.PackageIDs)
		t.Route = slices.Clone(ts.Route)
		t.BestDistance = ts.BestDistance
		if ts.BestDistance < 0 {
			t.BestDistance = math.Inf(1)
		}
	}

	for _, ps := range s.Packages {
		p, err := packages.Lookup(ps.PackageID)
		if err != nil {
			return fmt.Errorf("apply snapshot: %w", err)
		}
		p.TruckID = ps.TruckID
		p.DispatchedAt = ps.DispatchedAt
		p.DeliveredAt = ps.DeliveredAt
	}

	return nil
}
