package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

const (
	DefaultCapacity = 16
	DefaultSpeedMPH = 18.0
)

// Delivery truck aggregate holding package IDs and its best known route.
// Packages are owned by the PackageIndex; the truck only references IDs.
type Truck struct {
	TruckID  int
	Driver   string
	Capacity int
	SpeedMPH float64
	DepartAt TimeOfDay

	// ReturnsToDepot appends the depot to the end of the route.
	ReturnsToDepot bool
	// HandsOffTo is the truck whose departure waits for this truck's return (0 for none).
	HandsOffTo int

	PackageIDs []int
	Route      []int
	// BestDistance is the optimizer score of Route; +Inf until a route is accepted.
	BestDistance float64
}

func NewTruck(id int, driver string, departAt TimeOfDay) *Truck {
	return &Truck{
		TruckID:      id,
		Driver:       driver,
		Capacity:     DefaultCapacity,
		SpeedMPH:     DefaultSpeedMPH,
		DepartAt:     departAt,
		BestDistance: math.Inf(1),
	}
}

func (t *Truck) IsFull() bool { return len(t.PackageIDs) >= t.Capacity }

// Load a single package onto the truck.
func (t *Truck) Load(packageID int) error {
	if t.IsFull() {
		return fmt.Errorf("load truck: truck %d is at full capacity (capacity=%d): %w", t.TruckID, t.Capacity, ErrCapacityExceeded)
	}
	if t.Has(packageID) {
		return nil
	}
	t.PackageIDs = append(t.PackageIDs, packageID)
	return nil
}

// Load multiple packages onto the truck.
func (t *Truck) LoadMultiple(ids []int) error {
	for _, id := range ids {
		if err := t.Load(id); err != nil {
			return err
		}
	}

	return nil
}

// Unload removes one package, reporting whether it was aboard.
func (t *Truck) Unload(packageID int) bool {
	i := slices.Index(t.PackageIDs, packageID)
	if i < 0 {
		return false
	}
	t.PackageIDs = slices.Delete(t.PackageIDs, i, i+1)
	return true
}

func (t *Truck) Has(packageID int) bool { return slices.Contains(t.PackageIDs, packageID) }

// Unload all packages from the truck and forget its route.
func (t *Truck) Clear() {
	t.PackageIDs = nil
	t.ResetRoute()
}

// ResetRoute discards the stored route so the next candidate is accepted.
func (t *Truck) ResetRoute() {
	t.Route = nil
	t.BestDistance = math.Inf(1)
}

// UpdateRoute stores route only when distance strictly improves on the best
// known distance. It is the single gate for route mutation.
func (t *Truck) UpdateRoute(route []int, distance float64) bool {
	if !(distance < t.BestDistance) {
		return false
	}
	t.Route = slices.Clone(route)
	t.BestDistance = distance
	return true
}

// LegDuration is the driving time for miles at the truck's speed.
func (t *Truck) LegDuration(miles float64) time.Duration {
	return hoursToDuration(miles / t.SpeedMPH)
}

// ExecuteRoute reports where the truck is at time at and how many miles it
// has covered. Between stops the location is the last stop reached and the
// miles include the partial leg driven since leaving it.
func (t *Truck) ExecuteRoute(at TimeOfDay, distances *DistanceMatrix) (location int, miles float64) {
	if len(t.Route) == 0 {
		return Depot, 0
	}
	if at < t.DepartAt {
		return t.Route[0], 0
	}

	clock := t.DepartAt
	for i := 0; i+1 < len(t.Route); i++ {
		leg := distances.Miles(t.Route[i], t.Route[i+1])
		arrive := clock.Add(t.LegDuration(leg))
		if at < arrive {
			partial := t.SpeedMPH * at.Sub(clock).Hours()
			return t.Route[i], miles + math.Min(partial, leg)
		}
		miles += leg
		clock = arrive
	}

	return t.Route[len(t.Route)-1], miles
}

// FinishAt is the arrival time at the final stop of the route.
func (t *Truck) FinishAt(distances *DistanceMatrix) TimeOfDay {
	clock := t.DepartAt
	for i := 0; i+1 < len(t.Route); i++ {
		clock = clock.Add(t.LegDuration(distances.Miles(t.Route[i], t.Route[i+1])))
	}
	return clock
}

// Clone copies the truck including its package and route slices.
func (t *Truck) Clone() *Truck {
	c := *t
	c.PackageIDs = slices.Clone(t.PackageIDs)
	c.Route = slices.Clone(t.Route)
	return &c
}
