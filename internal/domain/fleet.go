package domain

import (
	"fmt"
	"slices"
)

// Fleet is the ordered set of trucks for one dispatch run, indexed by truck number.
type Fleet struct {
	trucks []*Truck
}

// NewFleet requires trucks numbered 1..n in order.
func NewFleet(trucks ...*Truck) (*Fleet, error) {
	if len(trucks) == 0 {
		return nil, fmt.Errorf("new fleet: at least one truck is required")
	}
	for i, t := range trucks {
		if t == nil {
			return nil, fmt.Errorf("new fleet: truck %d is nil", i+1)
		}
		if t.TruckID != i+1 {
			return nil, fmt.Errorf("new fleet: truck at position %d has id %d, want %d", i+1, t.TruckID, i+1)
		}
		if t.HandsOffTo < 0 || t.HandsOffTo > len(trucks) || t.HandsOffTo == t.TruckID {
			return nil, fmt.Errorf("new fleet: truck %d hands off to invalid truck %d", t.TruckID, t.HandsOffTo)
		}
		// Trucks are replayed in number order, so the waiting truck must come later.
		if t.HandsOffTo != 0 && t.HandsOffTo < t.TruckID {
			return nil, fmt.Errorf("new fleet: truck %d hands off to earlier truck %d", t.TruckID, t.HandsOffTo)
		}
	}
	return &Fleet{trucks: trucks}, nil
}

func (f *Fleet) Trucks() []*Truck { return f.trucks }

func (f *Fleet) Len() int { return len(f.trucks) }

// Truck returns the truck numbered id.
func (f *Fleet) Truck(id int) (*Truck, error) {
	if id < 1 || id > len(f.trucks) {
		return nil, fmt.Errorf("truck %d: %w", id, ErrNotFound)
	}
	return f.trucks[id-1], nil
}

// Owner returns the truck carrying packageID, or nil.
func (f *Fleet) Owner(packageID int) *Truck {
	for _, t := range f.trucks {
		if t.Has(packageID) {
			return t
		}
	}
	return nil
}

// Pairs lists every unordered pair of trucks in truck-number order.
func (f *Fleet) Pairs() [][2]*Truck {
	pairs := make([][2]*Truck, 0, len(f.trucks)*(len(f.trucks)-1)/2)
	for i := range f.trucks {
		for j := i + 1; j < len(f.trucks); j++ {
			pairs = append(pairs, [2]*Truck{f.trucks[i], f.trucks[j]})
		}
	}
	return pairs
}

// Snapshot deep-copies every truck.
func (f *Fleet) Snapshot() []*Truck {
	out := make([]*Truck, len(f.trucks))
	for i, t := range f.trucks {
		out[i] = t.Clone()
	}
	return out
}

// Restore overwrites each truck in place from a Snapshot.
func (f *Fleet) Restore(snapshot []*Truck) {
	for i, s := range snapshot {
		*f.trucks[i] = *s.Clone()
	}
}

// TotalMiles sums each truck's progress at time at.
func (f *Fleet) TotalMiles(at TimeOfDay, distances *DistanceMatrix) float64 {
	total := 0.0
	for _, t := range f.trucks {
		_, miles := t.ExecuteRoute(at, distances)
		total += miles
	}
	return total
}

// SortedPackageIDs returns the truck's package IDs in ascending order.
func (t *Truck) SortedPackageIDs() []int {
	ids := slices.Clone(t.PackageIDs)
	slices.Sort(ids)
	return ids
}
