package services

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"slices"
)

// Timeline replays trucks along their stored routes and stamps delivery
// times on the packages they carry.
type Timeline struct {
	Network  *domain.RoadNetwork
	Packages *domain.PackageIndex
	Fleet    *domain.Fleet
}

// packagesByStop groups t's packages by the location they are delivered to.
func (tl Timeline) packagesByStop(t *domain.Truck) (map[int][]*domain.Package, error) {
	byStop := make(map[int][]*domain.Package, len(t.PackageIDs))
	for _, id := range t.PackageIDs {
		p, err := tl.Packages.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("truck %d: %w", t.TruckID, err)
		}
		loc, err := tl.Network.StopOf(p)
		if err != nil {
			return nil, fmt.Errorf("truck %d: %w", t.TruckID, err)
		}
		byStop[loc] = append(byStop[loc], p)
	}
	return byStop, nil
}

// OnTime replays t's route from its departure, stamping each package's
// delivery time on the first arrival at its stop, and reports whether every
// package meets its deadline.
//
// When t returns to the depot and hands off to another truck, that truck's
// departure is pushed back to t's return if the return is later.
func (tl Timeline) OnTime(t *domain.Truck) (bool, error) {
	byStop, err := tl.packagesByStop(t)
	if err != nil {
		return false, fmt.Errorf("on time: %w", err)
	}

	for _, pkgs := range byStop {
		for _, p := range pkgs {
			p.TruckID = t.TruckID
			p.DispatchedAt = t.DepartAt
			p.DeliveredAt = domain.NotYet
		}
	}

	dm := tl.Network.Distances
	clock := t.DepartAt
	for i := 1; i < len(t.Route); i++ {
		clock = clock.Add(t.LegDuration(dm.Miles(t.Route[i-1], t.Route[i])))
		for _, p := range byStop[t.Route[i]] {
			if !p.DeliveredAt.IsSet() {
				p.DeliveredAt = clock
			}
		}
	}

	if err := tl.handOff(t, clock); err != nil {
		return false, fmt.Errorf("on time: %w", err)
	}

	for _, pkgs := range byStop {
		for _, p := range pkgs {
			if !p.OnTime() {
				return false, nil
			}
		}
	}
	return true, nil
}

func (tl Timeline) handOff(t *domain.Truck, finish domain.TimeOfDay) error {
	if !t.ReturnsToDepot || t.HandsOffTo == 0 || tl.Fleet == nil {
		return nil
	}
	if len(t.Route) < 2 || t.Route[len(t.Route)-1] != domain.Depot {
		return nil
	}

	waiting, err := tl.Fleet.Truck(t.HandsOffTo)
	if err != nil {
		return fmt.Errorf("truck %d hand-off: %w", t.TruckID, err)
	}
	if finish <= waiting.DepartAt {
		return nil
	}

	waiting.DepartAt = finish
	for _, id := range waiting.PackageIDs {
		p, err := tl.Packages.Lookup(id)
		if err != nil {
			return fmt.Errorf("truck %d hand-off: %w", t.TruckID, err)
		}
		p.DispatchedAt = finish
	}
	return nil
}

// Late lists t's packages whose stamped delivery misses the deadline, in ID order.
func (tl Timeline) Late(t *domain.Truck) ([]*domain.Package, error) {
	var late []*domain.Package
	for _, id := range t.SortedPackageIDs() {
		p, err := tl.Packages.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("late: truck %d: %w", t.TruckID, err)
		}
		if !p.OnTime() {
			late = append(late, p)
		}
	}
	return late, nil
}

// BuildRoutePlan lays out t's stored route as timed stops without touching
// package state. The first element of the route, the depot, is not a stop.
func (tl Timeline) BuildRoutePlan(t *domain.Truck) (*domain.RoutePlan, error) {
	byStop, err := tl.packagesByStop(t)
	if err != nil {
		return nil, fmt.Errorf("build route plan: %w", err)
	}

	dm := tl.Network.Distances
	plan := &domain.RoutePlan{
		TruckID:  t.TruckID,
		DepartAt: t.DepartAt,
		Stops:    []domain.RouteStop{},
		FinishAt: t.DepartAt,
	}

	delivered := make(map[int]struct{}, len(byStop))
	clock := t.DepartAt
	for i := 1; i < len(t.Route); i++ {
		leg := dm.Miles(t.Route[i-1], t.Route[i])
		clock = clock.Add(t.LegDuration(leg))
		plan.TotalMiles += leg

		loc := t.Route[i]
		stop := domain.RouteStop{Location: loc, ArriveAt: clock, PackageIDs: []int{}}
		if _, done := delivered[loc]; !done {
			for _, p := range byStop[loc] {
				stop.PackageIDs = append(stop.PackageIDs, p.PackageID)
			}
			slices.Sort(stop.PackageIDs)
			delivered[loc] = struct{}{}
		}
		plan.Stops = append(plan.Stops, stop)
	}
	plan.FinishAt = clock

	return plan, nil
}
