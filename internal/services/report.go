package services

import (
	"delivery-dispatch-service/internal/domain"
	"fmt"
)

// PackageReport is one package as seen at a point in the day.
type PackageReport struct {
	PackageID   int
	Address     domain.Address
	Deadline    domain.TimeOfDay
	WeightKg    float64
	Notes       string
	TruckID     int
	Status      domain.Status
	DeliveredAt domain.TimeOfDay
	// Projected is set when DeliveredAt is still in the future at the report time.
	Projected bool
}

// PackageDetail adds fleet progress to a single package report.
type PackageDetail struct {
	Package    PackageReport
	FleetMiles float64
}

type TruckReport struct {
	TruckID    int
	Driver     string
	DepartAt   domain.TimeOfDay
	PackageIDs []int
	Location   domain.Location
	Miles      float64
	// Completed is set once the truck has reached the final stop of its route.
	Completed bool
}

type FleetReport struct {
	At         domain.TimeOfDay
	Trucks     []TruckReport
	TotalMiles float64
}

// Reporter answers point-in-time questions about a finished dispatch. It
// derives everything from the stored times and never mutates shared state,
// so it is safe for concurrent readers.
type Reporter struct {
	Network *domain.RoadNetwork
	Index   *domain.PackageIndex
	Fleet   *domain.Fleet
}

func (r Reporter) packageReport(p *domain.Package, at domain.TimeOfDay) PackageReport {
	return PackageReport{
		PackageID:   p.PackageID,
		Address:     p.AddressAt(at),
		Deadline:    p.Deadline,
		WeightKg:    p.WeightKg,
		Notes:       p.Notes,
		TruckID:     p.TruckID,
		Status:      p.StatusAt(at),
		DeliveredAt: p.DeliveredAt,
		Projected:   p.DeliveredAt.IsSet() && p.DeliveredAt.After(at),
	}
}

// Packages reports every package in ID order.
func (r Reporter) Packages(at domain.TimeOfDay) []PackageReport {
	all := r.Index.All()
	out := make([]PackageReport, 0, len(all))
	for _, p := range all {
		out = append(out, r.packageReport(p, at))
	}
	return out
}

// Package reports one package and the miles the fleet has driven by at.
func (r Reporter) Package(id int, at domain.TimeOfDay) (PackageDetail, error) {
	p, err := r.Index.Lookup(id)
	if err != nil {
		return PackageDetail{}, fmt.Errorf("report package: %w", err)
	}
	return PackageDetail{
		Package:    r.packageReport(p, at),
		FleetMiles: r.Fleet.TotalMiles(at, r.Network.Distances),
	}, nil
}

// Trucks reports each truck's position and mileage at time at.
func (r Reporter) Trucks(at domain.TimeOfDay) FleetReport {
	dm := r.Network.Distances
	report := FleetReport{At: at, Trucks: make([]TruckReport, 0, r.Fleet.Len())}

	for _, t := range r.Fleet.Trucks() {
		loc, miles := t.ExecuteRoute(at, dm)
		report.Trucks = append(report.Trucks, TruckReport{
			TruckID:    t.TruckID,
			Driver:     t.Driver,
			DepartAt:   t.DepartAt,
			PackageIDs: t.SortedPackageIDs(),
			Location:   r.Network.Locations.At(loc),
			Miles:      miles,
			Completed:  len(t.Route) > 0 && at >= t.FinishAt(dm),
		})
		report.TotalMiles += miles
	}

	return report
}
