package dto

import "delivery-dispatch-service/internal/domain"

type PackageResponse struct {
	PackageID   int              `json:"package_id"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	Zip         string           `json:"zip"`
	Deadline    domain.TimeOfDay `json:"deadline"`
	WeightKg    float64          `json:"weight_kg"`
	Notes       string           `json:"notes,omitempty"`
	TruckID     int              `json:"truck_id"`
	Status      string           `json:"status"`
	DeliveredAt domain.TimeOfDay `json:"delivered_at"`
	// Projected marks a delivery time still ahead of the requested time.
	Projected bool `json:"projected"`
}

type ListPackagesResponse struct {
	At       domain.TimeOfDay  `json:"at"`
	Packages []PackageResponse `json:"packages"`
}

type PackageDetailResponse struct {
	At         domain.TimeOfDay `json:"at"`
	Package    PackageResponse  `json:"package"`
	FleetMiles float64          `json:"fleet_miles"`
}
