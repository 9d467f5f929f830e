package dto

import "delivery-dispatch-service/internal/domain"

type LocationResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type TruckResponse struct {
	TruckID    int              `json:"truck_id"`
	Driver     string           `json:"driver"`
	DepartAt   domain.TimeOfDay `json:"depart_at"`
	PackageIDs []int            `json:"package_ids"`
	Location   LocationResponse `json:"location"`
	Miles      float64          `json:"miles"`
	Completed  bool             `json:"completed"`
}

type ListTrucksResponse struct {
	At         domain.TimeOfDay `json:"at"`
	Trucks     []TruckResponse  `json:"trucks"`
	TotalMiles float64          `json:"total_miles"`
}
