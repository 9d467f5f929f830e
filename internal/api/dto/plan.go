package dto

import "delivery-dispatch-service/internal/domain"

type PlanStopResponse struct {
	Location   LocationResponse `json:"location"`
	ArriveAt   domain.TimeOfDay `json:"arrive_at"`
	PackageIDs []int            `json:"package_ids"`
}

type PlanResponse struct {
	TruckID    int                `json:"truck_id"`
	DepartAt   domain.TimeOfDay   `json:"depart_at"`
	FinishAt   domain.TimeOfDay   `json:"finish_at"`
	TotalMiles float64            `json:"total_miles"`
	Stops      []PlanStopResponse `json:"stops"`
}

type ViolationResponse struct {
	PackageID   int              `json:"package_id"`
	TruckID     int              `json:"truck_id"`
	Deadline    domain.TimeOfDay `json:"deadline"`
	DeliveredAt domain.TimeOfDay `json:"delivered_at"`
}

type SwapResponse struct {
	TruckA   int `json:"truck_a"`
	PackageA int `json:"package_a"`
	TruckB   int `json:"truck_b"`
	PackageB int `json:"package_b"`
}

// DispatchResponse summarizes the dispatch the server is reporting on.
type DispatchResponse struct {
	RunID       string              `json:"run_id"`
	Seed        uint64              `json:"seed"`
	Fingerprint string              `json:"fingerprint,omitempty"`
	FromCache   bool                `json:"from_cache"`
	OnTime      bool                `json:"on_time"`
	TotalMiles  float64             `json:"total_miles"`
	Violations  []ViolationResponse `json:"violations"`
	Swaps       []SwapResponse      `json:"swaps"`
	Plans       []PlanResponse      `json:"plans"`
}
