package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/services"
	"net/http"
)

// TruckHandler reports where each truck is and how far it has driven.
type TruckHandler struct {
	Reports services.Reporter
	Clock   Clock
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	at, err := reportTime(r, h.Clock)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.Reports.Trucks(at)
	res := dto.ListTrucksResponse{
		At:         report.At,
		Trucks:     make([]dto.TruckResponse, 0, len(report.Trucks)),
		TotalMiles: report.TotalMiles,
	}
	for _, t := range report.Trucks {
		res.Trucks = append(res.Trucks, dto.TruckResponse{
			TruckID:    t.TruckID,
			Driver:     t.Driver,
			DepartAt:   t.DepartAt,
			PackageIDs: t.PackageIDs,
			Location:   locationResponse(t.Location),
			Miles:      t.Miles,
			Completed:  t.Completed,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
