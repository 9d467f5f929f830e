package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/services"
	"net/http"

	"github.com/rs/zerolog"
)

// PlanHandler reports the dispatch outcome and each truck's timed route.
type PlanHandler struct {
	Run *services.DispatchRun
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	run := h.Run
	res := dto.DispatchResponse{
		RunID:       run.Result.RunID.String(),
		Seed:        run.Result.Seed,
		Fingerprint: run.Fingerprint,
		FromCache:   run.FromCache,
		OnTime:      run.Result.OnTime,
		TotalMiles:  run.Result.TotalMiles,
		Violations:  make([]dto.ViolationResponse, 0, len(run.Result.Violations)),
		Swaps:       make([]dto.SwapResponse, 0, len(run.Result.Swaps)),
	}
	for _, v := range run.Result.Violations {
		res.Violations = append(res.Violations, dto.ViolationResponse(v))
	}
	for _, s := range run.Result.Swaps {
		res.Swaps = append(res.Swaps, dto.SwapResponse(s))
	}

	timeline := run.Coordinator.Timeline()
	for _, t := range run.Coordinator.Fleet().Trucks() {
		plan, err := timeline.BuildRoutePlan(t)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Int("truck_id", t.TruckID).Msg("build route plan failed")
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		stops := make([]dto.PlanStopResponse, 0, len(plan.Stops))
		for _, s := range plan.Stops {
			stops = append(stops, dto.PlanStopResponse{
				Location:   locationResponse(run.Network.Locations.At(s.Location)),
				ArriveAt:   s.ArriveAt,
				PackageIDs: s.PackageIDs,
			})
		}
		res.Plans = append(res.Plans, dto.PlanResponse{
			TruckID:    plan.TruckID,
			DepartAt:   plan.DepartAt,
			FinishAt:   plan.FinishAt,
			TotalMiles: plan.TotalMiles,
			Stops:      stops,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
