package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// PackageHandler exposes read-only package status endpoints.
type PackageHandler struct {
	Reports services.Reporter
	Clock   Clock
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	at, err := reportTime(r, h.Clock)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reports := h.Reports.Packages(at)
	res := dto.ListPackagesResponse{
		At:       at,
		Packages: make([]dto.PackageResponse, 0, len(reports)),
	}
	for _, p := range reports {
		res.Packages = append(res.Packages, packageResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "package id must be a positive integer")
		return
	}
	at, err := reportTime(r, h.Clock)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.Reports.Package(id, at)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("package_id", id).Msg("package report failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.PackageDetailResponse{
		At:         at,
		Package:    packageResponse(detail.Package),
		FleetMiles: detail.FleetMiles,
	})
}

func packageResponse(p services.PackageReport) dto.PackageResponse {
	return dto.PackageResponse{
		PackageID:   p.PackageID,
		Address:     p.Address.Street,
		City:        p.Address.City,
		State:       p.Address.State,
		Zip:         p.Address.Zip,
		Deadline:    p.Deadline,
		WeightKg:    p.WeightKg,
		Notes:       p.Notes,
		TruckID:     p.TruckID,
		Status:      p.Status.String(),
		DeliveredAt: p.DeliveredAt,
		Projected:   p.Projected,
	}
}
