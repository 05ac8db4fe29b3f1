package handlers

import (
	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/ports"
	"net/http"
	"strings"
)

const maxVehicleCapacity = 100

type VehicleHandler struct {
	Repo ports.VehicleRepository
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Repo.ListVehicles(r.Context())
	if err != nil {
		writeServiceError(w, r, "list vehicles", err)
		return
	}

	res := dto.ListVehiclesResponse{Vehicles: make([]dto.VehicleResponse, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, toVehicleResponse(v))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.Repo.GetVehicle(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get vehicle", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toVehicleResponse(v))
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, ok := vehicleFromRequest(w, r, req)
	if !ok {
		return
	}

	created, err := h.Repo.CreateVehicle(r.Context(), v)
	if err != nil {
		writeServiceError(w, r, "create vehicle", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toVehicleResponse(created))
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.CreateVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, ok := vehicleFromRequest(w, r, req)
	if !ok {
		return
	}
	v.ID = id

	updated, err := h.Repo.UpdateVehicle(r.Context(), v)
	if err != nil {
		writeServiceError(w, r, "update vehicle", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toVehicleResponse(updated))
}

func vehicleFromRequest(w http.ResponseWriter, r *http.Request, req dto.CreateVehicleRequest) (domain.Vehicle, bool) {
	v := domain.Vehicle{
		Model:       strings.TrimSpace(req.Model),
		PlateNumber: strings.TrimSpace(req.PlateNumber),
		Capacity:    req.Capacity,
		Color:       strings.TrimSpace(req.Color),
		Year:        req.Year,
		Notes:       strings.TrimSpace(req.Notes),
	}

	if v.Model == "" || v.PlateNumber == "" {
		writeError(w, r, http.StatusBadRequest, "model and plate_number are required")
		return domain.Vehicle{}, false
	}
	if v.Capacity < 1 || v.Capacity > maxVehicleCapacity {
		writeError(w, r, http.StatusBadRequest, "capacity must be between 1 and 100")
		return domain.Vehicle{}, false
	}

	return v, true
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.DeactivateVehicle(r.Context(), id); err != nil {
		writeServiceError(w, r, "deactivate vehicle", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toVehicleResponse(v domain.Vehicle) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:          v.ID,
		Model:       v.Model,
		PlateNumber: v.PlateNumber,
		Capacity:    v.Capacity,
		Color:       v.Color,
		Year:        v.Year,
		Notes:       v.Notes,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
