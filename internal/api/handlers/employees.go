package handlers

import (
	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/ports"
	"errors"
	"net/http"
	"net/mail"
	"strings"
)

type EmployeeHandler struct {
	Repo ports.EmployeeRepository
	// Optional; used when a new employee has no drop-off coordinates.
	Geocoder ports.Geocoder
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Repo.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, r, "list employees", err)
		return
	}

	res := dto.ListEmployeesResponse{Employees: make([]dto.EmployeeResponse, 0, len(employees))}
	for _, e := range employees {
		res.Employees = append(res.Employees, toEmployeeResponse(e))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := h.Repo.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get employee", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toEmployeeResponse(e))
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, ok := h.employeeFromRequest(w, r, req)
	if !ok {
		return
	}

	created, err := h.Repo.CreateEmployee(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, "create employee", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEmployeeResponse(created))
}

// Update replaces every editable field of an active employee.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, ok := h.employeeFromRequest(w, r, req)
	if !ok {
		return
	}
	e.ID = id

	updated, err := h.Repo.UpdateEmployee(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, "update employee", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toEmployeeResponse(updated))
}

// employeeFromRequest validates req, geocoding the drop-off label when no
// coordinates are given. It writes the error response itself.
func (h *EmployeeHandler) employeeFromRequest(w http.ResponseWriter, r *http.Request, req dto.CreateEmployeeRequest) (domain.Employee, bool) {
	e := domain.Employee{
		FirstName:              strings.TrimSpace(req.FirstName),
		LastName:               strings.TrimSpace(req.LastName),
		Title:                  strings.TrimSpace(req.Title),
		Email:                  strings.TrimSpace(req.Email),
		PhoneNumber:            strings.TrimSpace(req.PhoneNumber),
		HomeAddress:            strings.TrimSpace(req.HomeAddress),
		DropOffPoint:           strings.TrimSpace(req.DropOffPoint),
		NearestPublicTransport: strings.TrimSpace(req.NearestPublicTransport),
		Notes:                  strings.TrimSpace(req.Notes),
	}

	switch {
	case e.FirstName == "" || e.LastName == "":
		writeError(w, r, http.StatusBadRequest, "first_name and last_name are required")
		return domain.Employee{}, false
	case e.Email == "":
		writeError(w, r, http.StatusBadRequest, "email is required")
		return domain.Employee{}, false
	case e.DropOffPoint == "":
		writeError(w, r, http.StatusBadRequest, "drop_off_point is required")
		return domain.Employee{}, false
	}
	if _, err := mail.ParseAddress(e.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, "email is invalid")
		return domain.Employee{}, false
	}

	switch {
	case req.DropOffLat != nil && req.DropOffLng != nil:
		e.DropOff = domain.Point{Lat: *req.DropOffLat, Lng: *req.DropOffLng}
	case req.DropOffLat != nil || req.DropOffLng != nil:
		writeError(w, r, http.StatusBadRequest, "drop_off_lat and drop_off_lng must be given together")
		return domain.Employee{}, false
	case h.Geocoder != nil:
		p, err := h.Geocoder.Geocode(r.Context(), e.DropOffPoint)
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusBadRequest, "drop_off_point could not be geocoded")
			return domain.Employee{}, false
		}
		if err != nil {
			writeServiceError(w, r, "geocode drop-off", err)
			return domain.Employee{}, false
		}
		e.DropOff = p
	default:
		writeError(w, r, http.StatusBadRequest, "drop_off_lat and drop_off_lng are required")
		return domain.Employee{}, false
	}

	if !e.DropOff.Valid() {
		writeError(w, r, http.StatusBadRequest, "drop-off coordinates are out of range")
		return domain.Employee{}, false
	}

	return e, true
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.DeactivateEmployee(r.Context(), id); err != nil {
		writeServiceError(w, r, "deactivate employee", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toEmployeeResponse(e domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:                     e.ID,
		FirstName:              e.FirstName,
		LastName:               e.LastName,
		Title:                  e.Title,
		Email:                  e.Email,
		PhoneNumber:            e.PhoneNumber,
		HomeAddress:            e.HomeAddress,
		DropOffPoint:           e.DropOffPoint,
		DropOffLat:             e.DropOff.Lat,
		DropOffLng:             e.DropOff.Lng,
		NearestPublicTransport: e.NearestPublicTransport,
		Notes:                  e.Notes,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}
