package handlers

import (
	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/metrics"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

type RouteHandler struct {
	Employees   ports.EmployeeRepository
	Vehicles    ports.VehicleRepository
	Assignments ports.AssignmentRepository
	Cache       ports.AssignmentCache // optional
	Geocoder    ports.Geocoder        // optional
	Labeler     *services.RouteLabeler

	SimilarityThreshold float64

	// Used when a request names no workplace.
	DefaultWorkplace        *domain.Point
	DefaultWorkplaceAddress string

	// NewRand returns the random source for one optimization call.
	// Defaults to services.NewRand.
	NewRand func() *rand.Rand
}

// Optimize clusters the requested employees onto the requested vehicles and
// returns one ordered route per used vehicle.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.EmployeeIDs) == 0 || len(req.VehicleIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "employee_ids and vehicle_ids are required")
		return
	}

	var point *domain.Point
	switch {
	case req.WorkplaceLat != nil && req.WorkplaceLng != nil:
		point = &domain.Point{Lat: *req.WorkplaceLat, Lng: *req.WorkplaceLng}
	case req.WorkplaceLat != nil || req.WorkplaceLng != nil:
		writeError(w, r, http.StatusBadRequest, "workplace_lat and workplace_lng must be given together")
		return
	}

	address := strings.TrimSpace(req.WorkplaceAddress)
	if point == nil && address == "" {
		point = h.DefaultWorkplace
		address = h.DefaultWorkplaceAddress
	}

	workplace, err := services.ResolveWorkplace(r.Context(), point, address, h.Geocoder)
	if err != nil {
		writeServiceError(w, r, "resolve workplace", err)
		return
	}

	newRand := h.NewRand
	if newRand == nil {
		newRand = services.NewRand
	}

	start := time.Now()
	result, err := services.OptimizeRoutes(
		r.Context(),
		domain.OptimizationRequest{
			Workplace:        workplace,
			WorkplaceAddress: address,
			EmployeeIDs:      req.EmployeeIDs,
			VehicleIDs:       req.VehicleIDs,
		},
		h.Employees,
		h.Vehicles,
		newRand(),
		h.Labeler,
	)
	metrics.OptimizationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writeServiceError(w, r, "optimize routes", err)
		return
	}

	routes := result.Routes
	if req.FilterSimilar {
		threshold := h.SimilarityThreshold
		if threshold <= 0 {
			threshold = services.DefaultSimilarityThreshold
		}
		routes = services.FilterSimilarRoutes(routes, threshold)
	}

	metrics.OptimizedRoutes.Add(float64(len(routes)))
	metrics.UnassignedEmployees.Add(float64(len(result.Unassigned)))

	res := dto.OptimizeResponse{
		Workplace:  dto.WorkplaceResponse{Address: address, Lat: workplace.Lat, Lng: workplace.Lng},
		Routes:     make([]dto.RouteResponse, 0, len(routes)),
		Unassigned: make([]dto.UnassignedEmployeeResponse, 0, len(result.Unassigned)),
	}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}
	for _, e := range result.Unassigned {
		res.Unassigned = append(res.Unassigned, dto.UnassignedEmployeeResponse{
			EmployeeID:   e.ID,
			EmployeeName: e.Name(),
			DropOffPoint: e.DropOffPoint,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// SaveAssignments replaces the persisted assignments with the given routes.
func (h *RouteHandler) SaveAssignments(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveAssignmentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	routes := make([]domain.OptimizedRoute, 0, len(req.Routes))
	for _, rr := range req.Routes {
		routes = append(routes, fromRouteResponse(rr))
	}

	if err := services.SaveRouteAssignments(r.Context(), routes, h.Employees, h.Vehicles, h.Assignments, h.Cache); err != nil {
		writeServiceError(w, r, "save route assignments", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	views, err := services.ListRouteAssignments(r.Context(), h.Assignments, h.Cache)
	if err != nil {
		writeServiceError(w, r, "list route assignments", err)
		return
	}

	res := dto.ListAssignmentsResponse{Assignments: make([]dto.AssignmentResponse, 0, len(views))}
	for _, v := range views {
		res.Assignments = append(res.Assignments, dto.AssignmentResponse{
			ID:                       v.ID,
			VehicleID:                v.VehicleID,
			VehicleModel:             v.VehicleModel,
			VehiclePlateNumber:       v.VehiclePlateNumber,
			EmployeeID:               v.EmployeeID,
			EmployeeName:             v.EmployeeName,
			DropOffPoint:             v.DropOffPoint,
			DropOffLat:               v.DropOff.Lat,
			DropOffLng:               v.DropOff.Lng,
			RouteName:                v.RouteName,
			RouteOrder:               v.RouteOrder,
			EstimatedDistanceKm:      v.EstimatedDistanceKm,
			EstimatedDurationMinutes: v.EstimatedDurationMinutes,
			CreatedAt:                v.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toStopResponses(stops []domain.Stop) []dto.StopResponse {
	out := make([]dto.StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, dto.StopResponse{
			EmployeeID:   s.EmployeeID,
			EmployeeName: s.EmployeeName,
			Address:      s.Address,
			Lat:          s.Location.Lat,
			Lng:          s.Location.Lng,
			Position:     s.Position,
		})
	}
	return out
}

func toRouteResponse(r domain.OptimizedRoute) dto.RouteResponse {
	alts := make([]dto.CandidateResponse, 0, len(r.Alternatives))
	for _, c := range r.Alternatives {
		alts = append(alts, dto.CandidateResponse{
			Variant:         int(c.Variant),
			VariantName:     c.Variant.String(),
			Stops:           toStopResponses(c.Stops),
			TotalDistanceKm: c.TotalDistanceKm,
			DurationMinutes: c.DurationMinutes,
		})
	}

	return dto.RouteResponse{
		VehicleID:       r.VehicleID,
		VehicleModel:    r.VehicleModel,
		RouteName:       r.RouteName,
		Stops:           toStopResponses(r.Stops),
		TotalDistanceKm: r.TotalDistanceKm,
		DurationMinutes: r.DurationMinutes,
		Alternatives:    alts,
	}
}

// Only the primary ordering is needed to persist a route.
func fromRouteResponse(rr dto.RouteResponse) domain.OptimizedRoute {
	stops := make([]domain.Stop, 0, len(rr.Stops))
	for _, s := range rr.Stops {
		stops = append(stops, domain.Stop{
			EmployeeID:   s.EmployeeID,
			EmployeeName: s.EmployeeName,
			Address:      s.Address,
			Location:     domain.Point{Lat: s.Lat, Lng: s.Lng},
			Position:     s.Position,
		})
	}

	return domain.OptimizedRoute{
		VehicleID:       rr.VehicleID,
		VehicleModel:    rr.VehicleModel,
		RouteName:       strings.TrimSpace(rr.RouteName),
		Stops:           stops,
		TotalDistanceKm: rr.TotalDistanceKm,
		DurationMinutes: rr.DurationMinutes,
	}
}
