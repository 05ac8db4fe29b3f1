package dto

import "time"

// Workplace coordinates win over the address; both fall back to server defaults.
type OptimizeRequest struct {
	WorkplaceAddress string   `json:"workplace_address"`
	WorkplaceLat     *float64 `json:"workplace_lat"`
	WorkplaceLng     *float64 `json:"workplace_lng"`
	EmployeeIDs      []int64  `json:"employee_ids"`
	VehicleIDs       []int64  `json:"vehicle_ids"`
	FilterSimilar    bool     `json:"filter_similar"`
}

type StopResponse struct {
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Position     int     `json:"position"`
}

type CandidateResponse struct {
	Variant         int            `json:"variant"`
	VariantName     string         `json:"variant_name"`
	Stops           []StopResponse `json:"stops"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	DurationMinutes int            `json:"duration_minutes"`
}

type RouteResponse struct {
	VehicleID       int64               `json:"vehicle_id"`
	VehicleModel    string              `json:"vehicle_model"`
	RouteName       string              `json:"route_name"`
	Stops           []StopResponse      `json:"stops"`
	TotalDistanceKm float64             `json:"total_distance_km"`
	DurationMinutes int                 `json:"duration_minutes"`
	Alternatives    []CandidateResponse `json:"alternatives,omitempty"`
}

type UnassignedEmployeeResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	DropOffPoint string `json:"drop_off_point"`
}

type OptimizeResponse struct {
	Workplace  WorkplaceResponse            `json:"workplace"`
	Routes     []RouteResponse              `json:"routes"`
	Unassigned []UnassignedEmployeeResponse `json:"unassigned"`
}

type WorkplaceResponse struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Routes are accepted in the shape returned by the optimize endpoint.
type SaveAssignmentsRequest struct {
	Routes []RouteResponse `json:"routes"`
}

type AssignmentResponse struct {
	ID                       int64     `json:"id"`
	VehicleID                int64     `json:"vehicle_id"`
	VehicleModel             string    `json:"vehicle_model"`
	VehiclePlateNumber       string    `json:"vehicle_plate_number"`
	EmployeeID               int64     `json:"employee_id"`
	EmployeeName             string    `json:"employee_name"`
	DropOffPoint             string    `json:"drop_off_point"`
	DropOffLat               float64   `json:"drop_off_lat"`
	DropOffLng               float64   `json:"drop_off_lng"`
	RouteName                string    `json:"route_name"`
	RouteOrder               int       `json:"route_order"`
	EstimatedDistanceKm      float64   `json:"estimated_distance_km"`
	EstimatedDurationMinutes int       `json:"estimated_duration_minutes"`
	CreatedAt                time.Time `json:"created_at"`
}

type ListAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}
