package domain

import "time"

// RouteVariant identifies the ordering heuristic that produced a candidate.
type RouteVariant int

const (
	VariantNearestNeighbor  RouteVariant = 1
	VariantClockwise        RouteVariant = 2
	VariantCounterClockwise RouteVariant = 3
)

func (v RouteVariant) String() string {
	switch v {
	case VariantNearestNeighbor:
		return "nearest_neighbor"
	case VariantClockwise:
		return "clockwise"
	case VariantCounterClockwise:
		return "counter_clockwise"
	default:
		return "unknown"
	}
}

// Represents a single drop-off in a route. Position is 1-based.
type Stop struct {
	EmployeeID   int64
	EmployeeName string
	Address      string
	Location     Point
	Position     int
}

// One ordering of a fixed set of employees, scored by travel distance.
// The distance covers workplace -> first stop -> ... -> last stop;
// no return leg is included.
type RouteCandidate struct {
	Variant         RouteVariant
	Stops           []Stop
	TotalDistanceKm float64
	DurationMinutes int
}

// Represents the planned route for a single vehicle.
// Stops, TotalDistanceKm and DurationMinutes mirror the primary candidate;
// Alternatives holds every generated candidate, the primary included.
type OptimizedRoute struct {
	VehicleID       int64
	VehicleModel    string
	RouteName       string
	Stops           []Stop
	TotalDistanceKm float64
	DurationMinutes int
	Alternatives    []RouteCandidate
}

// Input of a single optimization call.
type OptimizationRequest struct {
	Workplace        Point
	WorkplaceAddress string
	EmployeeIDs      []int64
	VehicleIDs       []int64
}

// Output of a single optimization call. Unassigned lists employees that
// were dropped because their cluster exceeded the paired vehicle's capacity.
type OptimizationResult struct {
	Routes     []OptimizedRoute
	Unassigned []Employee
}

// Persisted (vehicle, employee) pairing for one stop of a saved route.
type RouteAssignment struct {
	ID                       int64
	VehicleID                int64
	EmployeeID               int64
	RouteName                string
	RouteOrder               int
	EstimatedDistanceKm      float64
	EstimatedDurationMinutes int
	CreatedAt                time.Time
}

// RouteAssignment joined with vehicle and employee display data.
type RouteAssignmentView struct {
	RouteAssignment
	VehicleModel       string
	VehiclePlateNumber string
	EmployeeName       string
	DropOffPoint       string
	DropOff            Point
}

// Flatten turns a route into one assignment per stop of its primary ordering.
func (r OptimizedRoute) Flatten() []RouteAssignment {
	out := make([]RouteAssignment, 0, len(r.Stops))
	for _, s := range r.Stops {
		out = append(out, RouteAssignment{
			VehicleID:                r.VehicleID,
			EmployeeID:               s.EmployeeID,
			RouteName:                r.RouteName,
			RouteOrder:               s.Position,
			EstimatedDistanceKm:      r.TotalDistanceKm,
			EstimatedDurationMinutes: r.DurationMinutes,
		})
	}
	return out
}
