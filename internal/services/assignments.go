package services

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
	"context"
	"fmt"
	"log"
)

// SaveRouteAssignments flattens routes into one assignment per primary stop
// and replaces every stored assignment with them.
//
// Routes are checked before anything is written: every vehicle and employee must be
// active and used once, stop positions must run 1..n in order and no route may
// exceed its vehicle's capacity.
// Each assignment carries its route's total distance and duration.
// The read-back cache, if any, is invalidated after a successful write.
func SaveRouteAssignments(
	ctx context.Context,
	routes []domain.OptimizedRoute,
	employees ports.EmployeeRepository,
	vehicles ports.VehicleRepository,
	repo ports.AssignmentRepository,
	cache ports.AssignmentCache,
) (err error) {
	defer obs.Time(ctx, "services.SaveRouteAssignments")(&err)

	if err := checkRoutes(ctx, routes, employees, vehicles); err != nil {
		return fmt.Errorf("save route assignments: %w", err)
	}

	assignments := make([]domain.RouteAssignment, 0, len(routes)*4)
	for _, r := range routes {
		assignments = append(assignments, r.Flatten()...)
	}

	if err := repo.ReplaceAssignments(ctx, assignments); err != nil {
		return fmt.Errorf("save route assignments: %w", err)
	}

	if cache != nil {
		if err := cache.Invalidate(ctx); err != nil {
			log.Printf("assignment cache invalidate failed: %v", err)
		}
	}

	return nil
}

func checkRoutes(
	ctx context.Context,
	routes []domain.OptimizedRoute,
	employees ports.EmployeeRepository,
	vehicles ports.VehicleRepository,
) error {
	if len(routes) == 0 {
		return nil
	}

	vehicleIDs := make([]int64, 0, len(routes))
	var employeeIDs []int64
	seenVehicles := map[int64]bool{}
	seenEmployees := map[int64]bool{}
	for i, r := range routes {
		if r.VehicleID <= 0 {
			return domain.Invalidf("route %d has no vehicle", i+1)
		}
		if seenVehicles[r.VehicleID] {
			return domain.Invalidf("vehicle %d is used by more than one route", r.VehicleID)
		}
		seenVehicles[r.VehicleID] = true
		vehicleIDs = append(vehicleIDs, r.VehicleID)

		for j, s := range r.Stops {
			if s.EmployeeID <= 0 {
				return domain.Invalidf("route %d stop %d has no employee", i+1, j+1)
			}
			if s.Position != j+1 {
				return domain.Invalidf("route %d stop %d has position %d", i+1, j+1, s.Position)
			}
			if seenEmployees[s.EmployeeID] {
				return domain.Invalidf("employee %d appears in more than one stop", s.EmployeeID)
			}
			seenEmployees[s.EmployeeID] = true
			employeeIDs = append(employeeIDs, s.EmployeeID)
		}
	}

	activeVehicles, err := vehicles.FindActiveVehicles(ctx, vehicleIDs)
	if err != nil {
		return fmt.Errorf("resolve vehicles: %w", err)
	}
	capacity := make(map[int64]int, len(activeVehicles))
	for _, v := range activeVehicles {
		capacity[v.ID] = v.Capacity
	}

	activeEmployees := map[int64]bool{}
	if len(employeeIDs) > 0 {
		found, err := employees.FindActiveEmployees(ctx, employeeIDs)
		if err != nil {
			return fmt.Errorf("resolve employees: %w", err)
		}
		for _, e := range found {
			activeEmployees[e.ID] = true
		}
	}

	for _, r := range routes {
		c, ok := capacity[r.VehicleID]
		if !ok {
			return domain.Invalidf("vehicle %d is not active", r.VehicleID)
		}
		if len(r.Stops) > c {
			return domain.Invalidf("route for vehicle %d has %d stops but %d seats", r.VehicleID, len(r.Stops), c)
		}
		for _, s := range r.Stops {
			if !activeEmployees[s.EmployeeID] {
				return domain.Invalidf("employee %d is not active", s.EmployeeID)
			}
		}
	}

	return nil
}

// ListRouteAssignments returns saved assignments ordered by route name, then stop order.
// Cache failures are logged and fall through to the repository.
func ListRouteAssignments(
	ctx context.Context,
	repo ports.AssignmentRepository,
	cache ports.AssignmentCache,
) (_ []domain.RouteAssignmentView, err error) {
	defer obs.Time(ctx, "services.ListRouteAssignments")(&err)

	if cache != nil {
		views, ok, err := cache.Get(ctx)
		if err != nil {
			log.Printf("assignment cache read failed: %v", err)
		} else if ok {
			return views, nil
		}
	}

	views, err := repo.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list route assignments: %w", err)
	}

	if cache != nil {
		if err := cache.Set(ctx, views); err != nil {
			log.Printf("assignment cache write failed: %v", err)
		}
	}

	return views, nil
}
