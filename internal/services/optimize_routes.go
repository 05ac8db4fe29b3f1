package services

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
)

// OptimizeRoutes resolves the requested employees and vehicles and runs the
// optimization core over them.
//
// Unknown and inactive IDs are skipped; duplicates are resolved once and the
// request order is kept. An empty resolved set of either kind fails with
// domain.ErrInvalidInput before any clustering happens.
func OptimizeRoutes(
	ctx context.Context,
	req domain.OptimizationRequest,
	employeeRepo ports.EmployeeRepository,
	vehicleRepo ports.VehicleRepository,
	rng *rand.Rand,
	labeler *RouteLabeler,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "services.OptimizeRoutes")(&err)

	if len(req.EmployeeIDs) == 0 || len(req.VehicleIDs) == 0 {
		return nil, fmt.Errorf("optimize routes: %w", domain.Invalidf("employee and vehicle ids are required"))
	}

	employeeIDs := uniqueIDs(req.EmployeeIDs)
	vehicleIDs := uniqueIDs(req.VehicleIDs)

	found, err := employeeRepo.FindActiveEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("optimize routes: resolve employees: %w", err)
	}
	employees := inRequestOrder(employeeIDs, found, func(e domain.Employee) int64 { return e.ID })

	valid := employees[:0:0]
	for _, e := range employees {
		if !e.DropOff.Valid() {
			log.Printf("optimize routes: skipping employee_id=%d with invalid drop-off %v", e.ID, e.DropOff)
			continue
		}
		valid = append(valid, e)
	}

	foundVehicles, err := vehicleRepo.FindActiveVehicles(ctx, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("optimize routes: resolve vehicles: %w", err)
	}
	vehicles := inRequestOrder(vehicleIDs, foundVehicles, func(v domain.Vehicle) int64 { return v.ID })

	result, err := BuildRoutes(req.Workplace, valid, vehicles, rng, labeler)
	if err != nil {
		return nil, fmt.Errorf("optimize routes: %w", err)
	}

	if len(result.Unassigned) > 0 {
		ids := make([]string, 0, len(result.Unassigned))
		for _, e := range result.Unassigned {
			ids = append(ids, fmt.Sprint(e.ID))
		}
		log.Printf(
			"optimize routes: %d employee(s) exceed vehicle capacity and were left unassigned: employee_ids=%s",
			len(ids), strings.Join(ids, ","),
		)
	}

	return result, nil
}

// ResolveWorkplace returns the workplace coordinates of a request.
// Explicit coordinates win; otherwise the address is geocoded.
func ResolveWorkplace(
	ctx context.Context,
	point *domain.Point,
	address string,
	geocoder ports.Geocoder,
) (domain.Point, error) {
	if point != nil {
		if !point.Valid() {
			return domain.Point{}, fmt.Errorf("resolve workplace: %w", domain.Invalidf("%v is not a valid coordinate", *point))
		}
		return *point, nil
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Point{}, fmt.Errorf("resolve workplace: %w", domain.Invalidf("address or coordinates required"))
	}

	if geocoder == nil {
		return domain.Point{}, fmt.Errorf("resolve workplace: %w", domain.Invalidf("no geocoder configured for address %q", address))
	}

	p, err := geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Point{}, fmt.Errorf("resolve workplace: %w", domain.Invalidf("address %q not found", address))
		}
		return domain.Point{}, fmt.Errorf("resolve workplace: geocode %q: %w", address, err)
	}

	return p, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// inRequestOrder arranges records to follow ids; IDs without a record are skipped.
func inRequestOrder[T any](ids []int64, records []T, key func(T) int64) []T {
	byID := make(map[int64]T, len(records))
	for _, r := range records {
		byID[key(r)] = r
	}

	out := make([]T, 0, len(records))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
