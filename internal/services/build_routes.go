package services

import (
	"commute-route-service/internal/domain"
	"fmt"
	"math/rand/v2"
	"slices"
)

// BuildRoutes runs the optimization core over already-resolved records.
//
// Vehicles are ordered by descending capacity (stable) and paired positionally
// with the clusters produced by ClusterEmployees; pairing stops at
// min(#clusters, #vehicles), so surplus vehicles get no route. A cluster
// larger than its vehicle is truncated to the vehicle's capacity and the
// dropped employees are reported in OptimizationResult.Unassigned.
//
// Each route carries all generated candidates as alternatives; the primary
// is the one with the smallest distance, ties going to the lowest variant.
func BuildRoutes(
	workplace domain.Point,
	employees []domain.Employee,
	vehicles []domain.Vehicle,
	rng *rand.Rand,
	labeler *RouteLabeler,
) (*domain.OptimizationResult, error) {
	if len(employees) == 0 || len(vehicles) == 0 {
		return nil, fmt.Errorf("build routes: %w",
			domain.Invalidf("no valid employees or vehicles (employees=%d vehicles=%d)", len(employees), len(vehicles)))
	}

	if !workplace.Valid() {
		return nil, fmt.Errorf("build routes: %w", domain.Invalidf("workplace %v is not a valid coordinate", workplace))
	}

	byCapacity := slices.Clone(vehicles)
	slices.SortStableFunc(byCapacity, func(a, b domain.Vehicle) int {
		return b.Capacity - a.Capacity
	})

	clusters, err := ClusterEmployees(employees, len(byCapacity), rng)
	if err != nil {
		return nil, fmt.Errorf("build routes: %w", err)
	}

	pairs := min(len(clusters), len(byCapacity))
	result := &domain.OptimizationResult{
		Routes:     make([]domain.OptimizedRoute, 0, pairs),
		Unassigned: []domain.Employee{},
	}

	for i := 0; i < pairs; i++ {
		vehicle := byCapacity[i]

		seated, overflow := vehicle.Seat(clusters[i])
		result.Unassigned = append(result.Unassigned, overflow...)

		result.Routes = append(result.Routes, buildVehicleRoute(Cluster(seated), workplace, vehicle, labeler))
	}

	return result, nil
}

func buildVehicleRoute(cluster Cluster, workplace domain.Point, vehicle domain.Vehicle, labeler *RouteLabeler) domain.OptimizedRoute {
	addresses := make([]string, 0, len(cluster))
	for _, e := range cluster {
		addresses = append(addresses, e.DropOffPoint)
	}

	candidates := make([]domain.RouteCandidate, 0, len(RouteVariants))
	for _, v := range RouteVariants {
		candidates = append(candidates, GenerateRoute(cluster, workplace, v))
	}

	best := SelectPrimary(candidates)

	return domain.OptimizedRoute{
		VehicleID:       vehicle.ID,
		VehicleModel:    vehicle.Model,
		RouteName:       labeler.Label(addresses),
		Stops:           best.Stops,
		TotalDistanceKm: best.TotalDistanceKm,
		DurationMinutes: best.DurationMinutes,
		Alternatives:    candidates,
	}
}

// SelectPrimary returns the candidate with the smallest total distance.
// Candidates are expected in variant order; the earliest wins ties.
func SelectPrimary(candidates []domain.RouteCandidate) domain.RouteCandidate {
	if len(candidates) == 0 {
		return domain.RouteCandidate{Stops: []domain.Stop{}}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.TotalDistanceKm < best.TotalDistanceKm {
			best = c
		}
	}
	return best
}
