package services

import (
	"commute-route-service/internal/domain"
	"math"
	"slices"
)

// Travel time estimate used to turn distance into duration (~30 km/h).
// This is a fixed speed proxy, not a traffic model.
const MinutesPerKm = 2.0

// Variants generated for every vehicle, in tie-break order.
var RouteVariants = []domain.RouteVariant{
	domain.VariantNearestNeighbor,
	domain.VariantClockwise,
	domain.VariantCounterClockwise,
}

// GenerateRoute orders the cluster's stops with the given heuristic and scores the result.
//
// The input cluster is never modified. An empty cluster yields a candidate
// with no stops and zero distance and duration.
func GenerateRoute(cluster Cluster, workplace domain.Point, variant domain.RouteVariant) domain.RouteCandidate {
	if len(cluster) == 0 {
		return domain.RouteCandidate{
			Variant:         variant,
			Stops:           []domain.Stop{},
			TotalDistanceKm: 0,
			DurationMinutes: 0,
		}
	}

	var order []int
	switch variant {
	case domain.VariantClockwise:
		order = angularOrder(cluster, workplace, false)
	case domain.VariantCounterClockwise:
		order = angularOrder(cluster, workplace, true)
	default:
		order = nearestNeighborOrder(cluster, workplace)
	}

	stops := make([]domain.Stop, 0, len(order))
	for i, idx := range order {
		e := cluster[idx]
		stops = append(stops, domain.Stop{
			EmployeeID:   e.ID,
			EmployeeName: e.Name(),
			Address:      e.DropOffPoint,
			Location:     e.DropOff,
			Position:     i + 1,
		})
	}

	total := RouteDistance(workplace, stops)

	return domain.RouteCandidate{
		Variant:         variant,
		Stops:           stops,
		TotalDistanceKm: total,
		DurationMinutes: EstimateDuration(total),
	}
}

// RouteDistance sums workplace -> first stop and every consecutive leg.
// No return leg to the workplace is included.
func RouteDistance(workplace domain.Point, stops []domain.Stop) float64 {
	if len(stops) == 0 {
		return 0
	}

	total := domain.Haversine(workplace, stops[0].Location)
	for i := 0; i < len(stops)-1; i++ {
		total += domain.Haversine(stops[i].Location, stops[i+1].Location)
	}
	return total
}

// EstimateDuration converts a distance into whole minutes.
func EstimateDuration(distanceKm float64) int {
	return int(math.Round(distanceKm * MinutesPerKm))
}

// nearestNeighborOrder greedily visits the closest unvisited employee,
// starting from the workplace. Ties go to the employee listed first.
func nearestNeighborOrder(cluster Cluster, start domain.Point) []int {
	visited := make([]bool, len(cluster))
	order := make([]int, 0, len(cluster))
	current := start

	for len(order) < len(cluster) {
		best := -1
		bestDistance := math.Inf(1)
		for i, e := range cluster {
			if visited[i] {
				continue
			}
			// Greedy step; strict comparison keeps the first candidate on ties.
			if d := domain.Haversine(current, e.DropOff); best == -1 || d < bestDistance {
				best = i
				bestDistance = d
			}
		}

		visited[best] = true
		order = append(order, best)
		current = cluster[best].DropOff
	}

	return order
}

// angularOrder sorts employees by their bearing angle around the workplace,
// atan2(dLat, dLng). Equal angles keep cluster order.
func angularOrder(cluster Cluster, center domain.Point, reverse bool) []int {
	angles := make([]float64, len(cluster))
	order := make([]int, len(cluster))
	for i, e := range cluster {
		angle := math.Atan2(e.DropOff.Lat-center.Lat, e.DropOff.Lng-center.Lng)
		if reverse {
			angle = -angle
		}
		angles[i] = angle
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case angles[a] < angles[b]:
			return -1
		case angles[a] > angles[b]:
			return 1
		default:
			return 0
		}
	})

	return order
}
