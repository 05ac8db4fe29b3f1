package services

import (
	"commute-route-service/internal/domain"
	"math"
)

// Relative difference below which two routes count as near-duplicates.
const DefaultSimilarityThreshold = 0.1

// FilterSimilarRoutes drops routes whose distance and duration are both
// within threshold (relative) of a route already kept.
//
// Routes are visited in order. A route similar to a kept one replaces the
// first such kept route only when it is strictly shorter. The input slice is
// not modified.
func FilterSimilarRoutes(routes []domain.OptimizedRoute, threshold float64) []domain.OptimizedRoute {
	kept := make([]domain.OptimizedRoute, 0, len(routes))

	for _, r := range routes {
		idx := -1
		for i, k := range kept {
			if similarRoutes(r, k, threshold) {
				idx = i
				break
			}
		}

		if idx == -1 {
			kept = append(kept, r)
			continue
		}

		if r.TotalDistanceKm < kept[idx].TotalDistanceKm {
			kept[idx] = r
		}
	}

	return kept
}

func similarRoutes(a, b domain.OptimizedRoute, threshold float64) bool {
	distanceDiff := relativeDiff(a.TotalDistanceKm, b.TotalDistanceKm)
	durationDiff := relativeDiff(float64(a.DurationMinutes), float64(b.DurationMinutes))
	return distanceDiff < threshold && durationDiff < threshold
}

// relativeDiff is |a-b| / max(a,b); two zero values are identical.
func relativeDiff(a, b float64) float64 {
	m := math.Max(a, b)
	if m == 0 {
		return 0
	}
	return math.Abs(a-b) / m
}
