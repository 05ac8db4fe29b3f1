package services

import (
	"commute-route-service/internal/domain"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Number of reassignment passes performed by ClusterEmployees.
// There is no convergence check; every call runs exactly this many passes.
const ClusterIterations = 10

// Cluster is a group of employees meant to ride in the same vehicle.
type Cluster []domain.Employee

type centroid struct {
	lat float64
	lng float64
}

// ClusterEmployees partitions employees into at most k groups by geographic proximity.
//
// With no more employees than groups every employee forms its own cluster.
// Otherwise a k-means style heuristic runs: each centroid starts at the drop-off
// point of an employee drawn independently from rng, so two centroids may share
// a starting employee. Employees join the nearest centroid
// (haversine, ties to the lowest index) and centroids move to the arithmetic
// mean of their members. Empty clusters keep their centroid and are left out
// of the result, which preserves centroid order.
//
// The partition depends on rng; every employee appears in exactly one cluster.
func ClusterEmployees(employees []domain.Employee, k int, rng *rand.Rand) ([]Cluster, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster employees: %w", domain.Invalidf("cluster count must be positive, got %d", k))
	}

	if len(employees) <= k {
		clusters := make([]Cluster, 0, len(employees))
		for _, e := range employees {
			clusters = append(clusters, Cluster{e})
		}
		return clusters, nil
	}

	if rng == nil {
		return nil, errors.New("cluster employees: random source must be non-nil")
	}

	seeds := make([]int, k)
	for i := range seeds {
		seeds[i] = rng.IntN(len(employees))
	}

	return kMeans(employees, seeds), nil
}

// kMeans runs the reassignment passes from centroids placed on employees[seeds[i]].
// A duplicated seed starts out empty, since ties go to the lower index; it only
// gains members if the earlier centroid later moves away from it.
func kMeans(employees []domain.Employee, seeds []int) []Cluster {
	k := len(seeds)
	centroids := make([]centroid, k)
	for i, ei := range seeds {
		seed := employees[ei].DropOff
		centroids[i] = centroid{lat: seed.Lat, lng: seed.Lng}
	}

	membership := make([]int, len(employees))
	for iteration := 0; iteration < ClusterIterations; iteration++ {
		for ei, e := range employees {
			membership[ei] = nearestCentroid(e.DropOff, centroids)
		}

		sums := make([]centroid, k)
		counts := make([]int, k)
		for ei, e := range employees {
			ci := membership[ei]
			sums[ci].lat += e.DropOff.Lat
			sums[ci].lng += e.DropOff.Lng
			counts[ci]++
		}

		for ci := range centroids {
			if counts[ci] == 0 {
				continue
			}
			centroids[ci] = centroid{
				lat: sums[ci].lat / float64(counts[ci]),
				lng: sums[ci].lng / float64(counts[ci]),
			}
		}
	}

	grouped := make([]Cluster, k)
	for ei, e := range employees {
		ci := membership[ei]
		grouped[ci] = append(grouped[ci], e)
	}

	clusters := make([]Cluster, 0, k)
	for _, c := range grouped {
		if len(c) > 0 {
			clusters = append(clusters, c)
		}
	}

	return clusters
}

func nearestCentroid(p domain.Point, centroids []centroid) int {
	best := 0
	bestDistance := 0.0
	for i, c := range centroids {
		d := domain.Haversine(p, domain.Point{Lat: c.lat, Lng: c.lng})
		// Strict comparison keeps the first centroid on ties.
		if i == 0 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	return best
}
