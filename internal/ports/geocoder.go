package ports

import (
	"commute-route-service/internal/domain"
	"context"
)

// Contract for resolving a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Point, error)
}

// Persistent address -> coordinate store consulted before calling a Geocoder.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (p domain.Point, ok bool, err error)
	Put(ctx context.Context, address string, p domain.Point) error
}
