package geocode

import (
	"commute-route-service/internal/domain"
	"context"
	"fmt"
	"strings"
)

// MockGeocoder resolves addresses from a fixed table. Lookups are case-insensitive.
type MockGeocoder struct {
	m map[string]domain.Point
}

func NewMockGeocoder(points map[string]domain.Point) *MockGeocoder {
	m := make(map[string]domain.Point, len(points))
	for addr, p := range points {
		m[mockKey(addr)] = p
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Point, error) {
	p, ok := g.m[mockKey(address)]
	if !ok {
		return domain.Point{}, fmt.Errorf("missing address %q: %w", address, domain.ErrNotFound)
	}
	return p, nil
}

func mockKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
