package geocode

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openrouteservice.org"

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements ports.Geocoder using OpenRouteService (/geocode/search).
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	cache   ports.GeocodeCache
}

// NewORSGeocoder builds a geocoder restricted to US results. cache may be nil.
func NewORSGeocoder(apiKey string, cache ports.GeocodeCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		country: "US",
		cache:   cache,
	}, nil
}

// WithBaseURL points the geocoder at another ORS-compatible host.
func (o *ORSGeocoder) WithBaseURL(baseURL string) *ORSGeocoder {
	o.baseURL = strings.TrimRight(baseURL, "/")
	return o
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves one address, consulting the cache first.
// Addresses with no match return domain.ErrNotFound.
func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Point, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(address)
	if norm == "" {
		return domain.Point{}, fmt.Errorf("geocode: %w", domain.Invalidf("address must be non-empty"))
	}

	if o.cache != nil {
		p, ok, err := o.cache.Get(ctx, norm)
		if err != nil {
			log.Printf("geocode cache read failed address=%q: %v", norm, err)
		} else if ok {
			return p, nil
		}
	}

	p, err := o.search(ctx, norm)
	if err != nil {
		return domain.Point{}, err
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, norm, p); err != nil {
			log.Printf("geocode cache write failed address=%q: %v", norm, err)
		}
	}

	return p, nil
}

func (o *ORSGeocoder) search(ctx context.Context, norm string) (domain.Point, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Point{}, fmt.Errorf("geocode %q: unexpected status: %d", norm, resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: decode response: %w", norm, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Point{}, fmt.Errorf("geocode %q: no results: %w", norm, domain.ErrNotFound)
	}

	// GeoJSON order is [lng, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Point{}, fmt.Errorf("geocode %q: invalid coordinate format", norm)
	}

	p := domain.Point{Lat: coords[1], Lng: coords[0]}
	if !p.Valid() {
		return domain.Point{}, fmt.Errorf("geocode %q: coordinates out of range: %v", norm, p)
	}
	return p, nil
}
