package cache

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/db"
	"commute-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLGeocodeCache is a SQL-backed cache mapping addresses to coordinates.
// Address keys are expected to be normalized by the caller.
type SQLGeocodeCache struct {
	DB     *sql.DB
	Driver string
}

func NewSQLGeocodeCache(conn *sql.DB, driver string) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: conn, Driver: driver}
}

// Fetch cached coordinates for an address; ok is false on a miss.
func (s *SQLGeocodeCache) Get(ctx context.Context, address string) (_ domain.Point, ok bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Point{}, false, errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Point{}, false, nil
	}

	q := db.Rebind(s.Driver, `
	SELECT lat, lng
	FROM geocode_cache
	WHERE address = ?;
	`)

	var p domain.Point
	err = s.DB.QueryRowContext(ctx, q, address).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Point{}, false, nil
	}
	if err != nil {
		return domain.Point{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return p, true, nil
}

// Store an address -> coordinate mapping, replacing any previous entry.
func (s *SQLGeocodeCache) Put(ctx context.Context, address string, p domain.Point) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	// Both Postgres and SQLite accept this upsert form.
	q := db.Rebind(s.Driver, `
	INSERT INTO geocode_cache (address, lat, lng)
	VALUES (?, ?, ?)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng;
	`)

	if _, err := s.DB.ExecContext(ctx, q, address, p.Lat, p.Lng); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}

	return nil
}
