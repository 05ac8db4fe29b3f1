package repositories

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/db"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

func schemaStatements(driver string) []string {
	// Column types differ; table layout is identical across drivers.
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	floatType := "REAL"
	tsType := "TIMESTAMP"
	if driver == db.DriverPostgres {
		idCol = "BIGSERIAL PRIMARY KEY"
		floatType = "DOUBLE PRECISION"
		tsType = "TIMESTAMPTZ"
	}

	createEmployeesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS employees (
		id %[1]s,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL DEFAULT '',
		home_address TEXT NOT NULL,
		drop_off_point TEXT NOT NULL,
		drop_off_lat %[2]s NOT NULL,
		drop_off_lng %[2]s NOT NULL,
		nearest_public_transport TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at %[3]s NOT NULL,
		updated_at %[3]s NOT NULL
	);
	`, idCol, floatType, tsType)

	createVehiclesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS vehicles (
		id %[1]s,
		model TEXT NOT NULL,
		plate_number TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL CHECK (capacity BETWEEN 1 AND 100),
		color TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at %[2]s NOT NULL,
		updated_at %[2]s NOT NULL
	);
	`, idCol, tsType)

	createAssignmentsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS route_assignments (
		id %[1]s,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		employee_id BIGINT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		route_name TEXT NOT NULL,
		route_order INTEGER NOT NULL,
		estimated_distance_km %[2]s NOT NULL,
		estimated_duration_minutes INTEGER NOT NULL,
		created_at %[3]s NOT NULL
	);
	`, idCol, floatType, tsType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat %[1]s NOT NULL,
		lng %[1]s NOT NULL
	);
	`, floatType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_assignments_route_name_order
	ON route_assignments(route_name, route_order);
	`

	return []string{
		createEmployeesQuery,
		createVehiclesQuery,
		createAssignmentsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}
}

// Initialize the database schema for the given driver.
func InitSchema(ctx context.Context, conn *sql.DB, driver string) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements(driver) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type EmployeeSeed struct {
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	Title                  string  `json:"title"`
	Email                  string  `json:"email"`
	PhoneNumber            string  `json:"phone_number"`
	HomeAddress            string  `json:"home_address"`
	DropOffPoint           string  `json:"drop_off_point"`
	DropOffLat             float64 `json:"drop_off_lat"`
	DropOffLng             float64 `json:"drop_off_lng"`
	NearestPublicTransport string  `json:"nearest_public_transport"`
	Notes                  string  `json:"notes"`
}

type VehicleSeed struct {
	Model       string `json:"model"`
	PlateNumber string `json:"plate_number"`
	Capacity    int    `json:"capacity"`
	Color       string `json:"color"`
	Year        int    `json:"year"`
	Notes       string `json:"notes"`
}

type FleetSeed struct {
	Vehicles  []VehicleSeed  `json:"vehicles"`
	Employees []EmployeeSeed `json:"employees"`
}

// Populate empty employee and vehicle tables from a JSON file.
// Seeding is skipped when either table already holds rows.
func SeedFromJSON(ctx context.Context, conn *sql.DB, driver string, jsonPath string) (seeded bool, err error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return false, fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var data FleetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return false, fmt.Errorf("seed fleet: parse json: %w", err)
	}

	var existing int
	countQuery := `SELECT (SELECT COUNT(*) FROM employees) + (SELECT COUNT(*) FROM vehicles);`
	if err := conn.QueryRowContext(ctx, countQuery).Scan(&existing); err != nil {
		return false, fmt.Errorf("seed fleet: count existing rows: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	employees := NewSQLEmployeeRepository(conn, driver)
	vehicles := NewSQLVehicleRepository(conn, driver)
	now := time.Now().UTC()

	for i, v := range data.Vehicles {
		_, err := vehicles.CreateVehicle(ctx, domain.Vehicle{
			Model:       strings.TrimSpace(v.Model),
			PlateNumber: strings.TrimSpace(v.PlateNumber),
			Capacity:    v.Capacity,
			Color:       v.Color,
			Year:        v.Year,
			Notes:       v.Notes,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return false, fmt.Errorf("seed fleet: vehicle at index %d: %w", i+1, err)
		}
	}

	for i, e := range data.Employees {
		_, err := employees.CreateEmployee(ctx, domain.Employee{
			FirstName:              strings.TrimSpace(e.FirstName),
			LastName:               strings.TrimSpace(e.LastName),
			Title:                  e.Title,
			Email:                  strings.TrimSpace(e.Email),
			PhoneNumber:            e.PhoneNumber,
			HomeAddress:            e.HomeAddress,
			DropOffPoint:           strings.TrimSpace(e.DropOffPoint),
			DropOff:                domain.Point{Lat: e.DropOffLat, Lng: e.DropOffLng},
			NearestPublicTransport: e.NearestPublicTransport,
			Notes:                  e.Notes,
			IsActive:               true,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
		if err != nil {
			return false, fmt.Errorf("seed fleet: employee at index %d: %w", i+1, err)
		}
	}

	return true, nil
}
