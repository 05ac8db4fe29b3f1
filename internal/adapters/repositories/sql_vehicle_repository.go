package repositories

import (
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQL-backed implementation of the VehicleRepository port.
type SQLVehicleRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLVehicleRepository(conn *sql.DB, driver string) *SQLVehicleRepository {
	return &SQLVehicleRepository{DB: conn, Driver: driver}
}

const vehicleColumns = `
	id,
	model,
	plate_number,
	capacity,
	color,
	year,
	notes,
	is_active,
	created_at,
	updated_at`

func scanVehicle(row rowScanner) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(
		&v.ID,
		&v.Model,
		&v.PlateNumber,
		&v.Capacity,
		&v.Color,
		&v.Year,
		&v.Notes,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func (s *SQLVehicleRepository) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("vehicle repository: DB is nil")
	}

	query := `SELECT` + vehicleColumns + `
	FROM vehicles
	WHERE is_active = TRUE
	ORDER BY model, id;
	`
	return s.queryVehicles(ctx, "list vehicles", query)
}

func (s *SQLVehicleRepository) GetVehicle(ctx context.Context, id int64) (domain.Vehicle, error) {
	if s.DB == nil {
		return domain.Vehicle{}, errors.New("vehicle repository: DB is nil")
	}

	query := `SELECT` + vehicleColumns + `
	FROM vehicles
	WHERE id = ? AND is_active = TRUE;
	`
	v, err := scanVehicle(s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vehicle{}, fmt.Errorf("get vehicle %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return v, nil
}

func (s *SQLVehicleRepository) CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	if s.DB == nil {
		return domain.Vehicle{}, errors.New("vehicle repository: DB is nil")
	}

	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	v.IsActive = true

	query := `
	INSERT INTO vehicles (
		model, plate_number, capacity, color, year, notes,
		is_active, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`
	err := s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, query),
		v.Model, v.PlateNumber, v.Capacity, v.Color, v.Year, v.Notes,
		v.IsActive, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if isUniqueViolation(err) {
		return domain.Vehicle{}, fmt.Errorf("create vehicle: %w", domain.Invalidf("plate %q already registered", v.PlateNumber))
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

func (s *SQLVehicleRepository) UpdateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	if s.DB == nil {
		return domain.Vehicle{}, errors.New("vehicle repository: DB is nil")
	}

	query := `
	UPDATE vehicles SET
		model = ?, plate_number = ?, capacity = ?, color = ?, year = ?, notes = ?, updated_at = ?
	WHERE id = ? AND is_active = TRUE;
	`
	res, err := s.DB.ExecContext(ctx, db.Rebind(s.Driver, query),
		v.Model, v.PlateNumber, v.Capacity, v.Color, v.Year, v.Notes, time.Now().UTC(),
		v.ID,
	)
	if isUniqueViolation(err) {
		return domain.Vehicle{}, fmt.Errorf("update vehicle %d: %w", v.ID, domain.Invalidf("plate %q already registered", v.PlateNumber))
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("update vehicle %d: %w", v.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("update vehicle %d: rows affected: %w", v.ID, err)
	}
	if n == 0 {
		return domain.Vehicle{}, fmt.Errorf("update vehicle %d: %w", v.ID, domain.ErrNotFound)
	}

	return s.GetVehicle(ctx, v.ID)
}

func (s *SQLVehicleRepository) DeactivateVehicle(ctx context.Context, id int64) error {
	if s.DB == nil {
		return errors.New("vehicle repository: DB is nil")
	}

	query := `UPDATE vehicles SET is_active = FALSE, updated_at = ? WHERE id = ? AND is_active = TRUE;`
	res, err := s.DB.ExecContext(ctx, db.Rebind(s.Driver, query), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate vehicle %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate vehicle %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate vehicle %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLVehicleRepository) FindActiveVehicles(ctx context.Context, ids []int64) ([]domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("vehicle repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Vehicle{}, nil
	}

	in, args := inClause(ids)
	query := `SELECT` + vehicleColumns + `
	FROM vehicles
	WHERE is_active = TRUE AND capacity > 0 AND id IN (` + in + `)
	ORDER BY id;
	`
	return s.queryVehicles(ctx, "find active vehicles", query, args...)
}

func (s *SQLVehicleRepository) queryVehicles(ctx context.Context, op, query string, args ...any) ([]domain.Vehicle, error) {
	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query vehicles table: %w", op, err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 16)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return vehicles, nil
}
