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

// SQL-backed implementation of the AssignmentRepository port.
type SQLAssignmentRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLAssignmentRepository(conn *sql.DB, driver string) *SQLAssignmentRepository {
	return &SQLAssignmentRepository{DB: conn, Driver: driver}
}

// ReplaceAssignments clears the table and stores the new set atomically.
// A failed insert leaves the previous assignments untouched.
func (s *SQLAssignmentRepository) ReplaceAssignments(ctx context.Context, assignments []domain.RouteAssignment) error {
	if s.DB == nil {
		return errors.New("assignment repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace assignments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_assignments;`); err != nil {
		return fmt.Errorf("replace assignments: clear table: %w", err)
	}

	insertQuery := db.Rebind(s.Driver, `
	INSERT INTO route_assignments (
		vehicle_id, employee_id, route_name, route_order,
		estimated_distance_km, estimated_duration_minutes, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("replace assignments: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, a := range assignments {
		_, err := stmt.ExecContext(ctx,
			a.VehicleID, a.EmployeeID, a.RouteName, a.RouteOrder,
			a.EstimatedDistanceKm, a.EstimatedDurationMinutes, now,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("replace assignments: %w",
				domain.Invalidf("row %d references unknown vehicle %d or employee %d", i+1, a.VehicleID, a.EmployeeID))
		}
		if err != nil {
			return fmt.Errorf("replace assignments: insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace assignments: commit tx: %w", err)
	}
	return nil
}

func (s *SQLAssignmentRepository) ListAssignments(ctx context.Context) ([]domain.RouteAssignmentView, error) {
	if s.DB == nil {
		return nil, errors.New("assignment repository: DB is nil")
	}

	query := `
	SELECT
		ra.id,
		ra.vehicle_id,
		ra.employee_id,
		ra.route_name,
		ra.route_order,
		ra.estimated_distance_km,
		ra.estimated_duration_minutes,
		ra.created_at,
		v.model,
		v.plate_number,
		e.first_name,
		e.last_name,
		e.drop_off_point,
		e.drop_off_lat,
		e.drop_off_lng
	FROM route_assignments ra
	JOIN vehicles v ON v.id = ra.vehicle_id
	JOIN employees e ON e.id = ra.employee_id
	ORDER BY ra.route_name, ra.route_order, ra.id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assignments: query route_assignments table: %w", err)
	}
	defer rows.Close()

	views := make([]domain.RouteAssignmentView, 0, 32)
	for rows.Next() {
		var v domain.RouteAssignmentView
		var first, last string
		err := rows.Scan(
			&v.ID,
			&v.VehicleID,
			&v.EmployeeID,
			&v.RouteName,
			&v.RouteOrder,
			&v.EstimatedDistanceKm,
			&v.EstimatedDurationMinutes,
			&v.CreatedAt,
			&v.VehicleModel,
			&v.VehiclePlateNumber,
			&first,
			&last,
			&v.DropOffPoint,
			&v.DropOff.Lat,
			&v.DropOff.Lng,
		)
		if err != nil {
			return nil, fmt.Errorf("list assignments: scan row: %w", err)
		}
		v.EmployeeName = domain.Employee{FirstName: first, LastName: last}.Name()
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: row iteration: %w", err)
	}

	return views, nil
}
