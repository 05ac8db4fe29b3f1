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

// SQL-backed implementation of the EmployeeRepository port.
// Works against both Postgres (pgx) and SQLite.
type SQLEmployeeRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLEmployeeRepository(conn *sql.DB, driver string) *SQLEmployeeRepository {
	return &SQLEmployeeRepository{DB: conn, Driver: driver}
}

const employeeColumns = `
	id,
	first_name,
	last_name,
	title,
	email,
	phone_number,
	home_address,
	drop_off_point,
	drop_off_lat,
	drop_off_lng,
	nearest_public_transport,
	notes,
	is_active,
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Title,
		&e.Email,
		&e.PhoneNumber,
		&e.HomeAddress,
		&e.DropOffPoint,
		&e.DropOff.Lat,
		&e.DropOff.Lng,
		&e.NearestPublicTransport,
		&e.Notes,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (s *SQLEmployeeRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	if s.DB == nil {
		return nil, errors.New("employee repository: DB is nil")
	}

	query := `SELECT` + employeeColumns + `
	FROM employees
	WHERE is_active = TRUE
	ORDER BY last_name, first_name, id;
	`
	return s.queryEmployees(ctx, "list employees", query)
}

func (s *SQLEmployeeRepository) GetEmployee(ctx context.Context, id int64) (domain.Employee, error) {
	if s.DB == nil {
		return domain.Employee{}, errors.New("employee repository: DB is nil")
	}

	query := `SELECT` + employeeColumns + `
	FROM employees
	WHERE id = ? AND is_active = TRUE;
	`
	e, err := scanEmployee(s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Employee{}, fmt.Errorf("get employee %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("get employee %d: %w", id, err)
	}
	return e, nil
}

func (s *SQLEmployeeRepository) CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	if s.DB == nil {
		return domain.Employee{}, errors.New("employee repository: DB is nil")
	}

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.IsActive = true

	query := `
	INSERT INTO employees (
		first_name, last_name, title, email, phone_number, home_address,
		drop_off_point, drop_off_lat, drop_off_lng, nearest_public_transport,
		notes, is_active, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`
	err := s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, query),
		e.FirstName, e.LastName, e.Title, e.Email, e.PhoneNumber, e.HomeAddress,
		e.DropOffPoint, e.DropOff.Lat, e.DropOff.Lng, e.NearestPublicTransport,
		e.Notes, e.IsActive, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if isUniqueViolation(err) {
		return domain.Employee{}, fmt.Errorf("create employee: %w", domain.Invalidf("email %q already registered", e.Email))
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

func (s *SQLEmployeeRepository) UpdateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	if s.DB == nil {
		return domain.Employee{}, errors.New("employee repository: DB is nil")
	}

	query := `
	UPDATE employees SET
		first_name = ?, last_name = ?, title = ?, email = ?, phone_number = ?,
		home_address = ?, drop_off_point = ?, drop_off_lat = ?, drop_off_lng = ?,
		nearest_public_transport = ?, notes = ?, updated_at = ?
	WHERE id = ? AND is_active = TRUE;
	`
	res, err := s.DB.ExecContext(ctx, db.Rebind(s.Driver, query),
		e.FirstName, e.LastName, e.Title, e.Email, e.PhoneNumber,
		e.HomeAddress, e.DropOffPoint, e.DropOff.Lat, e.DropOff.Lng,
		e.NearestPublicTransport, e.Notes, time.Now().UTC(),
		e.ID,
	)
	if isUniqueViolation(err) {
		return domain.Employee{}, fmt.Errorf("update employee %d: %w", e.ID, domain.Invalidf("email %q already registered", e.Email))
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("update employee %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Employee{}, fmt.Errorf("update employee %d: rows affected: %w", e.ID, err)
	}
	if n == 0 {
		return domain.Employee{}, fmt.Errorf("update employee %d: %w", e.ID, domain.ErrNotFound)
	}

	return s.GetEmployee(ctx, e.ID)
}

func (s *SQLEmployeeRepository) DeactivateEmployee(ctx context.Context, id int64) error {
	if s.DB == nil {
		return errors.New("employee repository: DB is nil")
	}

	query := `UPDATE employees SET is_active = FALSE, updated_at = ? WHERE id = ? AND is_active = TRUE;`
	res, err := s.DB.ExecContext(ctx, db.Rebind(s.Driver, query), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate employee %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate employee %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate employee %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLEmployeeRepository) FindActiveEmployees(ctx context.Context, ids []int64) ([]domain.Employee, error) {
	if s.DB == nil {
		return nil, errors.New("employee repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Employee{}, nil
	}

	in, args := inClause(ids)
	query := `SELECT` + employeeColumns + `
	FROM employees
	WHERE is_active = TRUE AND id IN (` + in + `)
	ORDER BY id;
	`
	return s.queryEmployees(ctx, "find active employees", query, args...)
}

func (s *SQLEmployeeRepository) queryEmployees(ctx context.Context, op, query string, args ...any) ([]domain.Employee, error) {
	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query employees table: %w", op, err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 32)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return employees, nil
}
