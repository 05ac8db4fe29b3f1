package ports

import (
	"commute-route-service/internal/domain"
	"context"
)

// Port: a boundary for the employee registry.
type EmployeeRepository interface {
	// Return active employees ordered by last name, then first name.
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	// Return a single active employee or domain.ErrNotFound.
	GetEmployee(ctx context.Context, id int64) (domain.Employee, error)
	// Store a new employee and return it with its assigned ID.
	CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error)
	// Overwrite the mutable fields of an active employee and return the stored record.
	// Returns domain.ErrNotFound when e.ID is unknown or inactive.
	UpdateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error)
	// Soft-delete an employee. Returns domain.ErrNotFound for unknown IDs.
	DeactivateEmployee(ctx context.Context, id int64) error
	// Resolve the active employees among ids. Unknown or inactive IDs are skipped.
	FindActiveEmployees(ctx context.Context, ids []int64) ([]domain.Employee, error)
}
