package ports

import (
	"commute-route-service/internal/domain"
	"context"
)

// Port: a boundary for the vehicle registry.
type VehicleRepository interface {
	// Return active vehicles ordered by model.
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (domain.Vehicle, error)
	CreateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	// Same contract as EmployeeRepository.UpdateEmployee.
	UpdateVehicle(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	DeactivateVehicle(ctx context.Context, id int64) error
	// Resolve the active vehicles with a positive capacity among ids.
	FindActiveVehicles(ctx context.Context, ids []int64) ([]domain.Vehicle, error)
}
