package ports

import (
	"commute-route-service/internal/domain"
	"context"
)

// Port: persistence sink and read-back for saved route assignments.
type AssignmentRepository interface {
	// Replace every stored assignment with the given set in one transaction.
	ReplaceAssignments(ctx context.Context, assignments []domain.RouteAssignment) error
	// Return stored assignments ordered by route name, then route order.
	ListAssignments(ctx context.Context) ([]domain.RouteAssignmentView, error)
}

// Optional read-through cache in front of AssignmentRepository.ListAssignments.
type AssignmentCache interface {
	// Return the cached list; ok is false on a miss.
	Get(ctx context.Context) (views []domain.RouteAssignmentView, ok bool, err error)
	Set(ctx context.Context, views []domain.RouteAssignmentView) error
	Invalidate(ctx context.Context) error
}
