package services

import (
	"commute-route-service/internal/domain"
	"context"
	"errors"
	"fmt"
)

type fakeEmployeeRepo struct {
	employees map[int64]domain.Employee
	err       error
}

func newFakeEmployeeRepo(employees ...domain.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{employees: map[int64]domain.Employee{}}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *fakeEmployeeRepo) ListEmployees(context.Context) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out, r.err
}

func (r *fakeEmployeeRepo) GetEmployee(_ context.Context, id int64) (domain.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return domain.Employee{}, domain.ErrNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) CreateEmployee(_ context.Context, e domain.Employee) (domain.Employee, error) {
	e.ID = int64(len(r.employees) + 1)
	r.employees[e.ID] = e
	return e, nil
}

func (r *fakeEmployeeRepo) UpdateEmployee(_ context.Context, e domain.Employee) (domain.Employee, error) {
	if old, ok := r.employees[e.ID]; !ok || !old.IsActive {
		return domain.Employee{}, domain.ErrNotFound
	}
	e.IsActive = true
	r.employees[e.ID] = e
	return e, nil
}

func (r *fakeEmployeeRepo) DeactivateEmployee(_ context.Context, id int64) error {
	delete(r.employees, id)
	return nil
}

// Returns matches in reverse ID order to prove callers restore request order.
func (r *fakeEmployeeRepo) FindActiveEmployees(_ context.Context, ids []int64) ([]domain.Employee, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Employee
	for i := len(ids) - 1; i >= 0; i-- {
		if e, ok := r.employees[ids[i]]; ok && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeVehicleRepo struct {
	vehicles map[int64]domain.Vehicle
}

func newFakeVehicleRepo(vehicles ...domain.Vehicle) *fakeVehicleRepo {
	r := &fakeVehicleRepo{vehicles: map[int64]domain.Vehicle{}}
	for _, v := range vehicles {
		r.vehicles[v.ID] = v
	}
	return r
}

func (r *fakeVehicleRepo) ListVehicles(context.Context) ([]domain.Vehicle, error) { return nil, nil }

func (r *fakeVehicleRepo) GetVehicle(_ context.Context, id int64) (domain.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	return v, nil
}

func (r *fakeVehicleRepo) CreateVehicle(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return v, nil
}

func (r *fakeVehicleRepo) UpdateVehicle(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	if old, ok := r.vehicles[v.ID]; !ok || !old.IsActive {
		return domain.Vehicle{}, domain.ErrNotFound
	}
	v.IsActive = true
	r.vehicles[v.ID] = v
	return v, nil
}

func (r *fakeVehicleRepo) DeactivateVehicle(context.Context, int64) error { return nil }

func (r *fakeVehicleRepo) FindActiveVehicles(_ context.Context, ids []int64) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, id := range ids {
		if v, ok := r.vehicles[id]; ok && v.IsActive && v.Capacity > 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	stored    []domain.RouteAssignment
	replaced  int
	listCalls int
	err       error
}

func (r *fakeAssignmentRepo) ReplaceAssignments(_ context.Context, a []domain.RouteAssignment) error {
	if r.err != nil {
		return r.err
	}
	r.replaced++
	r.stored = append([]domain.RouteAssignment(nil), a...)
	return nil
}

func (r *fakeAssignmentRepo) ListAssignments(context.Context) ([]domain.RouteAssignmentView, error) {
	r.listCalls++
	if r.err != nil {
		return nil, r.err
	}
	views := make([]domain.RouteAssignmentView, 0, len(r.stored))
	for _, a := range r.stored {
		views = append(views, domain.RouteAssignmentView{RouteAssignment: a})
	}
	return views, nil
}

type fakeAssignmentCache struct {
	views       []domain.RouteAssignmentView
	ok          bool
	getErr      error
	invalidated int
}

func (c *fakeAssignmentCache) Get(context.Context) ([]domain.RouteAssignmentView, bool, error) {
	return c.views, c.ok, c.getErr
}

func (c *fakeAssignmentCache) Set(_ context.Context, views []domain.RouteAssignmentView) error {
	c.views, c.ok = views, true
	return nil
}

func (c *fakeAssignmentCache) Invalidate(context.Context) error {
	c.invalidated++
	c.views, c.ok = nil, false
	return nil
}

type fakeGeocoder map[string]domain.Point

func (g fakeGeocoder) Geocode(_ context.Context, address string) (domain.Point, error) {
	if address == "boom" {
		return domain.Point{}, errors.New("upstream unavailable")
	}
	p, ok := g[address]
	if !ok {
		return domain.Point{}, fmt.Errorf("geocode %q: %w", address, domain.ErrNotFound)
	}
	return p, nil
}
