package domain

import "time"

// Shuttle vehicle with a fixed number of passenger seats.
type Vehicle struct {
	ID          int64
	Model       string
	PlateNumber string
	Capacity    int
	Color       string
	Year        int
	Notes       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seat splits employees into those that fit into the vehicle and the overflow.
// Employees are seated in the given order; the first Capacity of them ride.
func (v Vehicle) Seat(employees []Employee) (seated, overflow []Employee) {
	capacity := max(v.Capacity, 0)
	if len(employees) <= capacity {
		return employees, nil
	}
	return employees[:capacity], employees[capacity:]
}
