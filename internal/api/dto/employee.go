package dto

import "time"

// Body of POST /employees and PUT /employees/{id}.
// Coordinates are optional; when omitted the drop-off label is geocoded.
type CreateEmployeeRequest struct {
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Title                  string   `json:"title"`
	Email                  string   `json:"email"`
	PhoneNumber            string   `json:"phone_number"`
	HomeAddress            string   `json:"home_address"`
	DropOffPoint           string   `json:"drop_off_point"`
	DropOffLat             *float64 `json:"drop_off_lat"`
	DropOffLng             *float64 `json:"drop_off_lng"`
	NearestPublicTransport string   `json:"nearest_public_transport"`
	Notes                  string   `json:"notes"`
}

type EmployeeResponse struct {
	ID                     int64     `json:"id"`
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name"`
	Title                  string    `json:"title"`
	Email                  string    `json:"email"`
	PhoneNumber            string    `json:"phone_number"`
	HomeAddress            string    `json:"home_address"`
	DropOffPoint           string    `json:"drop_off_point"`
	DropOffLat             float64   `json:"drop_off_lat"`
	DropOffLng             float64   `json:"drop_off_lng"`
	NearestPublicTransport string    `json:"nearest_public_transport"`
	Notes                  string    `json:"notes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}
