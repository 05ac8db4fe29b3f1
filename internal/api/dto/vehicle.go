package dto

import "time"

// Body of POST /vehicles and PUT /vehicles/{id}.
type CreateVehicleRequest struct {
	Model       string `json:"model"`
	PlateNumber string `json:"plate_number"`
	Capacity    int    `json:"capacity"`
	Color       string `json:"color"`
	Year        int    `json:"year"`
	Notes       string `json:"notes"`
}

type VehicleResponse struct {
	ID          int64     `json:"id"`
	Model       string    `json:"model"`
	PlateNumber string    `json:"plate_number"`
	Capacity    int       `json:"capacity"`
	Color       string    `json:"color"`
	Year        int       `json:"year"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}
