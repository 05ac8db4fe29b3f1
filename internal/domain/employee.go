package domain

import (
	"strings"
	"time"
)

// Represents a commuter who is dropped off at a fixed point.
// DropOffPoint is the human-readable label of the drop-off location and
// DropOff holds its coordinates. Inactive employees are soft-deleted and
// never take part in route optimization.
type Employee struct {
	ID                     int64
	FirstName              string
	LastName               string
	Title                  string
	Email                  string
	PhoneNumber            string
	HomeAddress            string
	DropOffPoint           string
	DropOff                Point
	NearestPublicTransport string
	Notes                  string
	IsActive               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Name returns the display name used on route stops.
func (e Employee) Name() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
