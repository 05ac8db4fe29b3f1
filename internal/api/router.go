package api

import (
	"commute-route-service/internal/api/handlers"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/metrics"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
	"math/rand/v2"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the adapters and settings the HTTP layer needs.
type Deps struct {
	Employees   ports.EmployeeRepository
	Vehicles    ports.VehicleRepository
	Assignments ports.AssignmentRepository
	Cache       ports.AssignmentCache // optional
	Geocoder    ports.Geocoder        // optional
	Limiter     *rate.Limiter         // optional
	DB          handlers.Pinger       // optional, checked by /health

	Labeler                 *services.RouteLabeler
	SimilarityThreshold     float64
	DefaultWorkplace        *domain.Point
	DefaultWorkplaceAddress string
	NewRand                 func() *rand.Rand
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	employeeHandler := &handlers.EmployeeHandler{Repo: deps.Employees, Geocoder: deps.Geocoder}
	vehicleHandler := &handlers.VehicleHandler{Repo: deps.Vehicles}

	routeHandler := &handlers.RouteHandler{
		Employees:               deps.Employees,
		Vehicles:                deps.Vehicles,
		Assignments:             deps.Assignments,
		Cache:                   deps.Cache,
		Geocoder:                deps.Geocoder,
		Labeler:                 deps.Labeler,
		SimilarityThreshold:     deps.SimilarityThreshold,
		DefaultWorkplace:        deps.DefaultWorkplace,
		DefaultWorkplaceAddress: deps.DefaultWorkplaceAddress,
		NewRand:                 deps.NewRand,
	}

	metrics.Register()

	healthHandler := &handlers.HealthHandler{DB: deps.DB}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /employees", employeeHandler.List)
	mux.HandleFunc("POST /employees", employeeHandler.Create)
	mux.HandleFunc("GET /employees/{id}", employeeHandler.Get)
	mux.HandleFunc("PUT /employees/{id}", employeeHandler.Update)
	mux.HandleFunc("DELETE /employees/{id}", employeeHandler.Delete)

	mux.HandleFunc("GET /vehicles", vehicleHandler.List)
	mux.HandleFunc("POST /vehicles", vehicleHandler.Create)
	mux.HandleFunc("GET /vehicles/{id}", vehicleHandler.Get)
	mux.HandleFunc("PUT /vehicles/{id}", vehicleHandler.Update)
	mux.HandleFunc("DELETE /vehicles/{id}", vehicleHandler.Delete)

	mux.HandleFunc("POST /routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("POST /routes/assignments", routeHandler.SaveAssignments)
	mux.HandleFunc("GET /routes/assignments", routeHandler.ListAssignments)

	var h http.Handler = metricsMiddleware(mux)
	h = rateLimitMiddleware(deps.Limiter, h)
	h = loggingMiddleware(h)
	return requestIDMiddleware(h)
}
