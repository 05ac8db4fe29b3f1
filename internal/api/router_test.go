package api

import (
	"bytes"
	"commute-route-service/internal/adapters/geocode"
	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/db"
	"commute-route-service/internal/services"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type testServer struct {
	handler http.Handler
	deps    Deps
}

func newTestServer(t *testing.T, mutate func(*Deps)) *testServer {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.DriverSQLite))

	deps := Deps{
		Employees:   repositories.NewSQLEmployeeRepository(conn, db.DriverSQLite),
		Vehicles:    repositories.NewSQLVehicleRepository(conn, db.DriverSQLite),
		Assignments: repositories.NewSQLAssignmentRepository(conn, db.DriverSQLite),
		DB:          conn,
		Geocoder: geocode.NewMockGeocoder(map[string]domain.Point{
			"350 5th Ave, New York":       {Lat: 40.7484, Lng: -73.9857},
			"Atlantic Terminal, Brooklyn": {Lat: 40.6840, Lng: -73.9772},
		}),
		Labeler: services.NewRouteLabeler(services.DefaultLabelRules),
		NewRand: func() *rand.Rand { return services.NewSeededRand(1) },
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &testServer{handler: NewRouter(deps), deps: deps}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createEmployee(t *testing.T, first string, lat, lng float64, dropOff string) int64 {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/employees", map[string]any{
		"first_name":     first,
		"last_name":      "Test",
		"email":          strings.ToLower(first) + "@example.com",
		"home_address":   "1 Home St",
		"drop_off_point": dropOff,
		"drop_off_lat":   lat,
		"drop_off_lng":   lng,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.EmployeeResponse](t, rec).ID
}

func (s *testServer) createVehicle(t *testing.T, plate string, capacity int) int64 {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/vehicles", dto.CreateVehicleRequest{Model: "Ford Transit", PlateNumber: plate, Capacity: capacity})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.VehicleResponse](t, rec).ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = s.do(t, http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestEmployees_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"first_name":`},
		{"unknown field", `{"first_name":"A","shoe_size":9}`},
		{"missing names", map[string]any{"email": "a@example.com", "drop_off_point": "x", "drop_off_lat": 1, "drop_off_lng": 1}},
		{"bad email", map[string]any{"first_name": "A", "last_name": "B", "email": "nope", "drop_off_point": "x", "drop_off_lat": 1, "drop_off_lng": 1}},
		{"half coordinates", map[string]any{"first_name": "A", "last_name": "B", "email": "a@example.com", "drop_off_point": "x", "drop_off_lat": 1}},
		{"latitude out of range", map[string]any{"first_name": "A", "last_name": "B", "email": "a@example.com", "drop_off_point": "x", "drop_off_lat": 91, "drop_off_lng": 1}},
		{"unknown address", map[string]any{"first_name": "A", "last_name": "B", "email": "a@example.com", "drop_off_point": "Atlantis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/employees", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestEmployees_GeocodesMissingCoordinates(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/employees", map[string]any{
		"first_name":     "Bea",
		"last_name":      "Ortiz",
		"email":          "bea@example.com",
		"drop_off_point": "Atlantic Terminal, Brooklyn",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	e := decode[dto.EmployeeResponse](t, rec)
	assert.InDelta(t, 40.6840, e.DropOffLat, 1e-9)
}

func TestEmployees_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createEmployee(t, "Ann", 40.71, -74.00, "Union Square, Manhattan")

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", decode[dto.EmployeeResponse](t, rec).FirstName)

	rec = s.do(t, http.MethodGet, "/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListEmployeesResponse](t, rec).Employees, 1)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/employees/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVehicles_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/vehicles", dto.CreateVehicleRequest{Model: "Van", PlateNumber: "P", Capacity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/vehicles", dto.CreateVehicleRequest{Model: "Van", PlateNumber: "P", Capacity: 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/vehicles", dto.CreateVehicleRequest{PlateNumber: "P", Capacity: 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.createVehicle(t, "DUP-1", 4)
	rec = s.do(t, http.MethodPost, "/vehicles", dto.CreateVehicleRequest{Model: "Van", PlateNumber: "DUP-1", Capacity: 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestOptimizeSaveAndList(t *testing.T) {
	s := newTestServer(t, nil)

	ids := []int64{
		s.createEmployee(t, "Ann", 40.7359, -73.9911, "Union Square, Manhattan"),
		s.createEmployee(t, "Bob", 40.7411, -73.9897, "Flatiron, Manhattan"),
		s.createEmployee(t, "Cat", 40.6840, -73.9772, "Atlantic Terminal, Brooklyn"),
	}
	van := s.createVehicle(t, "NYC-1", 4)

	rec := s.do(t, http.MethodPost, "/routes/optimize", dto.OptimizeRequest{
		WorkplaceAddress: "350 5th Ave, New York",
		EmployeeIDs:      ids,
		VehicleIDs:       []int64{van},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.OptimizeResponse](t, rec)
	assert.InDelta(t, 40.7484, res.Workplace.Lat, 1e-9)
	require.Len(t, res.Routes, 1)
	route := res.Routes[0]
	assert.Equal(t, van, route.VehicleID)
	assert.Equal(t, "Manhattan Route", route.RouteName)
	assert.Len(t, route.Stops, 3)
	assert.Len(t, route.Alternatives, 3)
	assert.Empty(t, res.Unassigned)

	rec = s.do(t, http.MethodPost, "/routes/assignments", dto.SaveAssignmentsRequest{Routes: res.Routes})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/routes/assignments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListAssignmentsResponse](t, rec)
	require.Len(t, list.Assignments, 3)
	for i, a := range list.Assignments {
		assert.Equal(t, i+1, a.RouteOrder)
		assert.Equal(t, route.Stops[i].EmployeeID, a.EmployeeID)
		assert.Equal(t, "NYC-1", a.VehiclePlateNumber)
		assert.InDelta(t, route.TotalDistanceKm, a.EstimatedDistanceKm, 1e-9)
	}
}

func TestOptimize_ReportsUnassigned(t *testing.T) {
	s := newTestServer(t, nil)

	ids := []int64{
		s.createEmployee(t, "Ann", 40.7359, -73.9911, "Stop A"),
		s.createEmployee(t, "Bob", 40.7359, -73.9911, "Stop B"),
	}
	car := s.createVehicle(t, "NYC-2", 1)

	lat, lng := 40.7484, -73.9857
	rec := s.do(t, http.MethodPost, "/routes/optimize", dto.OptimizeRequest{
		WorkplaceLat: &lat,
		WorkplaceLng: &lng,
		EmployeeIDs:  ids,
		VehicleIDs:   []int64{car},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.OptimizeResponse](t, rec)
	require.Len(t, res.Routes, 1)
	assert.Len(t, res.Routes[0].Stops, 1)
	assert.Len(t, res.Unassigned, 1)
}

func TestOptimize_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee(t, "Ann", 40.7359, -73.9911, "Stop A")
	van := s.createVehicle(t, "NYC-1", 4)
	lat := 40.7

	tests := []struct {
		name string
		req  dto.OptimizeRequest
	}{
		{"no ids", dto.OptimizeRequest{WorkplaceAddress: "350 5th Ave, New York"}},
		{"no workplace", dto.OptimizeRequest{EmployeeIDs: []int64{emp}, VehicleIDs: []int64{van}}},
		{"half workplace", dto.OptimizeRequest{WorkplaceLat: &lat, EmployeeIDs: []int64{emp}, VehicleIDs: []int64{van}}},
		{"unknown workplace", dto.OptimizeRequest{WorkplaceAddress: "Atlantis", EmployeeIDs: []int64{emp}, VehicleIDs: []int64{van}}},
		{"unknown employees", dto.OptimizeRequest{WorkplaceAddress: "350 5th Ave, New York", EmployeeIDs: []int64{999}, VehicleIDs: []int64{van}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/routes/optimize", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestOptimize_DefaultWorkplace(t *testing.T) {
	s := newTestServer(t, func(d *Deps) {
		d.DefaultWorkplace = &domain.Point{Lat: 40.7484, Lng: -73.9857}
		d.DefaultWorkplaceAddress = "HQ"
	})
	emp := s.createEmployee(t, "Ann", 40.7359, -73.9911, "Stop A")
	van := s.createVehicle(t, "NYC-1", 4)

	rec := s.do(t, http.MethodPost, "/routes/optimize", dto.OptimizeRequest{EmployeeIDs: []int64{emp}, VehicleIDs: []int64{van}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "HQ", decode[dto.OptimizeResponse](t, rec).Workplace.Address)
}

func TestSaveAssignments_RejectsUnknownReferences(t *testing.T) {
	s := newTestServer(t, nil)

	body := dto.SaveAssignmentsRequest{Routes: []dto.RouteResponse{{
		VehicleID: 42,
		RouteName: "Ghost Route",
		Stops:     []dto.StopResponse{{EmployeeID: 7, Position: 1}},
	}}}
	rec := s.do(t, http.MethodPost, "/routes/assignments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(d *Deps) {
		d.Limiter = rate.NewLimiter(rate.Limit(0.001), 1)
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/employees", nil).Code)

	rec := s.do(t, http.MethodGet, "/employees", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/employees", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="GET /employees",status="200"}`)
}

func TestEmployees_Update(t *testing.T) {
	s := newTestServer(t, nil)
	ann := s.createEmployee(t, "Ann", 40.7359, -73.9911, "Union Square, Manhattan")
	s.createEmployee(t, "Bob", 40.7411, -73.9897, "Flatiron, Manhattan")

	path := fmt.Sprintf("/employees/%d", ann)
	rec := s.do(t, http.MethodPut, path, map[string]any{
		"first_name":     "Ann",
		"last_name":      "Park",
		"email":          "ann.park@example.com",
		"drop_off_point": "Atlantic Terminal, Brooklyn",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.EmployeeResponse](t, rec)
	assert.Equal(t, ann, updated.ID)
	assert.Equal(t, "Park", updated.LastName)
	assert.InDelta(t, 40.6840, updated.DropOffLat, 1e-9, "drop-off geocoded")

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann.park@example.com", decode[dto.EmployeeResponse](t, rec).Email)

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
	}{
		{"missing name", path, map[string]any{"last_name": "Park", "email": "a@example.com", "drop_off_point": "X", "drop_off_lat": 40.7, "drop_off_lng": -73.9}, http.StatusBadRequest},
		{"taken email", path, map[string]any{"first_name": "Ann", "last_name": "Park", "email": "bob@example.com", "drop_off_point": "X", "drop_off_lat": 40.7, "drop_off_lng": -73.9}, http.StatusBadRequest},
		{"unknown id", "/employees/999", map[string]any{"first_name": "Ann", "last_name": "Park", "email": "z@example.com", "drop_off_point": "X", "drop_off_lat": 40.7, "drop_off_lng": -73.9}, http.StatusNotFound},
		{"bad id", "/employees/abc", map[string]any{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, nil).Code)
	rec = s.do(t, http.MethodPut, path, map[string]any{
		"first_name": "Ann", "last_name": "Park", "email": "ann.park@example.com",
		"drop_off_point": "X", "drop_off_lat": 40.7, "drop_off_lng": -73.9,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "inactive employees cannot be edited")
}

func TestVehicles_Update(t *testing.T) {
	s := newTestServer(t, nil)
	van := s.createVehicle(t, "NYC-1", 4)
	s.createVehicle(t, "NYC-2", 6)

	path := fmt.Sprintf("/vehicles/%d", van)
	rec := s.do(t, http.MethodPut, path, dto.CreateVehicleRequest{Model: "Ford Transit XL", PlateNumber: "NYC-1", Capacity: 8, Color: "White"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.VehicleResponse](t, rec)
	assert.Equal(t, 8, updated.Capacity)
	assert.Equal(t, "Ford Transit XL", updated.Model)

	rec = s.do(t, http.MethodPut, path, dto.CreateVehicleRequest{Model: "Van", PlateNumber: "NYC-1", Capacity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, dto.CreateVehicleRequest{Model: "Van", PlateNumber: "NYC-2", Capacity: 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")

	rec = s.do(t, http.MethodPut, "/vehicles/999", dto.CreateVehicleRequest{Model: "Van", PlateNumber: "NYC-9", Capacity: 4})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, nil).Code)
	rec = s.do(t, http.MethodPut, path, dto.CreateVehicleRequest{Model: "Van", PlateNumber: "NYC-1", Capacity: 4})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveAssignments_RejectsDeactivatedEmployee(t *testing.T) {
	s := newTestServer(t, nil)
	ann := s.createEmployee(t, "Ann", 40.7359, -73.9911, "Stop A")
	van := s.createVehicle(t, "NYC-1", 4)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, fmt.Sprintf("/employees/%d", ann), nil).Code)

	body := dto.SaveAssignmentsRequest{Routes: []dto.RouteResponse{{
		VehicleID: van,
		RouteName: "Route 1 Stops",
		Stops:     []dto.StopResponse{{EmployeeID: ann, Position: 1}},
	}}}
	rec := s.do(t, http.MethodPost, "/routes/assignments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, fmt.Sprintf("employee %d is not active", ann), decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/routes/assignments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.ListAssignmentsResponse](t, rec).Assignments)
}

func TestOptimize_UnknownWorkplaceMessageKeepsAddress(t *testing.T) {
	s := newTestServer(t, nil)
	emp := s.createEmployee(t, "Ann", 40.7359, -73.9911, "Stop A")
	van := s.createVehicle(t, "NYC-1", 4)

	rec := s.do(t, http.MethodPost, "/routes/optimize", dto.OptimizeRequest{
		WorkplaceAddress: "Suite 5: Atlantis",
		EmployeeIDs:      []int64{emp},
		VehicleIDs:       []int64{van},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, `address "Suite 5: Atlantis" not found`, decode[map[string]string](t, rec)["error"])
}
