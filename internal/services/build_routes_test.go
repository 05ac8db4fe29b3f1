package services

import (
	"commute-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkplace = domain.Point{Lat: 40.7580, Lng: -73.9855}

func vehicle(id int64, capacity int) domain.Vehicle {
	return domain.Vehicle{ID: id, Model: "Van", Capacity: capacity, IsActive: true}
}

func TestBuildRoutes_SingleEmployee(t *testing.T) {
	workplace := domain.Point{Lat: 40.7138, Lng: -74.0060}
	employees := []domain.Employee{employeeAt(1, 40.7128, -74.0060)}

	result, err := BuildRoutes(workplace, employees, []domain.Vehicle{vehicle(7, 4)}, NewSeededRand(1), nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	r := result.Routes[0]
	assert.Equal(t, int64(7), r.VehicleID)
	assert.Equal(t, "Route 1 Stops", r.RouteName)
	require.Len(t, r.Alternatives, 3)
	for _, alt := range r.Alternatives {
		assert.Equal(t, stopIDs(r.Stops), stopIDs(alt.Stops))
	}
	assert.InDelta(t, 0.111, r.TotalDistanceKm, 0.001)
	assert.Equal(t, r.Alternatives[0].Stops, r.Stops, "ties go to the nearest-neighbor variant")
	assert.Empty(t, result.Unassigned)
}

func TestBuildRoutes_CapacityAndCoverage(t *testing.T) {
	employees := []domain.Employee{
		employeeAt(1, 40.70, -74.01),
		employeeAt(2, 40.702, -74.012),
		employeeAt(3, 40.704, -74.008),
		employeeAt(4, 40.80, -73.95),
		employeeAt(5, 40.802, -73.952),
	}
	vehicles := []domain.Vehicle{vehicle(10, 2), vehicle(11, 3)}

	for seed := uint64(0); seed < 30; seed++ {
		result, err := BuildRoutes(testWorkplace, employees, vehicles, NewSeededRand(seed), NewRouteLabeler(DefaultLabelRules))
		require.NoError(t, err)
		require.Len(t, result.Routes, 2, "seed %d", seed)

		// The larger vehicle is paired with the first cluster.
		assert.Equal(t, int64(11), result.Routes[0].VehicleID)
		assert.Equal(t, int64(10), result.Routes[1].VehicleID)

		total := len(result.Unassigned)
		seen := map[int64]bool{}
		for _, r := range result.Routes {
			capacity := 3
			if r.VehicleID == 10 {
				capacity = 2
			}
			assert.LessOrEqual(t, len(r.Stops), capacity)
			total += len(r.Stops)
			for _, s := range r.Stops {
				assert.False(t, seen[s.EmployeeID], "employee %d assigned twice", s.EmployeeID)
				seen[s.EmployeeID] = true
			}
		}
		for _, e := range result.Unassigned {
			assert.False(t, seen[e.ID])
		}
		assert.Equal(t, len(employees), total, "seed %d", seed)
	}
}

func TestBuildRoutes_TruncatesToCapacity(t *testing.T) {
	employees := []domain.Employee{
		employeeAt(1, 40.7, -74.0),
		employeeAt(2, 40.7, -74.0),
		employeeAt(3, 40.7, -74.0),
	}

	result, err := BuildRoutes(testWorkplace, employees, []domain.Vehicle{vehicle(1, 1)}, NewSeededRand(3), nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.Len(t, result.Routes[0].Stops, 1)
	assert.Len(t, result.Unassigned, 2)
}

func TestBuildRoutes_SurplusVehiclesGetNoRoute(t *testing.T) {
	employees := []domain.Employee{employeeAt(1, 40.71, -74.00)}
	vehicles := []domain.Vehicle{vehicle(1, 4), vehicle(2, 12), vehicle(3, 8)}

	result, err := BuildRoutes(testWorkplace, employees, vehicles, NewSeededRand(1), nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, int64(2), result.Routes[0].VehicleID)
}

func TestBuildRoutes_EqualCapacityKeepsInputOrder(t *testing.T) {
	employees := []domain.Employee{employeeAt(1, 40.71, -74.00)}
	vehicles := []domain.Vehicle{vehicle(5, 4), vehicle(6, 4)}

	result, err := BuildRoutes(testWorkplace, employees, vehicles, NewSeededRand(1), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Routes[0].VehicleID)
	assert.Equal(t, int64(5), vehicles[0].ID, "input must not be reordered")
}

func TestBuildRoutes_InvalidInput(t *testing.T) {
	employees := []domain.Employee{employeeAt(1, 40.71, -74.00)}
	vehicles := []domain.Vehicle{vehicle(1, 4)}

	_, err := BuildRoutes(testWorkplace, nil, vehicles, NewSeededRand(1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = BuildRoutes(testWorkplace, employees, nil, NewSeededRand(1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = BuildRoutes(domain.Point{Lat: 91, Lng: 0}, employees, vehicles, NewSeededRand(1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildRoutes_PrimaryIsShortestAlternative(t *testing.T) {
	employees := []domain.Employee{
		employeeAt(1, 40.71, -74.00),
		employeeAt(2, 40.73, -73.95),
		employeeAt(3, 40.78, -73.97),
		employeeAt(4, 40.69, -73.98),
		employeeAt(5, 40.76, -74.01),
	}

	result, err := BuildRoutes(testWorkplace, employees, []domain.Vehicle{vehicle(1, 10)}, NewSeededRand(9), nil)
	require.NoError(t, err)
	r := result.Routes[0]
	for _, alt := range r.Alternatives {
		assert.LessOrEqual(t, r.TotalDistanceKm, alt.TotalDistanceKm)
	}
}

func TestSelectPrimary(t *testing.T) {
	candidates := []domain.RouteCandidate{
		{Variant: domain.VariantNearestNeighbor, TotalDistanceKm: 5},
		{Variant: domain.VariantClockwise, TotalDistanceKm: 4},
		{Variant: domain.VariantCounterClockwise, TotalDistanceKm: 4},
	}
	assert.Equal(t, domain.VariantClockwise, SelectPrimary(candidates).Variant)

	candidates[0].TotalDistanceKm = 4
	assert.Equal(t, domain.VariantNearestNeighbor, SelectPrimary(candidates).Variant)

	assert.Empty(t, SelectPrimary(nil).Stops)
}

func TestBuildRoutes_TimesSquareSingleEmployee(t *testing.T) {
	workplace := domain.Point{Lat: 40.7589, Lng: -73.9851}
	employees := []domain.Employee{employeeAt(1, 40.7580, -73.9855)}

	result, err := BuildRoutes(workplace, employees, []domain.Vehicle{vehicle(1, 4)}, NewSeededRand(5), nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	r := result.Routes[0]
	require.Len(t, r.Alternatives, 3)
	want := domain.Haversine(workplace, employees[0].DropOff)
	for _, alt := range r.Alternatives {
		require.Len(t, alt.Stops, 1)
		assert.Equal(t, 1, alt.Stops[0].Position)
		assert.InDelta(t, want, alt.TotalDistanceKm, 1e-12)
	}
	assert.InDelta(t, 0.1, r.TotalDistanceKm, 0.01)
	assert.Equal(t, domain.VariantNearestNeighbor, SelectPrimary(r.Alternatives).Variant)
}

func TestBuildRoutes_ManhattanAndBrooklynShareVehicle(t *testing.T) {
	workplace := domain.Point{Lat: 40.7589, Lng: -73.9851}
	brooklyn := employeeAt(1, 40.6782, -73.9442)
	manhattan := employeeAt(2, 40.7580, -73.9855)

	result, err := BuildRoutes(workplace, []domain.Employee{brooklyn, manhattan}, []domain.Vehicle{vehicle(1, 2)}, NewSeededRand(2), nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	nn := result.Routes[0].Alternatives[0]
	assert.Equal(t, domain.VariantNearestNeighbor, nn.Variant)
	assert.Equal(t, []int64{2, 1}, stopIDs(nn.Stops))
}
