package main

import (
	"commute-route-service/internal/adapters/cache"
	"commute-route-service/internal/adapters/geocode"
	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/api"
	"commute-route-service/internal/config"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/db"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	config.Load()

	databaseURL := config.Get("DATABASE_URL", "")
	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/fleet.json")
	port := config.Get("PORT", "8080")

	conn, driver, err := db.OpenFromEnv(databaseURL, dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, driver, seedPath); err != nil {
		log.Fatal(err)
	}

	deps := api.Deps{
		Employees:           repositories.NewSQLEmployeeRepository(conn, driver),
		Vehicles:            repositories.NewSQLVehicleRepository(conn, driver),
		Assignments:         repositories.NewSQLAssignmentRepository(conn, driver),
		DB:                  conn,
		SimilarityThreshold: config.GetFloat("SIMILARITY_THRESHOLD", services.DefaultSimilarityThreshold),
		NewRand:             services.NewRand,
	}

	if c := newAssignmentCache(ctx); c != nil {
		deps.Cache = c
	}

	if g := newGeocoder(conn, driver); g != nil {
		deps.Geocoder = g
	}

	labeler, err := newLabeler(config.Get("ROUTE_LABELS_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}
	deps.Labeler = labeler

	deps.DefaultWorkplaceAddress = config.Get("WORKPLACE_ADDRESS", "")
	lat, okLat := config.GetOptionalFloat("WORKPLACE_LAT")
	lng, okLng := config.GetOptionalFloat("WORKPLACE_LNG")
	if okLat && okLng {
		p := domain.Point{Lat: lat, Lng: lng}
		if !p.Valid() {
			log.Fatalf("WORKPLACE_LAT/WORKPLACE_LNG out of range: %v", p)
		}
		deps.DefaultWorkplace = &p
	}

	if rps := config.GetFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		deps.Limiter = rate.NewLimiter(rate.Limit(rps), config.GetInt("RATE_LIMIT_BURST", 20))
		log.Printf("rate limiting enabled rps=%.2f", rps)
	}

	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s driver=%s", port, driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn, driver); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file %q not found, skipping seed", seedPath)
		return nil
	}

	seeded, err := repositories.SeedFromJSON(ctx, conn, driver, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if seeded {
		log.Printf("seeded sample fleet from %q", seedPath)
	}

	return nil
}

// newAssignmentCache returns nil when REDIS_URL is unset or unreachable;
// assignments are then always read from the database.
func newAssignmentCache(ctx context.Context) ports.AssignmentCache {
	url := config.Get("REDIS_URL", "")
	if url == "" {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rdb, err := cache.NewRedisClient(pingCtx, url)
	if err != nil {
		log.Printf("assignment cache disabled: %v", err)
		return nil
	}

	ttl := config.GetDuration("ASSIGNMENT_CACHE_TTL", 5*time.Minute)
	log.Printf("assignment cache enabled ttl=%s", ttl)
	return cache.NewRedisAssignmentCache(rdb, ttl)
}

// newGeocoder returns nil without ORS_API_KEY; requests must then carry coordinates.
func newGeocoder(conn *sql.DB, driver string) ports.Geocoder {
	key := config.Get("ORS_API_KEY", "")
	if key == "" {
		log.Println("ORS_API_KEY not set, address geocoding disabled")
		return nil
	}

	g, err := geocode.NewORSGeocoder(key, cache.NewSQLGeocodeCache(conn, driver))
	if err != nil {
		log.Printf("address geocoding disabled: %v", err)
		return nil
	}
	return g
}

func newLabeler(path string) (*services.RouteLabeler, error) {
	if path == "" {
		return services.NewRouteLabeler(services.DefaultLabelRules), nil
	}

	rules, err := services.LoadLabelRules(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d route label rules from %q", len(rules), path)
	return services.NewRouteLabeler(rules), nil
}
