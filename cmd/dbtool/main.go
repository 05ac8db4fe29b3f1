package main

import (
	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/config"
	"commute-route-service/internal/platform/db"
	"context"
	"database/sql"
	"flag"
	"log"
)

func main() {
	config.Load()

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/fleet.json"), "path to the fleet seed JSON")
	skipSeed := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	conn, driver, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(context.Background(), conn, driver, *seedPath, *skipSeed)
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver, seedPath string, skipSeed bool) {
	log.Printf("Initializing database schema driver=%s...", driver)
	if err := repositories.InitSchema(ctx, conn, driver); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if skipSeed {
		return
	}

	log.Println("Seeding database...")
	seeded, err := repositories.SeedFromJSON(ctx, conn, driver, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	if !seeded {
		log.Println("Tables already populated, nothing seeded.")
		return
	}
	log.Println("Seeding complete.")
}
