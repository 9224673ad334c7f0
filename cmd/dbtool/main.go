package main

import (
	"database/sql"
	"escort-route-service/internal/adapters/repositories"
	"escort-route-service/internal/config"
	"escort-route-service/internal/platform/db"
	"log"

	"github.com/joho/godotenv"
)

// dbtool prepares a database for the server: schema plus the seed roster.
// Postgres is used when DATABASE_URL is set, SQLite at DB_PATH otherwise.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	dbPath := config.Get("DB_PATH", "data/app.db")

	conn, dialect, err := db.Open(databaseURL, dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/roster.json")
	initAndSeed(conn, dialect, seedPath)
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string) {
	log.Printf("Initializing database schema... dialect=%s", dialect)
	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding roster...")
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
