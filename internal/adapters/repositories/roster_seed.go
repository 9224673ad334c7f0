package repositories

import (
	"database/sql"
	"encoding/json"
	"escort-route-service/internal/domain"
	"fmt"
	"os"
	"strings"
)

type RosterSeed struct {
	ID             string  `json:"id"`
	Gender         string  `json:"gender"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ServiceSeconds float64 `json:"service_seconds"`
}

// Populate the roster table from a JSON array of people. Existing rows with
// the same id are replaced; file order becomes roster order.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed roster: read %q: %w", jsonPath, err)
	}

	var data []RosterSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed roster: parse json: %w", err)
	}

	rows := make([]RosterSeed, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed roster: item %d: id cannot be empty", i+1)
		}
		if _, err := domain.ParseGender(item.Gender); err != nil {
			return fmt.Errorf("seed roster: item %d: %w", i+1, err)
		}
		loc := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !loc.Valid() {
			return fmt.Errorf("seed roster: item %d: coordinates out of range", i+1)
		}
		if item.ServiceSeconds < 0 {
			return fmt.Errorf("seed roster: item %d: service_seconds must not be negative", i+1)
		}
		item.ID = id
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed roster: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := dialect.Placeholder
	query := fmt.Sprintf(`
	INSERT INTO roster (
		person_id,
		gender,
		lat,
		lon,
		service_seconds,
		position
	)
	VALUES (%s, %s, %s, %s, %s, %s)
	ON CONFLICT (person_id) DO UPDATE
	SET gender = EXCLUDED.gender,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		service_seconds = EXCLUDED.service_seconds,
		position = EXCLUDED.position;
	`, p(1), p(2), p(3), p(4), p(5), p(6))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed roster: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.Exec(r.ID, r.Gender, r.Lat, r.Lon, r.ServiceSeconds, i); err != nil {
			return fmt.Errorf("seed roster: insert person_id=%s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed roster: commit tx: %w", err)
	}

	return nil
}
