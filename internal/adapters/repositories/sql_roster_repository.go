package repositories

import (
	"context"
	"database/sql"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/platform/obs"
	"fmt"
)

// SQL-backed implementation of the RosterRepository port. The query is
// portable across the SQLite and Postgres drivers.
type SQLRosterRepository struct{ DB *sql.DB }

func NewSQLRosterRepository(db *sql.DB) *SQLRosterRepository {
	return &SQLRosterRepository{DB: db}
}

// Return every roster member in seed order. Index is left at zero.
func (s *SQLRosterRepository) ListRoster(ctx context.Context) (_ []domain.Person, err error) {
	defer obs.Time(ctx, "roster.ListRoster")(&err)

	if s.DB == nil {
		return nil, errors.New("sql roster repository: DB is nil")
	}

	query := `
	SELECT
		person_id,
		gender,
		lat,
		lon,
		service_seconds
	FROM roster
	ORDER BY position, person_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list roster: query roster table: %w", err)
	}
	defer rows.Close()

	people := make([]domain.Person, 0, 64)
	for rows.Next() {
		var p domain.Person
		var gender string
		if err := rows.Scan(&p.ID, &gender, &p.Location.Lat, &p.Location.Lon, &p.ServiceSeconds); err != nil {
			return nil, fmt.Errorf("list roster: scan row: %w", err)
		}
		p.Escort, err = domain.ParseGender(gender)
		if err != nil {
			return nil, fmt.Errorf("list roster: person_id=%s: %w", p.ID, err)
		}
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roster: row iteration: %w", err)
	}

	return people, nil
}
