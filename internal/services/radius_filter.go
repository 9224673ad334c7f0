package services

import (
	"escort-route-service/internal/domain"
	"fmt"
)

// FilterByRadius splits the roster into people within maxMeters of the hub
// (great-circle) and a warning for each one left out. A non-positive radius
// keeps everyone.
func FilterByRadius(hub domain.Coordinates, roster []domain.Person, maxMeters float64) ([]domain.Person, []string) {
	if maxMeters <= 0 {
		return roster, nil
	}

	kept := make([]domain.Person, 0, len(roster))
	var warnings []string
	for _, p := range roster {
		d := domain.HaversineMeters(hub, p.Location)
		if d > maxMeters {
			warnings = append(warnings, fmt.Sprintf(
				"person %s excluded: %.1f km from hub exceeds %.1f km", p.ID, d/1000, maxMeters/1000,
			))
			continue
		}
		kept = append(kept, p)
	}
	return kept, warnings
}
