package handlers

import (
	"escort-route-service/internal/api/dto"
	"escort-route-service/internal/ports"
	"log"
	"net/http"
)

// RosterHandler exposes the stored roster.
type RosterHandler struct {
	Repo ports.RosterRepository
}

func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	people, err := h.Repo.ListRoster(r.Context())
	if err != nil {
		log.Printf("list roster failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRosterResponse{
		Roster: make([]dto.PersonResponse, 0, len(people)),
	}
	for _, p := range people {
		res.Roster = append(res.Roster, dto.PersonResponse{
			ID:             p.ID,
			EscortClass:    p.Escort.String(),
			Lat:            p.Location.Lat,
			Lon:            p.Location.Lon,
			ServiceSeconds: p.ServiceSeconds,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
