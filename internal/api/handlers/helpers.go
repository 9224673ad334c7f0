package handlers

import (
	"encoding/json"
	"errors"
	"escort-route-service/internal/domain"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps planning errors onto HTTP statuses. Anything not
// recognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		inputErr *domain.InputError
		capErr   *domain.CapacityError
		solveErr *domain.SolveError
	)

	switch {
	case errors.As(err, &inputErr):
		writeError(w, r, http.StatusBadRequest, inputErr.Error())
	case errors.As(err, &capErr):
		writeError(w, r, http.StatusUnprocessableEntity, capErr.Error())
	case errors.As(err, &solveErr):
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusBadGateway, solveErr.Error())
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
