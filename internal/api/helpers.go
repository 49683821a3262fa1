package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeShareError renders the structured error contract of the share service;
// anything else is masked as a generic 500.
func writeShareError(w http.ResponseWriter, err error) {
	var shareErr *share.Error
	if errors.As(err, &shareErr) {
		writeJSON(w, shareErr.Status, shareErr)
		return
	}
	log.Printf("ERROR: Unexpected error from share service: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// @Summary      Health check
// @Description  Reports whether the service and its database are reachable.
// @Tags         system
// @Success      200  {string}  string "ok"
// @Failure      503  {string}  string "Service Unavailable"
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.GetPool().Ping(ctx); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
