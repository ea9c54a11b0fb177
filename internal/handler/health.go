package handler

import (
	"net/http"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/spec"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// getHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// getOpenAPI serves the embedded OpenAPI document.
func (s *Server) getOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(spec.OpenAPI); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write openapi spec", "error", err)
	}
}
