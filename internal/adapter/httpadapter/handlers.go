package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
)

const maxBodyBytes = 64 << 10

type assistantRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp := s.assistant.Resolve(r.Context(), strings.TrimSpace(req.SessionID), req.Message)
	writeJSON(w, http.StatusOK, resp)
}

// handleGeocode never fails: unresolvable places get the region center.
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.incidents.Locate(r.Context(), r.URL.Query().Get("place")))
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.incidents.Near(r.Context(), q.Get("place"), q.Get("severity"))
	if err != nil {
		s.logger.Error("incident query failed", "place", q.Get("place"), "error", err)
		writeError(w, http.StatusInternalServerError, "incident query failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var req domain.NewIncident
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inc, err := s.incidents.Create(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrInvalidIncident):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("incident create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "incident create failed")
	default:
		writeJSON(w, http.StatusCreated, inc)
	}
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	inc, err := s.incidents.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrIncidentNotFound):
		writeError(w, http.StatusNotFound, "incident not found")
	case err != nil:
		s.logger.Error("incident lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "incident lookup failed")
	default:
		writeJSON(w, http.StatusOK, inc)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
