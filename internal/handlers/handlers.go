package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kiln-atelier-go/internal/app"
	"kiln-atelier-go/internal/db"
	"kiln-atelier-go/internal/firing"
)

type Server struct {
	App *app.App
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Anything
// unrecognized is treated as the store being unavailable; the engine
// never retries.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var ve *firing.ValidationError
	if errors.As(err, &ve) {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "fields": ve.Fields})
		return
	}
	var pe *firing.PreconditionError
	if errors.As(err, &pe) {
		s.writeJSON(w, http.StatusConflict, map[string]any{"error": pe.Error(), "condition": pe.Condition})
		return
	}
	var fe *firing.ForbiddenError
	if errors.As(err, &fe) {
		s.writeError(w, http.StatusForbidden, fe.Error())
		return
	}
	if errors.Is(err, db.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.App.Log().Error("store operation failed", "err", err)
	s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	// Bound the body; the photo blob dominates and is capped well below this.
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.App.Store().Ping(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "db not ok")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
