package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kiln-atelier-go/internal/db"
	"kiln-atelier-go/internal/firing"
)

func parseTemperatureFilter(s string) (string, bool) {
	switch strings.TrimSpace(s) {
	case "":
		return "", true
	case db.TemperatureHigh, db.TemperatureLow:
		return s, true
	}
	return "", false
}

func parseClayFilter(s string) (string, bool) {
	switch strings.TrimSpace(s) {
	case "":
		return "", true
	case db.ClayStoneware, db.ClayEarthenware, db.ClayPorcelain:
		return s, true
	}
	return "", false
}

// QueueGet is the admin per-stage queue: requested, not yet completed,
// narrowed by temperature/clay and optionally ordered by urgency.
func (s *Server) QueueGet(w http.ResponseWriter, r *http.Request) {
	stage, ok := firing.ParseStage(chi.URLParam(r, "stage"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "stage must be biscuit or emaillage")
		return
	}

	q := r.URL.Query()
	temp, ok := parseTemperatureFilter(q.Get("temperature"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown temperature filter")
		return
	}
	clay, ok := parseClayFilter(q.Get("clay"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown clay filter")
		return
	}
	order, ok := firing.ParseSortOrder(q.Get("sort"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "sort must be urgent-first or urgent-last")
		return
	}

	pieces, err := s.App.Store().Q.ListAllPieces()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	queue := firing.StageQueue(pieces, stage, firing.QueueFilter{
		Temperature: temp,
		Clay:        clay,
		Sort:        order,
	}, time.Now())
	s.writeJSON(w, http.StatusOK, queue)
}

// AdminPiecesGet serves the cross-practician views: everything still
// in the workflow (default) or the history of fully fired pieces.
func (s *Server) AdminPiecesGet(w http.ResponseWriter, r *http.Request) {
	pieces, err := s.App.Store().Q.ListAllPieces()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	switch view := r.URL.Query().Get("view"); view {
	case "", "active":
		s.writeJSON(w, http.StatusOK, firing.ActivePieces(pieces))
	case "history":
		s.writeJSON(w, http.StatusOK, firing.History(pieces))
	default:
		s.writeError(w, http.StatusBadRequest, "view must be active or history")
	}
}

func (s *Server) StatsGet(w http.ResponseWriter, r *http.Request) {
	pieces, err := s.App.Store().Q.ListAllPieces()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, firing.ComputeStats(pieces, time.Now()))
}
