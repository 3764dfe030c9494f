package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kiln-atelier-go/internal/app"
	"kiln-atelier-go/internal/firing"
)

type stageRequest struct {
	Stage string `json:"stage"`
	Date  string `json:"date"` // yyyy-mm-dd
}

type stageCompleteRequest struct {
	Stage string `json:"stage"`
}

// PieceSubmitPost accepts a new piece draft from the authenticated
// user. Admins may submit pieces of their own too; ownership follows
// the submitter.
func (s *Server) PieceSubmitPost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var draft firing.Draft
	if !s.decode(w, r, &draft) {
		return
	}

	params, err := firing.NewPiece(draft, app.Principal(u))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	id, err := s.App.Store().Q.CreatePiece(params)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	p, err := s.App.Store().Q.GetPieceByID(id)
	if err != nil || p == nil {
		s.writeDomainError(w, err)
		return
	}

	s.App.Log().Info("piece submitted", "piece", id, "by", u.UID, "biscuit_already_done", p.BiscuitAlreadyDone)
	s.writeJSON(w, http.StatusCreated, p)
}

// PiecesGet returns the caller's own pieces split into active and
// completed, newest first.
func (s *Server) PiecesGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	pieces, err := s.App.Store().Q.ListPiecesByOwner(u.UID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, firing.SplitOwn(pieces))
}

func (s *Server) PieceGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	p, err := s.App.Store().Q.GetPieceByID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if p == nil {
		s.writeError(w, http.StatusNotFound, "piece not found")
		return
	}
	if !firing.CanView(*p, app.Principal(u)) {
		s.writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// PieceRequestPost asks for a firing slot on one stage. The engine
// enforces ownership, stage order and the no-re-request rule; a
// rejection leaves the piece untouched.
func (s *Server) PieceRequestPost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req stageRequest
	if !s.decode(w, r, &req) {
		return
	}
	stage, ok := firing.ParseStage(req.Stage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "stage must be biscuit or emaillage")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.App.Store().Q.GetPieceByID(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if p == nil {
		s.writeError(w, http.StatusNotFound, "piece not found")
		return
	}

	update, err := firing.RequestStage(*p, stage, req.Date, app.Principal(u))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.App.Store().Q.UpdatePiece(id, update); err != nil {
		s.writeDomainError(w, err)
		return
	}

	p, err = s.App.Store().Q.GetPieceByID(id)
	if err != nil || p == nil {
		s.writeDomainError(w, err)
		return
	}

	ev := app.SSEEvent{Type: "piece:requested", Data: map[string]any{
		"piece_id": id, "stage": string(stage), "date": req.Date,
	}}
	s.App.SSE().BroadcastRole(firing.RoleAdmin, ev)
	s.App.SSE().BroadcastPieces(ev)

	s.App.Log().Info("firing requested", "piece", id, "stage", stage, "date", req.Date, "by", u.UID)
	s.writeJSON(w, http.StatusOK, p)
}

// PieceCompletePost marks a firing done. Admin only (enforced by the
// route group and again by the engine). Completion emits a
// notification intent towards the piece owner.
func (s *Server) PieceCompletePost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req stageCompleteRequest
	if !s.decode(w, r, &req) {
		return
	}
	stage, ok := firing.ParseStage(req.Stage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "stage must be biscuit or emaillage")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.App.Store().Q.GetPieceByID(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if p == nil {
		s.writeError(w, http.StatusNotFound, "piece not found")
		return
	}

	update, intent, err := firing.CompleteStage(*p, stage, app.Principal(u), time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.App.Store().Q.UpdatePiece(id, update); err != nil {
		s.writeDomainError(w, err)
		return
	}

	p, err = s.App.Store().Q.GetPieceByID(id)
	if err != nil || p == nil {
		s.writeDomainError(w, err)
		return
	}

	ev := app.SSEEvent{Type: "piece:completed", Data: map[string]any{
		"piece_id": intent.PieceID, "stage": string(intent.Stage),
	}}
	s.App.SSE().BroadcastUser(intent.OwnerUID, ev)
	s.App.SSE().BroadcastRole(firing.RoleAdmin, ev)
	s.App.SSE().BroadcastPieces(ev)

	s.App.Log().Info("firing completed, owner notified",
		"piece", intent.PieceID, "stage", intent.Stage, "owner_email", intent.OwnerEmail, "by", u.UID)
	s.writeJSON(w, http.StatusOK, p)
}

// PieceDelete removes a piece permanently, any stage. Deleting an
// absent id succeeds: the caller wanted it gone and it is.
func (s *Server) PieceDelete(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	id := chi.URLParam(r, "id")

	p, err := s.App.Store().Q.GetPieceByID(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if p != nil {
		if !firing.CanDelete(*p, app.Principal(u)) {
			s.writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if err := s.App.Store().Q.DeletePiece(id); err != nil {
			s.writeDomainError(w, err)
			return
		}
		ev := app.SSEEvent{Type: "piece:deleted", Data: map[string]any{"piece_id": id}}
		s.App.SSE().BroadcastRole(firing.RoleAdmin, ev)
		s.App.SSE().BroadcastPieces(ev)
		s.App.Log().Info("piece deleted", "piece", id, "by", u.UID)
	}
	w.WriteHeader(http.StatusNoContent)
}
