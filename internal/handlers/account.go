package handlers

import (
	"net/http"
	"strings"

	"kiln-atelier-go/internal/app"
	"kiln-atelier-go/internal/db"
)

type accountUpdateRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type cascadeResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type accountUpdateResponse struct {
	User    *db.User      `json:"user"`
	Cascade cascadeResult `json:"cascade"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) AccountGet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.App.CurrentUser(r))
}

// AccountPut edits the caller's profile, then rewrites the denormalized
// submittedBy snapshot on their existing pieces. The cascade is best
// effort: the profile edit stands even when some pieces fail, and the
// response reports how far the cascade got.
func (s *Server) AccountPut(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req accountUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	email := app.NormalizeEmail(req.Email)
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if email == "" || first == "" || last == "" {
		s.writeError(w, http.StatusBadRequest, "email, firstName and lastName are required")
		return
	}

	if other, err := s.App.Store().Q.GetUserByEmail(email); err != nil {
		s.writeDomainError(w, err)
		return
	} else if other != nil && other.UID != u.UID {
		s.writeError(w, http.StatusConflict, "email already in use")
		return
	}

	if err := s.App.Store().Q.UpdateUser(db.UpdateUserParams{
		UID:       u.UID,
		Email:     email,
		FirstName: first,
		LastName:  last,
	}); err != nil {
		s.writeDomainError(w, err)
		return
	}

	// One write per piece; a single failure must not abort the rest.
	var res cascadeResult
	sb := db.Submitter{UID: u.UID, Email: email, FirstName: first, LastName: last}
	ids, err := s.App.Store().Q.ListPieceIDsByOwner(u.UID)
	if err != nil {
		s.App.Log().Error("profile cascade: listing pieces failed", "uid", u.UID, "err", err)
	} else {
		for _, id := range ids {
			if err := s.App.Store().Q.UpdatePieceSubmitter(id, sb); err != nil {
				res.Failed++
				s.App.Log().Error("profile cascade: piece update failed", "piece", id, "err", err)
				continue
			}
			res.Updated++
		}
	}

	updated, err := s.App.Store().Q.GetUserByUID(u.UID)
	if err != nil || updated == nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accountUpdateResponse{User: updated, Cascade: res})
}

func (s *Server) PasswordPost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req passwordChangeRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !app.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		s.writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := app.HashPassword(req.NewPassword)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if err := s.App.Store().Q.SetUserPassword(u.UID, hash); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
