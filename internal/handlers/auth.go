package handlers

import (
	"net/http"
	"strings"
	"time"

	"kiln-atelier-go/internal/app"
	"kiln-atelier-go/internal/db"
	"kiln-atelier-go/internal/firing"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

// SignupPost creates a practician account. Admins are never created
// through signup; the first admin comes from the bootstrap config.
func (s *Server) SignupPost(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
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

	hash, err := app.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	uid, err := s.App.Store().Q.CreateUser(db.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         firing.RolePractician,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			s.writeError(w, http.StatusConflict, "email already in use")
			return
		}
		s.writeDomainError(w, err)
		return
	}

	u, err := s.App.Store().Q.GetUserByUID(uid)
	if err != nil || u == nil {
		s.writeDomainError(w, err)
		return
	}

	token, err := s.App.IssueToken(u, time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	s.App.Log().Info("user signed up", "uid", u.UID, "email", u.Email)
	s.writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: u})
}

func (s *Server) LoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.App.Store().Q.GetUserByEmail(app.NormalizeEmail(req.Email))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if u == nil || !app.CheckPassword(u.PasswordHash, req.Password) {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.App.IssueToken(u, time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: u})
}
