package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kiln-atelier-go/internal/app"
	"kiln-atelier-go/internal/firing"
)

// NewRouter wires the full API surface.
func NewRouter(a *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(a.MiddlewareLoadCurrentUser)

	s := &Server{App: a}

	// Public
	r.Get("/health", s.Health)
	r.Post("/signup", s.SignupPost)
	r.Post("/login", s.LoginPost)

	// Authenticated
	r.Group(func(ar chi.Router) {
		ar.Use(a.RequireAuth)

		ar.Get("/account", s.AccountGet)
		ar.Put("/account", s.AccountPut)
		ar.Post("/account/password", s.PasswordPost)

		ar.Get("/pieces", s.PiecesGet)
		ar.Post("/pieces", s.PieceSubmitPost)
		ar.Get("/pieces/{id}", s.PieceGet)
		ar.Post("/pieces/{id}/request", s.PieceRequestPost)
		ar.Delete("/pieces/{id}", s.PieceDelete)

		ar.Get("/events", s.SSEGet)
	})

	// Admin / kiln operator
	r.Route("/admin", func(ad chi.Router) {
		ad.Use(a.RequireRole(firing.RoleAdmin))

		ad.Get("/queue/{stage}", s.QueueGet)
		ad.Get("/pieces", s.AdminPiecesGet)
		ad.Get("/stats", s.StatsGet)
		ad.Post("/pieces/{id}/complete", s.PieceCompletePost)
	})

	return r
}
