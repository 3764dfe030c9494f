package app

import (
	"context"
	"net/http"
	"strings"

	"kiln-atelier-go/internal/db"
	"kiln-atelier-go/internal/firing"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

func (a *App) middlewareLoadCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := bearerUID(a, r); ok {
			u, err := a.store.Q.GetUserByUID(uid)
			if err == nil && u != nil {
				ctx := context.WithValue(r.Context(), ctxKeyUser, u)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerUID(a *App, r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	tok := strings.TrimPrefix(h, "Bearer ")
	if tok == h || strings.TrimSpace(tok) == "" {
		return "", false
	}
	uid, err := a.ParseToken(strings.TrimSpace(tok))
	if err != nil {
		return "", false
	}
	return uid, true
}

func (a *App) CurrentUser(r *http.Request) *db.User {
	u, _ := r.Context().Value(ctxKeyUser).(*db.User)
	return u
}

// Principal converts the request user into the explicit actor the
// lifecycle engine consumes.
func Principal(u *db.User) firing.Principal {
	return firing.Principal{
		UID:       u.UID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// Exported wrapper so router wiring can live outside the app package.
func (a *App) MiddlewareLoadCurrentUser(next http.Handler) http.Handler {
	return a.middlewareLoadCurrentUser(next)
}
