package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"kiln-atelier-go/internal/db"
)

func NormalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func HashPassword(pw string) (string, error) {
	pw = strings.TrimSpace(pw)
	if len(pw) < 8 {
		return "", errors.New("password too short")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash string, pw string) bool {
	if hash == "" || pw == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// IssueToken signs a bearer token carrying the principal id and role.
// The role claim is informational; middleware reloads the user so a
// stale token never grants more than the store says.
func (a *App) IssueToken(u *db.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.UID,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(a.cfg.TokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(a.cfg.JWTSecret)
}

// ParseToken verifies a bearer token and returns the subject uid.
func (a *App) ParseToken(tokenString string) (string, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.cfg.JWTSecret, nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid or expired token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}
