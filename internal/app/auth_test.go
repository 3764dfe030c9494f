package app

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"kiln-atelier-go/internal/db"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		DataDir:   t.TempDir(),
		JWTSecret: []byte("0123456789abcdef0123456789abcdef"),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Claire@Atelier.LOCAL "); got != "claire@atelier.local" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	if _, err := HashPassword("court"); err == nil {
		t.Error("short password accepted")
	}

	hash, err := HashPassword("motdepasse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "motdepasse") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "autremotdepasse") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", "motdepasse") || CheckPassword(hash, "") {
		t.Error("empty hash or password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestApp(t)
	u := &db.User{UID: "uid-1", Role: "practician"}

	tok, err := a.IssueToken(u, time.Now())
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	uid, err := a.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if uid != "uid-1" {
		t.Errorf("ParseToken() uid = %q", uid)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	a := newTestApp(t)
	u := &db.User{UID: "uid-1", Role: "practician"}

	issued := time.Now().Add(-a.Config().TokenTTL - time.Hour)
	tok, err := a.IssueToken(u, issued)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := a.ParseToken(tok); err == nil {
		t.Error("expired token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	a := newTestApp(t)
	tok, err := a.IssueToken(&db.User{UID: "uid-1"}, time.Now())
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := a.ParseToken(tok + "x"); err == nil {
		t.Error("tampered token accepted")
	}
	if _, err := a.ParseToken("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}
