package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kiln-atelier-go/internal/db"
	"kiln-atelier-go/internal/firing"
)

type Config struct {
	Addr    string
	BaseURL string

	DataDir string
	DBPath  string

	JWTSecret []byte
	TokenTTL  time.Duration

	BootstrapAdminEmail     string
	BootstrapAdminPassword  string
	BootstrapAdminFirstName string
	BootstrapAdminLastName  string

	// SeedDemo creates a demo practician with sample pieces on first
	// start. Local development only.
	SeedDemo bool
}

type App struct {
	cfg    Config
	store  *db.Store
	log    *slog.Logger
	sseHub *SSEHub
}

func New(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "/data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "kilnatelier.db")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 14 * 24 * time.Hour
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}

	// Stable secret recommended via env; generate if missing so dev
	// setups still boot, at the cost of tokens resetting on restart.
	if len(cfg.JWTSecret) < 32 {
		cfg.JWTSecret = make([]byte, 32)
		_, _ = rand.Read(cfg.JWTSecret)
		logger.Warn("JWT_SECRET not set or too short, generating ephemeral secret; tokens will reset on restart")
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Migrate(store.DB); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{
		cfg:    cfg,
		store:  store,
		log:    logger,
		sseHub: NewSSEHub(logger),
	}

	// Bootstrap admin if none exists (only once).
	hasAdmin, err := store.Q.HasAnyAdmin()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !hasAdmin {
		email := strings.TrimSpace(cfg.BootstrapAdminEmail)
		pass := strings.TrimSpace(cfg.BootstrapAdminPassword)
		if email != "" && pass != "" {
			hash, err := HashPassword(pass)
			if err != nil {
				_ = store.Close()
				return nil, err
			}
			_, err = store.Q.CreateUser(db.CreateUserParams{
				Email:        NormalizeEmail(email),
				PasswordHash: hash,
				FirstName:    strings.TrimSpace(cfg.BootstrapAdminFirstName),
				LastName:     strings.TrimSpace(cfg.BootstrapAdminLastName),
				Role:         firing.RoleAdmin,
			})
			if err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("bootstrap admin: %w", err)
			}
			a.log.Info("bootstrapped admin user", "email", NormalizeEmail(email))
		} else {
			a.log.Warn("no admin exists and no bootstrap admin configured; admin endpoints unreachable until one is created")
		}
	}

	if cfg.SeedDemo {
		empty, err := db.IsUsersEmpty(store.DB, firing.RoleAdmin)
		if err != nil {
			a.log.Warn("demo seed check failed", "err", err)
		} else if empty {
			hash, err := HashPassword("potier-demo-123")
			if err == nil {
				err = db.SeedDemo(store.DB, "claire@atelier.local", hash)
			}
			if err != nil {
				a.log.Warn("demo seed failed", "err", err)
			} else {
				a.log.Info("demo data seeded", "practician", "claire@atelier.local")
			}
		}
	}

	return a, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *App) Store() *db.Store  { return a.store }
func (a *App) SSE() *SSEHub     { return a.sseHub }
func (a *App) Config() Config   { return a.cfg }
func (a *App) Log() *slog.Logger { return a.log }
