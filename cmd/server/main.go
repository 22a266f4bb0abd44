package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/gorilla/mux"

	"github.com/inamate/vecedit/internal/auth"
	"github.com/inamate/vecedit/internal/collab"
	"github.com/inamate/vecedit/internal/config"
	"github.com/inamate/vecedit/internal/editor"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/input"
	mw "github.com/inamate/vecedit/internal/middleware"
	"github.com/inamate/vecedit/internal/session"
	"github.com/inamate/vecedit/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		st = pg
	} else {
		slog.Warn("DATABASE_URL not set, snapshots are kept in memory")
		st = store.NewMemory()
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.SessionTTL)

	// The hub reaches sessions through these closures; svc is set before
	// the first client can connect.
	var svc *session.Service
	hub := collab.NewHub(
		func(ctx context.Context, sessionID string, events []input.Event) (int64, error) {
			return svc.Dispatch(ctx, sessionID, events)
		},
		func(ctx context.Context, sessionID string) (int64, error) {
			return svc.Revision(ctx, sessionID)
		},
	)
	go hub.Run()

	svc = session.NewService(st, hub, session.Options{
		Editor:           editorOptions(cfg),
		AutosaveInterval: cfg.AutosaveInterval,
		Logger:           logger,
	})
	go svc.Run(ctx)

	sessionHandler := session.NewHandler(svc, authService, hub, cfg.Origins())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	sessionHandler.Register(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r), // preflights are answered before routing
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Save sessions before the hub drops their clients
		if err := svc.Shutdown(shutdownCtx); err != nil {
			slog.Error("save sessions", "error", err)
		}
		hub.Stop()
		cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func editorOptions(cfg *config.Config) editor.Options {
	opts := editor.DefaultOptions()
	opts.Fuzziness = cfg.Fuzziness
	opts.GridSize = cfg.GridSize
	opts.Snap = cfg.SnapToGrid
	opts.Fill.MaxIterations = cfg.FillMaxIterations
	opts.Sheet = geom.Rect{Width: float64(cfg.SheetWidth), Height: float64(cfg.SheetHeight)}
	opts.Background = "#ffffff"
	return opts
}
