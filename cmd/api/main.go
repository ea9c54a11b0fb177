// Package main is the entry point for the travel admin API server.
// It wires the stores, services and router together and serves until
// SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/config"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/handler"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/metrics"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/middleware"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/notify"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The configured logger does not exist yet.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run opens every dependency, serves until ctx is cancelled and then drains
// in-flight requests.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	defer st.close()
	logger.Info("store ready", "backend", cfg.StoreBackend)

	blobs, err := storage.NewLocalStorage(cfg.AttachmentDir)
	if err != nil {
		return err
	}
	mailer, err := newMailer(cfg.SMTP, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	dispatcher := service.NewDispatcher(st.notifications, mailer, m, logger)
	trips := service.NewTripService(st.trips, dispatcher, blobs, m, logger)
	server := handler.NewServer(trips, dispatcher, service.NewExportService(st.trips), blobs, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, m, server),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Leaves room for PDF exports and attachment downloads.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newMailer returns nil when SMTP is not configured, so the dispatcher only
// records notifications. The nil is returned untyped to keep the interface nil.
func newMailer(cfg config.SMTPConfig, logger *slog.Logger) (service.Mailer, error) {
	if !cfg.Enabled() {
		logger.Info("smtp delivery disabled; notifications are recorded only")
		return nil, nil
	}
	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:          cfg.Host,
		Port:          cfg.Port,
		User:          cfg.User,
		Pass:          cfg.Pass,
		From:          cfg.From,
		SkipTLSVerify: cfg.SkipTLSVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp configuration: %w", err)
	}
	logger.Info("smtp delivery enabled", "host", cfg.Host)
	return mailer, nil
}

// newRouter applies middleware in order RequestID, RealIP, request log,
// metrics, Recoverer, CORS and body limit. Metrics sits outside Recoverer
// so recovered panics count as 500s.
func newRouter(cfg config.Config, logger *slog.Logger, m *metrics.Metrics, server *handler.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(m.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	server.Routes(r)
	return r
}
