package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/config"
	"github.com/gittutor/tutor/internal/enroll"
	"github.com/gittutor/tutor/internal/prefs"
	"github.com/gittutor/tutor/internal/session"
	"github.com/gittutor/tutor/internal/state"
	"github.com/gittutor/tutor/internal/ui"
)

// Options configure the tutor application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/gittutor/prefs.toml
	CourseID   string // optional course to open on start
}

const restoreTimeout = 5 * time.Second

// Run boots the tutor TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	config.LoadDotEnv()
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("prefs unreadable, using defaults", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithMetrics(api.NewMetrics(reg)),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	gate := session.NewGate(client, cfg.SessionPath(), session.WithLogger(logger))
	client.UseCredentials(gate)

	restoreCtx, cancel := context.WithTimeout(ctx, restoreTimeout)
	if gate.Restore(restoreCtx) {
		user, _ := gate.CurrentUser()
		logger.Info("session restored", "user", user.ID, "role", user.Role)
	}
	cancel()

	enrollments := enroll.NewService(client, enroll.NewCache(cfg.EnrollmentsPath()), gate, logger)
	store := &state.Store{}

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	if cfg.RefreshInterval > 0 {
		StartPoller(ctx, store, client, cfg.RefreshInterval, logger)
	}

	logger.Info("tutor starting", "api", client.BaseURL(), "data_dir", cfg.DataDir)

	uiOpts := ui.Options{
		Context:     ctx,
		Client:      client,
		Gate:        gate,
		Enroll:      enrollments,
		Store:       store,
		Config:      &cfg,
		Logger:      logger,
		ThemeName:   userPrefs.Theme,
		CatalogTab:  userPrefs.CatalogTab,
		PrefsPath:   opts.PrefsPath,
		StartCourse: api.ID(opts.CourseID),
	}
	return ui.Run(uiOpts)
}

// serveMetrics exposes the registry on addr until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("metrics listening", "addr", addr)
}
