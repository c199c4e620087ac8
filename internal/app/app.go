// Package app assembles the camshare server from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"camshare/internal/analysis"
	"camshare/internal/capture"
	"camshare/internal/capture/opencv"
	"camshare/internal/catalog"
	"camshare/internal/config"
	"camshare/internal/logger"
	"camshare/internal/registry"
	"camshare/internal/repository/sqlite"
	"camshare/internal/route"
	"camshare/internal/service"
	"camshare/internal/service/ai"
	"camshare/internal/service/storage"
	"camshare/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	manager *service.Manager
	server  *http.Server
}

// NewApp builds every component. The caller owns the returned App and must Run it.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.SeedFile)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Close()
		return nil, err
	}

	gemini := ai.NewGeminiClient(cfg, log.With("component", "gemini"))
	if cfg.GeminiAPIKey == "" {
		log.Warning("GEMINI_API_KEY is not set; scans and location checks will report the model as offline")
	}

	reg := registry.New(cat.Cameras, ai.NewLocator(gemini))
	sampler := capture.NewSampler(capture.Config{
		Frames:   cfg.CaptureFrames,
		Interval: cfg.CaptureInterval,
		MaxWidth: cfg.CaptureMaxWidth,
		Quality:  cfg.CaptureJPEGQuality,
	})

	manager := service.NewManager(service.Deps{
		Registry:   reg,
		Dispatcher: analysis.NewDispatcher(gemini, log.With("component", "analysis")),
		Sampler:    sampler,
		Opener:     opencv.Opener{Logger: log.With("component", "capture")},
		Hub:        websocket.NewHubService(log.With("component", "hub")),
		Activity:   storage.NewBufferService(cfg, log, sqlite.NewActivityRepository(db)),
		Incidents:  service.NewIncidentBoard(cat.Incidents),
	}, cfg, log)

	return &App{
		config:  cfg,
		logger:  log,
		db:      db,
		manager: manager,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           route.SetupRoutes(manager, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx ends, then shuts the server and the manager down.
func (a *App) Run(ctx context.Context) error {
	defer a.logger.Close()
	defer a.db.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.manager.Run(runCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Camera sharing server listening on %s (db %s)", a.server.Addr, a.config.DBPath)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown: %v", err)
	}

	stop()
	wg.Wait()
	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	return nil
}
