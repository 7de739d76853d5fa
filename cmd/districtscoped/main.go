// Command districtscoped is the districtscope scoring service.
// It scores submitted documents, serves stored runs, and exposes a
// health check.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/districtscope/districtscope/internal/api"
	"github.com/districtscope/districtscope/internal/ingestion"
	"github.com/districtscope/districtscope/pkg/config"
	"github.com/districtscope/districtscope/pkg/pipeline"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, closer := newLogger(cfg)
	defer closer.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("districtscoped failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg daemonConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting districtscoped", "port", cfg.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServer wires storage, scoring and the API into one http.Handler.
func newServer(ctx context.Context, cfg daemonConfig, logger *slog.Logger) (http.Handler, error) {
	scoringCfg := config.DefaultConfig()
	if cfg.ConfigFile != "" {
		loaded, err := config.Load(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		scoringCfg = loaded
	}
	engine, err := scoringCfg.Engine(logger)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = scoringCfg.Pipeline.Workers
	}
	driver := pipeline.NewDriver(engine,
		pipeline.WithWorkers(workers),
		pipeline.WithLogger(logger),
	)

	storage, err := ingestion.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	ingestionSvc := ingestion.NewService(storage, driver, logger)

	var cache api.DocumentCache
	if cfg.RedisAddr != "" {
		cache = api.NewRedisCache(cfg.RedisAddr, cfg.RedisTTL, logger)
	}
	apiHandler := api.NewHandler(ingestionSvc, cache, logger)

	// Read routes are public; POST requires the API key when one is set.
	apiMux := http.NewServeMux()
	apiHandler.RegisterRoutes(apiMux)
	auth := api.APIKeyAuth(cfg.APIKey)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/", auth(apiMux))
	mux.Handle("GET /api/v1/", apiMux)
	mux.HandleFunc("GET /healthz", healthHandler)

	return api.CORS(mux), nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
