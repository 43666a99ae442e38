// momo-server exposes the backtest engine as a JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momo/internal/config"
	"momo/internal/httpapi"
	"momo/internal/metrics"
	"momo/internal/store"
	"momo/internal/util"
)

func main() {
	cfgPath := "config/momo.yaml"
	if p := os.Getenv("MOMO_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	barStore, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	m := metrics.New()
	api := httpapi.NewServer(cfg, barStore, m, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("momo-server listening", "addr", addr, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("momo-server stopped")
}

// openStore builds the configured bar store. An unknown backend runs the
// server store-less, which limits it to demo data.
func openStore(cfg *config.Config) (store.BarStore, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "parquet":
		return store.NewParquetStore(cfg.Storage.DataDir), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
