// momo-fetch backfills daily bars for the configured symbol universe from
// the Alpaca market-data API into the bar store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"momo/internal/config"
	"momo/internal/feed"
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
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("alpaca credentials not configured (set APCA_API_KEY_ID / APCA_API_SECRET_KEY)")
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	var barStore store.BarStore
	switch cfg.Storage.Backend {
	case "parquet":
		barStore = store.NewParquetStore(cfg.Storage.DataDir)
	default:
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()
		barStore = s
	}

	fetcher := feed.NewAlpacaFetcher(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		barStore,
		cfg.Simulation.Symbols,
		cfg.Alpaca.StartDate,
		cfg.Alpaca.RateLimitPerMin,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := fetcher.Run(ctx); err != nil {
		log.Fatalf("fetch error: %v", err)
	}
}
