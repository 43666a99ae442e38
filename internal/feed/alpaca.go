package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"momo/internal/domain"
	"momo/internal/store"
	"momo/internal/util"
)

// AlpacaFetcher backfills daily bars for a fixed symbol universe from the
// Alpaca market-data API into a bar store. It is idempotent: re-running
// overwrites the same (symbol, day) rows.
type AlpacaFetcher struct {
	client    *marketdata.Client
	store     store.BarStore
	symbols   []string
	startDate string
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewAlpacaFetcher creates an AlpacaFetcher configured with the given
// credentials, target store, and symbol universe.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, startDate string, rateLimitPerMin int) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &AlpacaFetcher{
		client:    marketdata.NewClient(opts),
		store:     s,
		symbols:   symbols,
		startDate: startDate,
		limiter:   util.NewRateLimiter(rateLimitPerMin),
		log:       slog.Default().With("feed", "alpaca"),
	}
}

// Run fetches daily bars for all configured symbols in one multi-bar
// request and writes them to the store. It blocks until done or ctx is
// cancelled.
func (f *AlpacaFetcher) Run(ctx context.Context) error {
	start, err := time.Parse("2006-01-02", f.startDate)
	if err != nil {
		return fmt.Errorf("parsing start date %q: %w", f.startDate, err)
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)

	f.log.Info("fetching daily bars",
		"symbols", len(f.symbols),
		"start", f.startDate,
		"end", end.Format("2006-01-02"),
	)

	bars, err := f.fetchMultiBars(ctx, f.symbols, start, end)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		f.log.Warn("no bars returned")
		return nil
	}

	if err := f.store.WriteBars(ctx, bars); err != nil {
		return fmt.Errorf("writing bars: %w", err)
	}

	f.log.Info("backfill complete", "bars", len(bars))
	return nil
}

func (f *AlpacaFetcher) fetchMultiBars(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var multiBars map[string][]marketdata.Bar
	err := util.Retry(ctx, 3, 2*time.Second, func() error {
		var err error
		multiBars, err = f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:    strings.ToUpper(symbol),
				Timestamp: ab.Timestamp,
				Open:      ab.Open,
				High:      ab.High,
				Low:       ab.Low,
				Close:     ab.Close,
				Volume:    int64(ab.Volume),
			})
		}
	}
	return bars, nil
}
