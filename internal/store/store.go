// Package store persists and retrieves daily bar data. Two backends are
// provided: a SQLite database for incremental updates and a Parquet file
// tree for bulk archival. Both serve as input sources for the simulator;
// simulation state itself is never persisted.
package store

import (
	"context"
	"fmt"
	"time"

	"momo/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars, replacing existing bars with the
	// same (symbol, timestamp).
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the symbol within [start, end], ordered by
	// timestamp ascending.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// CloseSeries loads the most recent `days` close prices for each symbol
// from the store. Every symbol must have at least `days` bars, which
// guarantees equal series lengths for a joint simulation.
func CloseSeries(ctx context.Context, s BarStore, symbols []string, days int) (map[string][]float64, error) {
	if days < 1 {
		return nil, fmt.Errorf("store: days must be >= 1, got %d", days)
	}

	// Wide-open range; the per-symbol tail is trimmed below.
	start := time.Unix(0, 0)
	end := time.Now().AddDate(0, 0, 1)

	series := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		bars, err := s.ReadBars(ctx, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("reading bars for %s: %w", sym, err)
		}
		if len(bars) < days {
			return nil, fmt.Errorf("store: %s has %d bars, need %d", sym, len(bars), days)
		}
		series[sym] = domain.Closes(bars[len(bars)-days:])
	}
	return series, nil
}
