package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"momo/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func makeBars(symbol string, closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    symbol,
			Timestamp: day(i),
			Open:      c - 1,
			High:      c + 1,
			Low:       c - 2,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

// storeImpls returns one instance of every BarStore backend for shared
// conformance tests.
func storeImpls(t *testing.T) map[string]BarStore {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]BarStore{
		"sqlite":  sqlite,
		"parquet": NewParquetStore(t.TempDir()),
	}
}

func TestBarStoreWriteReadList(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := s.WriteBars(ctx, makeBars("VTI", []float64{100, 101, 99})); err != nil {
				t.Fatalf("WriteBars: %v", err)
			}
			if err := s.WriteBars(ctx, makeBars("QQQ", []float64{200, 202})); err != nil {
				t.Fatalf("WriteBars: %v", err)
			}

			bars, err := s.ReadBars(ctx, "VTI", day(0), day(10))
			if err != nil {
				t.Fatalf("ReadBars: %v", err)
			}
			if len(bars) != 3 {
				t.Fatalf("ReadBars returned %d bars, want 3", len(bars))
			}
			if bars[0].Close != 100 || bars[2].Close != 99 {
				t.Errorf("bars out of order or wrong closes: %+v", bars)
			}
			for i := 1; i < len(bars); i++ {
				if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
					t.Errorf("bars not in ascending timestamp order: %+v", bars)
				}
			}

			// Range filter.
			bars, err = s.ReadBars(ctx, "VTI", day(1), day(1))
			if err != nil {
				t.Fatalf("ReadBars range: %v", err)
			}
			if len(bars) != 1 || bars[0].Close != 101 {
				t.Errorf("range read = %+v, want single bar with close 101", bars)
			}

			symbols, err := s.ListSymbols(ctx)
			if err != nil {
				t.Fatalf("ListSymbols: %v", err)
			}
			if len(symbols) != 2 || symbols[0] != "QQQ" || symbols[1] != "VTI" {
				t.Errorf("ListSymbols = %v, want [QQQ VTI]", symbols)
			}
		})
	}
}

func TestBarStoreOverwritesDuplicates(t *testing.T) {
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := s.WriteBars(ctx, makeBars("SPY", []float64{500})); err != nil {
				t.Fatalf("WriteBars: %v", err)
			}
			// Same day, corrected close.
			if err := s.WriteBars(ctx, makeBars("SPY", []float64{501})); err != nil {
				t.Fatalf("WriteBars (rewrite): %v", err)
			}

			bars, err := s.ReadBars(ctx, "SPY", day(0), day(1))
			if err != nil {
				t.Fatalf("ReadBars: %v", err)
			}
			if len(bars) != 1 {
				t.Fatalf("got %d bars after rewrite, want 1", len(bars))
			}
			if bars[0].Close != 501 {
				t.Errorf("Close = %v, want rewritten 501", bars[0].Close)
			}
		})
	}
}

func TestCloseSeries(t *testing.T) {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer sqlite.Close()
	ctx := context.Background()

	if err := sqlite.WriteBars(ctx, makeBars("VTI", []float64{100, 101, 102, 103, 104})); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}
	if err := sqlite.WriteBars(ctx, makeBars("QQQ", []float64{200, 201, 202, 203, 204})); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	series, err := CloseSeries(ctx, sqlite, []string{"VTI", "QQQ"}, 3)
	if err != nil {
		t.Fatalf("CloseSeries: %v", err)
	}

	// Most recent 3 closes, oldest first.
	wantVTI := []float64{102, 103, 104}
	for i, v := range wantVTI {
		if series["VTI"][i] != v {
			t.Errorf("VTI[%d] = %v, want %v", i, series["VTI"][i], v)
		}
	}
	if len(series["QQQ"]) != 3 {
		t.Errorf("QQQ has %d closes, want 3", len(series["QQQ"]))
	}

	// Insufficient history must fail rather than produce ragged series.
	if _, err := CloseSeries(ctx, sqlite, []string{"VTI"}, 10); err == nil {
		t.Error("CloseSeries with too few bars: want error, got nil")
	}
}
