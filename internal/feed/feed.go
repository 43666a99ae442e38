// Package feed supplies close-price series to the simulator. The engine is
// agnostic to where a series came from; sources here cover stored market
// data and a synthetic random walk for demos.
package feed

import (
	"context"

	"momo/internal/store"
)

// Source produces equal-length close-price series for a set of symbols.
type Source interface {
	// CloseSeries returns `days` close prices per symbol, oldest first.
	CloseSeries(ctx context.Context, symbols []string, days int) (map[string][]float64, error)
}

// Compile-time interface checks.
var _ Source = (*StoreSource)(nil)
var _ Source = (*RandomWalk)(nil)

// StoreSource reads close series from a bar store.
type StoreSource struct {
	store store.BarStore
}

// NewStoreSource creates a Source backed by the given bar store.
func NewStoreSource(s store.BarStore) *StoreSource {
	return &StoreSource{store: s}
}

// CloseSeries loads the most recent `days` closes per symbol from the store.
func (s *StoreSource) CloseSeries(ctx context.Context, symbols []string, days int) (map[string][]float64, error) {
	return store.CloseSeries(ctx, s.store, symbols, days)
}
