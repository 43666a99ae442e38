package feed

import (
	"context"
	"math/rand"
)

// RandomWalk generates synthetic demo price series: each symbol starts at a
// base price in [100, 150) and takes daily multiplicative steps of up to
// ±1%. Deterministic for a given seed.
type RandomWalk struct {
	rng *rand.Rand
}

// NewRandomWalk creates a RandomWalk seeded generator.
func NewRandomWalk(seed int64) *RandomWalk {
	return &RandomWalk{rng: rand.New(rand.NewSource(seed))}
}

// CloseSeries generates `days` prices per symbol, in symbol order so that
// identical seeds reproduce identical datasets.
func (w *RandomWalk) CloseSeries(_ context.Context, symbols []string, days int) (map[string][]float64, error) {
	series := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		prices := make([]float64, days)
		base := 100 + w.rng.Float64()*50
		for i := 0; i < days; i++ {
			base = base * (1 + (w.rng.Float64()-0.5)*0.02)
			prices[i] = base
		}
		series[sym] = prices
	}
	return series, nil
}
