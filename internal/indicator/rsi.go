// Package indicator computes momentum oscillator values over daily
// close-price series. All functions are pure and deterministic.
package indicator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned when the window length is outside
	// [1, series length].
	ErrInvalidWindow = errors.New("indicator: invalid window")

	// ErrEmptySeries is returned when a symbol has no price data.
	ErrEmptySeries = errors.New("indicator: empty price series")
)

// Oscillator computes a cumulative-sum RSI over the given price slice: the
// sum of all positive day-over-day moves against the sum of the absolute
// negative moves. The result is always in [0, 100].
//
// When no losses are observed (down == 0) the value is 100, including for
// flat series and for slices shorter than two prices. This is the defined
// behaviour, not a division guard.
func Oscillator(prices []float64) float64 {
	var up, down float64
	for i := 1; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff >= 0 {
			up += diff
		} else {
			down += -diff
		}
	}
	if down == 0 {
		return 100.0
	}
	return 100 - 100/(1+up/down)
}

// Series computes the oscillator for each symbol over every window of
// exactly `window` consecutive prices, sliding one day at a time. For a
// series of length N the result holds N-window+1 values; index 0 covers the
// window ending at raw index window-1.
func Series(series map[string][]float64, symbols []string, window int) (map[string][]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}

	result := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		prices, ok := series[sym]
		if !ok || len(prices) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySeries, sym)
		}
		n := len(prices)
		if window > n {
			return nil, fmt.Errorf("%w: %d exceeds %d prices for %s", ErrInvalidWindow, window, n, sym)
		}

		values := make([]float64, 0, n-window+1)
		for i := window; i <= n; i++ {
			values = append(values, Oscillator(prices[i-window:i]))
		}
		result[sym] = values
	}
	return result, nil
}
