// Package domain holds the shared market data types used across the momo
// storage, feed, and simulation layers.
package domain

import "time"

// Bar is a single daily OHLCV bar for one symbol.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Closes extracts the close-price series from bars, preserving order.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}
	return closes
}
