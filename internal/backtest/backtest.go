// Package backtest simulates a threshold-based long/short momentum strategy
// over daily close-price series.
//
// The simulation walks one day at a time, evaluating each symbol's position
// state machine against the oscillator value of the trailing window, and
// tracks a shared cash balance plus a cumulative compounded return across
// all closed trades. Each call to Run operates on freshly allocated state,
// so concurrent runs never observe each other.
package backtest

import (
	"errors"
	"fmt"

	"momo/internal/indicator"
)

// Oscillator thresholds. Crossing below Oversold closes shorts and opens
// longs; crossing above Overbought closes longs and opens shorts.
const (
	Oversold   = 33.0
	Overbought = 66.0
)

var (
	// ErrMismatchedLength is returned when symbols have price series of
	// unequal length.
	ErrMismatchedLength = errors.New("backtest: price series lengths differ")

	// ErrZeroPrice is returned when a series contains a price <= 0, which
	// would later be used as a divisor in sizing or return computation.
	ErrZeroPrice = errors.New("backtest: non-positive price")

	// ErrInvalidParams is returned when fee, financing rate, allocation, or
	// initial balance are outside their admissible ranges.
	ErrInvalidParams = errors.New("backtest: invalid parameters")
)

// Action identifies a position transition.
type Action string

const (
	OpenLong   Action = "open_long"
	OpenShort  Action = "open_short"
	CloseLong  Action = "close_long"
	CloseShort Action = "close_short"
)

// Event describes a single position transition during a run. Balance is the
// shared ledger balance after the transition was applied; Return is the
// per-trade return for close actions and zero for opens.
type Event struct {
	Day     int
	Symbol  string
	Action  Action
	Price   float64
	Balance float64
	Return  float64
}

// Params configures a simulation run. It is the single source of truth for
// all strategy inputs; there are no package-level defaults.
type Params struct {
	// Window is the trailing oscillator window in days. A series of N
	// prices yields N-Window simulated days, so N must be >= Window+1.
	Window int

	// Fee is the proportional transaction fee, applied on both entry and
	// exit legs of every trade.
	Fee float64

	// FinancingRate is the per-position holding cost charged on short
	// positions at close, as a fraction of entry notional.
	FinancingRate float64

	// Allocation is the fraction of the current balance committed when
	// opening a new position. Must be in (0, 1].
	Allocation float64

	// InitialBalance is the starting cash balance.
	InitialBalance float64

	// Trace, when non-nil, is invoked synchronously for every position
	// transition in simulation order.
	Trace func(Event)
}

// Result holds the outcome of a simulation run.
type Result struct {
	// FinalBalance is the ledger balance after the last simulated day.
	// Open positions are not liquidated; opening a position does not move
	// the balance, only closing does.
	FinalBalance float64

	// TotalReturn is the cumulative compounded return across all closed
	// trades: the product of (1 + per-trade return) minus one.
	TotalReturn float64

	// TotalTrades counts closed trades.
	TotalTrades int

	// WinRate is the fraction of closed trades with a positive per-trade
	// return. Zero when no trades closed.
	WinRate float64

	// Oscillator is the indicator series per symbol, passed through for
	// downstream display.
	Oscillator map[string][]float64
}

// state is the per-symbol position state. Exactly one state holds at any
// simulated day; neutral is the default and the reset state after a close.
type state int

const (
	neutral state = iota
	long
	short
)

// position is the per-symbol record. entryPrice and volume are meaningful
// only while st != neutral; they are overwritten on the next entry.
type position struct {
	st         state
	entryPrice float64
	volume     float64
}

// Run simulates the strategy over the given close-price series, iterating
// symbols in the given order within each day. All validation happens before
// any simulation state is built, so a returned error implies no partial run.
func Run(series map[string][]float64, symbols []string, p Params) (*Result, error) {
	n, err := validate(series, symbols, p)
	if err != nil {
		return nil, err
	}

	osc, err := indicator.Series(series, symbols, p.Window)
	if err != nil {
		return nil, err
	}

	balance := p.InitialBalance
	factor := 1.0
	trades := 0
	wins := 0
	positions := make([]position, len(symbols))

	emit := func(day int, sym string, a Action, price, ret float64) {
		if p.Trace != nil {
			p.Trace(Event{Day: day, Symbol: sym, Action: a, Price: price, Balance: balance, Return: ret})
		}
	}

	for t := p.Window; t < n; t++ {
		for i, sym := range symbols {
			rsi := osc[sym][t-p.Window]
			price := series[sym][t]
			pos := &positions[i]

			// Evaluation order is fixed: close-short, open-short,
			// close-long, open-long. A short closed below the oversold
			// threshold leaves the symbol neutral and immediately eligible
			// for the open-long branch on the same day.
			if rsi < Oversold && pos.st == short {
				pos.st = neutral
				balance += pos.entryPrice*(1-p.Fee)*pos.volume -
					price*(1+p.Fee)*pos.volume -
					p.FinancingRate*pos.entryPrice*pos.volume
				r := (pos.entryPrice*(1-p.Fee))/(price*(1+p.Fee)) - 1 - p.FinancingRate
				factor *= 1 + r
				trades++
				if r > 0 {
					wins++
				}
				emit(t, sym, CloseShort, price, r)
			}
			if rsi > Overbought && pos.st == neutral {
				pos.st = short
				pos.entryPrice = price
				pos.volume = balance * p.Allocation / price
				emit(t, sym, OpenShort, price, 0)
			}
			if rsi > Overbought && pos.st == long {
				pos.st = neutral
				balance += price*pos.volume*(1-p.Fee) - pos.entryPrice*pos.volume*(1+p.Fee)
				r := (price*(1-p.Fee))/(pos.entryPrice*(1+p.Fee)) - 1
				factor *= 1 + r
				trades++
				if r > 0 {
					wins++
				}
				emit(t, sym, CloseLong, price, r)
			}
			if rsi < Oversold && pos.st == neutral {
				pos.st = long
				pos.entryPrice = price
				pos.volume = balance * p.Allocation / price
				emit(t, sym, OpenLong, price, 0)
			}
		}
	}

	res := &Result{
		FinalBalance: balance,
		TotalReturn:  factor - 1,
		TotalTrades:  trades,
		Oscillator:   osc,
	}
	if trades > 0 {
		res.WinRate = float64(wins) / float64(trades)
	}
	return res, nil
}

// validate checks every precondition eagerly and returns the shared series
// length.
func validate(series map[string][]float64, symbols []string, p Params) (int, error) {
	if len(symbols) == 0 {
		return 0, fmt.Errorf("%w: no symbols", indicator.ErrEmptySeries)
	}
	if p.Fee < 0 || p.FinancingRate < 0 {
		return 0, fmt.Errorf("%w: fee and financing rate must be >= 0", ErrInvalidParams)
	}
	if p.Allocation <= 0 || p.Allocation > 1 {
		return 0, fmt.Errorf("%w: allocation %v outside (0, 1]", ErrInvalidParams, p.Allocation)
	}
	if p.InitialBalance <= 0 {
		return 0, fmt.Errorf("%w: initial balance %v", ErrInvalidParams, p.InitialBalance)
	}

	n := -1
	for _, sym := range symbols {
		prices, ok := series[sym]
		if !ok || len(prices) == 0 {
			return 0, fmt.Errorf("%w: %s", indicator.ErrEmptySeries, sym)
		}
		if n == -1 {
			n = len(prices)
		} else if len(prices) != n {
			return 0, fmt.Errorf("%w: %s has %d prices, want %d", ErrMismatchedLength, sym, len(prices), n)
		}
		for i, price := range prices {
			if price <= 0 {
				return 0, fmt.Errorf("%w: %s day %d", ErrZeroPrice, sym, i)
			}
		}
	}

	// At least one simulated day after the warm-up window.
	if p.Window < 1 || p.Window >= n {
		return 0, fmt.Errorf("%w: window %d needs at least %d prices, have %d",
			indicator.ErrInvalidWindow, p.Window, p.Window+1, n)
	}
	return n, nil
}
