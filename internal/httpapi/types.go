package httpapi

// BacktestRequest carries simulation parameters. Every field is optional;
// absent fields fall back to the configured simulation defaults. Fee and
// FinancingRate are pointers because zero is a valid rate: only a missing
// field falls back, an explicit 0 runs fee-free.
type BacktestRequest struct {
	Symbols        []string `json:"symbols,omitempty"`
	Days           int      `json:"days,omitempty"`
	Window         int      `json:"window,omitempty"`
	Fee            *float64 `json:"fee,omitempty"`
	FinancingRate  *float64 `json:"financing_rate,omitempty"`
	Allocation     float64  `json:"allocation,omitempty"`
	InitialBalance float64  `json:"initial_balance,omitempty"`

	// Demo selects the synthetic random-walk source even when a bar store
	// is configured. Seed makes the generated dataset reproducible; when
	// zero a time-based seed is used.
	Demo bool  `json:"demo,omitempty"`
	Seed int64 `json:"seed,omitempty"`
}

// BacktestResponse is the result of one simulation run.
type BacktestResponse struct {
	Symbols        []string             `json:"symbols"`
	Days           int                  `json:"days"`
	Window         int                  `json:"window"`
	Fee            float64              `json:"fee"`
	FinancingRate  float64              `json:"financing_rate"`
	Allocation     float64              `json:"allocation"`
	InitialBalance float64              `json:"initial_balance"`
	FinalBalance   float64              `json:"final_balance"`
	TotalReturn    float64              `json:"total_return"`
	TotalTrades    int                  `json:"total_trades"`
	WinRate        float64              `json:"win_rate"`
	Oscillator     map[string][]float64 `json:"oscillator"`
}

// SymbolsResponse lists the symbols available in the bar store.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}
