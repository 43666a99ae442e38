// Package httpapi serves the momo backtest JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"momo/internal/backtest"
	"momo/internal/config"
	"momo/internal/feed"
	"momo/internal/indicator"
	"momo/internal/metrics"
	"momo/internal/store"
)

// Server exposes the backtest engine over HTTP. The bar store may be nil,
// in which case only the synthetic demo source is available.
type Server struct {
	cfg     *config.Config
	store   store.BarStore
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewServer creates an API server with the given dependencies. A nil
// metrics value gets a private registry so handlers never nil-check.
func NewServer(cfg *config.Config, barStore store.BarStore, m *metrics.Metrics, log *slog.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:     cfg,
		store:   barStore,
		metrics: m,
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/backtest", s.handleBacktestQuery)
	mux.HandleFunc("POST /api/backtest", s.handleBacktestBody)
	mux.HandleFunc("GET /api/symbols", s.handleSymbols)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, SymbolsResponse{Symbols: []string{}})
		return
	}
	symbols, err := s.store.ListSymbols(r.Context())
	if err != nil {
		s.log.Error("listing symbols", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list symbols")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, SymbolsResponse{Symbols: symbols})
}

// handleBacktestQuery accepts the legacy query-parameter surface:
// window, fee, interest, weight, days, symbols, demo, seed.
func (s *Server) handleBacktestQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := BacktestRequest{}

	var parseErr error
	atoi := func(key string) int {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			parseErr = errors.Join(parseErr, err)
		}
		return n
	}
	atof := func(key string) float64 {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			parseErr = errors.Join(parseErr, err)
		}
		return f
	}
	// Distinguishes an absent parameter from an explicit zero.
	atofPtr := func(key string) *float64 {
		if q.Get(key) == "" {
			return nil
		}
		f := atof(key)
		return &f
	}

	req.Window = atoi("window")
	req.Days = atoi("days")
	req.Fee = atofPtr("fee")
	req.FinancingRate = atofPtr("interest")
	req.Allocation = atof("weight")
	req.InitialBalance = atof("balance")
	req.Seed = int64(atoi("seed"))
	req.Demo = q.Get("demo") == "1" || strings.EqualFold(q.Get("demo"), "true")
	if v := q.Get("symbols"); v != "" {
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				req.Symbols = append(req.Symbols, strings.ToUpper(sym))
			}
		}
	}

	if parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter: "+parseErr.Error())
		return
	}

	s.runBacktest(w, r, req)
}

func (s *Server) handleBacktestBody(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.runBacktest(w, r, req)
}

func (s *Server) runBacktest(w http.ResponseWriter, r *http.Request, req BacktestRequest) {
	s.applyDefaults(&req)

	source := s.source(req)
	series, err := source.CloseSeries(r.Context(), req.Symbols, req.Days)
	if err != nil {
		s.metrics.RunErrors.Inc()
		s.log.Warn("loading price series", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := time.Now()
	result, err := backtest.Run(series, req.Symbols, backtest.Params{
		Window:         req.Window,
		Fee:            *req.Fee,
		FinancingRate:  *req.FinancingRate,
		Allocation:     req.Allocation,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		s.metrics.RunErrors.Inc()
		status := http.StatusInternalServerError
		if isValidationError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	s.metrics.RunsTotal.Inc()
	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	s.metrics.SimulatedDays.Add(float64((req.Days - req.Window) * len(req.Symbols)))

	s.log.Info("backtest complete",
		"symbols", len(req.Symbols),
		"days", req.Days,
		"window", req.Window,
		"finalBalance", result.FinalBalance,
		"totalReturn", result.TotalReturn,
		"trades", result.TotalTrades,
	)

	writeJSON(w, BacktestResponse{
		Symbols:        req.Symbols,
		Days:           req.Days,
		Window:         req.Window,
		Fee:            *req.Fee,
		FinancingRate:  *req.FinancingRate,
		Allocation:     req.Allocation,
		InitialBalance: req.InitialBalance,
		FinalBalance:   result.FinalBalance,
		TotalReturn:    result.TotalReturn,
		TotalTrades:    result.TotalTrades,
		WinRate:        result.WinRate,
		Oscillator:     result.Oscillator,
	})
}

// applyDefaults fills absent request fields from the configured simulation
// defaults. Fee and financing rate fall back only when the field was not
// sent at all; an explicit zero is a valid rate and is kept.
func (s *Server) applyDefaults(req *BacktestRequest) {
	sim := s.cfg.Simulation
	if len(req.Symbols) == 0 {
		req.Symbols = sim.Symbols
	}
	if req.Days == 0 {
		req.Days = sim.Days
	}
	if req.Window == 0 {
		req.Window = sim.Window
	}
	if req.Fee == nil {
		req.Fee = &sim.Fee
	}
	if req.FinancingRate == nil {
		req.FinancingRate = &sim.FinancingRate
	}
	if req.Allocation == 0 {
		req.Allocation = sim.Allocation
	}
	if req.InitialBalance == 0 {
		req.InitialBalance = sim.InitialBalance
	}
}

// source picks the price-series source for a request: the bar store when
// available, the seeded random walk for demo requests or storeless servers.
func (s *Server) source(req BacktestRequest) feed.Source {
	if req.Demo || s.store == nil {
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return feed.NewRandomWalk(seed)
	}
	return feed.NewStoreSource(s.store)
}

func isValidationError(err error) bool {
	return errors.Is(err, indicator.ErrInvalidWindow) ||
		errors.Is(err, indicator.ErrEmptySeries) ||
		errors.Is(err, backtest.ErrMismatchedLength) ||
		errors.Is(err, backtest.ErrZeroPrice) ||
		errors.Is(err, backtest.ErrInvalidParams)
}
