package momo

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"momo/internal/config"
	"momo/internal/httpapi"
)

func testAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httpapi.NewServer(config.Default(), nil, nil, slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientRunBacktest(t *testing.T) {
	ts := testAPI(t)
	c := NewClient(ts.URL)

	resp, err := c.RunBacktest(context.Background(), BacktestRequest{
		Demo:   true,
		Seed:   42,
		Days:   100,
		Window: 14,
	})
	if err != nil {
		t.Fatalf("RunBacktest: %v", err)
	}

	if resp.Days != 100 || resp.Window != 14 {
		t.Errorf("echoed days/window = %d/%d, want 100/14", resp.Days, resp.Window)
	}
	if resp.FinalBalance <= 0 {
		t.Errorf("final_balance = %v, want positive", resp.FinalBalance)
	}
	if len(resp.Oscillator) != len(resp.Symbols) {
		t.Errorf("oscillator covers %d symbols, want %d", len(resp.Oscillator), len(resp.Symbols))
	}
}

func TestClientRunBacktestZeroRates(t *testing.T) {
	ts := testAPI(t)
	c := NewClient(ts.URL)

	resp, err := c.RunBacktest(context.Background(), BacktestRequest{
		Demo:          true,
		Seed:          9,
		Days:          80,
		Window:        10,
		Fee:           Rate(0),
		FinancingRate: Rate(0),
	})
	if err != nil {
		t.Fatalf("RunBacktest: %v", err)
	}
	if resp.Fee != 0 || resp.FinancingRate != 0 {
		t.Errorf("fee/financing_rate = %v/%v, want explicit zeros kept", resp.Fee, resp.FinancingRate)
	}
}

func TestClientRunBacktestServerError(t *testing.T) {
	ts := testAPI(t)
	c := NewClient(ts.URL)

	// Window >= days is rejected by the simulator.
	_, err := c.RunBacktest(context.Background(), BacktestRequest{
		Demo:   true,
		Seed:   1,
		Days:   20,
		Window: 20,
	})
	if err == nil {
		t.Fatal("want error for invalid window, got nil")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status 400 mentioned", err)
	}
}

func TestClientSymbols(t *testing.T) {
	ts := testAPI(t)
	c := NewClient(ts.URL)

	symbols, err := c.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	// Storeless server reports an empty list.
	if len(symbols) != 0 {
		t.Errorf("symbols = %v, want empty", symbols)
	}
}
