// Package momo provides a Go client for the momo-server API.
package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls the momo-server JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client targeting baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BacktestRequest carries simulation parameters. Absent fields fall back to
// the server's configured defaults. Fee and FinancingRate are pointers
// because zero is a valid rate: a nil field falls back, an explicit 0 runs
// fee-free. Use Rate to build them inline.
type BacktestRequest struct {
	Symbols        []string `json:"symbols,omitempty"`
	Days           int      `json:"days,omitempty"`
	Window         int      `json:"window,omitempty"`
	Fee            *float64 `json:"fee,omitempty"`
	FinancingRate  *float64 `json:"financing_rate,omitempty"`
	Allocation     float64  `json:"allocation,omitempty"`
	InitialBalance float64  `json:"initial_balance,omitempty"`
	Demo           bool     `json:"demo,omitempty"`
	Seed           int64    `json:"seed,omitempty"`
}

// Rate returns a pointer to v, for the optional rate fields of
// BacktestRequest.
func Rate(v float64) *float64 {
	return &v
}

// BacktestResponse is the server's simulation result.
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

// RunBacktest submits a backtest and returns the result.
func (c *Client) RunBacktest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("backtest failed (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("backtest failed: status %d", resp.StatusCode)
	}

	var result BacktestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// Symbols returns the symbols available in the server's bar store.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/symbols", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing symbols: status %d", resp.StatusCode)
	}

	var result struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Symbols, nil
}
