// momo-cli runs backtests and inspects the bar store from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"momo/internal/backtest"
	"momo/internal/config"
	"momo/internal/feed"
	"momo/internal/store"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: momo-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run        Run a backtest (see momo-cli run -h)\n")
		fmt.Fprintf(os.Stderr, "  symbols    List symbols in the bar store\n")
		fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("momo-cli %s\n", version)

	case "run":
		runCmd(os.Args[2:])

	case "symbols":
		symbolsCmd()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfgPath := "config/momo.yaml"
	if p := os.Getenv("MOMO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func runCmd(args []string) {
	cfg := loadConfig()
	sim := cfg.Simulation

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	window := fs.Int("window", sim.Window, "oscillator window in days")
	fee := fs.Float64("fee", sim.Fee, "transaction fee fraction")
	interest := fs.Float64("interest", sim.FinancingRate, "short financing rate")
	weight := fs.Float64("weight", sim.Allocation, "balance fraction per position")
	days := fs.Int("days", sim.Days, "number of simulated days")
	balance := fs.Float64("balance", sim.InitialBalance, "starting balance")
	symbolsFlag := fs.String("symbols", strings.Join(sim.Symbols, ","), "comma-separated symbols")
	demo := fs.Bool("demo", false, "use synthetic random-walk data instead of the store")
	seed := fs.Int64("seed", 0, "random-walk seed (0 = time-based)")
	verbose := fs.Bool("v", false, "print every trade")
	fs.Parse(args)

	symbols := splitSymbols(*symbolsFlag)
	ctx := context.Background()

	source, cleanup, err := pickSource(cfg, *demo, *seed)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	series, err := source.CloseSeries(ctx, symbols, *days)
	if err != nil {
		log.Fatalf("loading price series: %v", err)
	}

	params := backtest.Params{
		Window:         *window,
		Fee:            *fee,
		FinancingRate:  *interest,
		Allocation:     *weight,
		InitialBalance: *balance,
	}
	if *verbose {
		params.Trace = func(e backtest.Event) {
			fmt.Printf("  day %3d  %-5s %-11s @ %9.2f  balance %s\n",
				e.Day, e.Symbol, e.Action, e.Price, formatUSD(e.Balance))
		}
	}

	result, err := backtest.Run(series, symbols, params)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("Symbols:        %s\n", strings.Join(symbols, ", "))
	fmt.Printf("Days / window:  %d / %d\n", *days, *window)
	fmt.Printf("Final balance:  %s\n", formatUSD(result.FinalBalance))
	fmt.Printf("Total return:   %.2f%%\n", result.TotalReturn*100)
	fmt.Printf("Closed trades:  %d (win rate %.0f%%)\n", result.TotalTrades, result.WinRate*100)
}

func symbolsCmd() {
	cfg := loadConfig()

	barStore, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer cleanup()
	if barStore == nil {
		log.Fatalf("no bar store configured (storage.backend = %q)", cfg.Storage.Backend)
	}

	symbols, err := barStore.ListSymbols(context.Background())
	if err != nil {
		log.Fatalf("listing symbols: %v", err)
	}
	for _, sym := range symbols {
		fmt.Println(sym)
	}
}

// pickSource selects the price-series source. Without -demo the bar store
// is required: an unusable store is an error, never a silent fallback to
// synthetic data.
func pickSource(cfg *config.Config, demo bool, seed int64) (feed.Source, func(), error) {
	if !demo {
		barStore, cleanup, err := openStore(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store: %w (pass -demo for synthetic data)", err)
		}
		if barStore == nil {
			return nil, nil, fmt.Errorf("no bar store configured (storage.backend = %q); pass -demo for synthetic data", cfg.Storage.Backend)
		}
		return feed.NewStoreSource(barStore), cleanup, nil
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return feed.NewRandomWalk(seed), func() {}, nil
}

func openStore(cfg *config.Config) (store.BarStore, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { s.Close() }, nil
	case "parquet":
		return store.NewParquetStore(cfg.Storage.DataDir), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func splitSymbols(s string) []string {
	var symbols []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			symbols = append(symbols, strings.ToUpper(part))
		}
	}
	return symbols
}

// formatUSD renders a balance as "$1,234,567.89".
func formatUSD(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)

	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
