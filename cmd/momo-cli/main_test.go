package main

import (
	"path/filepath"
	"strings"
	"testing"

	"momo/internal/config"
	"momo/internal/feed"
)

func TestPickSourceRequiresStoreWithoutDemo(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "none"

	if _, _, err := pickSource(cfg, false, 0); err == nil {
		t.Fatal("want error when no store is configured and -demo is not set")
	} else if !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("err = %v, want mention of storage.backend", err)
	}
}

func TestPickSourceSurfacesStoreOpenError(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "missing", "dir", "bars.db")

	if _, _, err := pickSource(cfg, false, 0); err == nil {
		t.Fatal("want error when the store fails to open")
	}
}

func TestPickSourceDemo(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "none"

	source, cleanup, err := pickSource(cfg, true, 42)
	if err != nil {
		t.Fatalf("pickSource: %v", err)
	}
	defer cleanup()

	if _, ok := source.(*feed.RandomWalk); !ok {
		t.Errorf("source = %T, want *feed.RandomWalk", source)
	}
}

func TestPickSourceStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "bars.db")

	source, cleanup, err := pickSource(cfg, false, 0)
	if err != nil {
		t.Fatalf("pickSource: %v", err)
	}
	defer cleanup()

	if _, ok := source.(*feed.StoreSource); !ok {
		t.Errorf("source = %T, want *feed.StoreSource", source)
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{100000, "$100,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-4500.5, "-$4,500.50"},
	}
	for _, tc := range cases {
		if got := formatUSD(tc.in); got != tc.want {
			t.Errorf("formatUSD(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
