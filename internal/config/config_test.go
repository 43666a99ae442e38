package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	yamlContent := []byte(`
server:
  host: "127.0.0.1"
  port: 9999
storage:
  backend: "parquet"
  data_dir: "/tmp/momo/data"
  sqlite_path: "/tmp/momo/bars.db"
logging:
  level: "debug"
  format: "text"
simulation:
  symbols: ["AAA", "BBB"]
  days: 120
  window: 21
  fee: 0.001
  financing_rate: 0.02
  allocation: 0.1
  initial_balance: 50000.0
`)

	path := filepath.Join(t.TempDir(), "momo.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	os.Unsetenv("MOMO_PORT")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("STORAGE_BACKEND")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9999)
	}
	if cfg.Storage.Backend != "parquet" {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "parquet")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want debug/text", cfg.Logging)
	}

	sim := cfg.Simulation
	if len(sim.Symbols) != 2 || sim.Symbols[0] != "AAA" {
		t.Errorf("Simulation.Symbols = %v, want [AAA BBB]", sim.Symbols)
	}
	if sim.Days != 120 || sim.Window != 21 {
		t.Errorf("Simulation days/window = %d/%d, want 120/21", sim.Days, sim.Window)
	}
	if sim.Fee != 0.001 || sim.FinancingRate != 0.02 || sim.Allocation != 0.1 {
		t.Errorf("Simulation rates = %+v", sim)
	}
	if sim.InitialBalance != 50000.0 {
		t.Errorf("Simulation.InitialBalance = %v, want 50000", sim.InitialBalance)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	os.Unsetenv("MOMO_PORT")
	os.Unsetenv("STORAGE_BACKEND")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}

	want := Default()
	if cfg.Server.Port != want.Server.Port {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, want.Server.Port)
	}
	if cfg.Simulation.Window != 50 || cfg.Simulation.Days != 200 {
		t.Errorf("Simulation defaults = %+v", cfg.Simulation)
	}
	if len(cfg.Simulation.Symbols) != 5 {
		t.Errorf("default symbols = %v, want 5 tickers", cfg.Simulation.Symbols)
	}
	if cfg.Simulation.InitialBalance != 100000.0 {
		t.Errorf("default InitialBalance = %v, want 100000", cfg.Simulation.InitialBalance)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
server:
  port: 8080
storage:
  backend: "sqlite"
  sqlite_path: "/yaml/bars.db"
`)

	path := filepath.Join(t.TempDir(), "momo.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	os.Setenv("MOMO_PORT", "7070")
	os.Setenv("SQLITE_PATH", "/env/bars.db")
	defer os.Unsetenv("MOMO_PORT")
	defer os.Unsetenv("SQLITE_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 (env override)", cfg.Server.Port)
	}
	if cfg.Storage.SQLitePath != "/env/bars.db" {
		t.Errorf("Storage.SQLitePath = %q, want env override", cfg.Storage.SQLitePath)
	}
	// Backend should remain from YAML since no env override was set.
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want %q (from YAML)", cfg.Storage.Backend, "sqlite")
	}
}
