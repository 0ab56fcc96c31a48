package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "papertrade-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Feed.Provider != "stub" {
		t.Fatalf("unexpected Feed.Provider: %s", cfg.Feed.Provider)
	}
	if len(cfg.Feed.Assets) != 2 || cfg.Feed.Assets[0] != "BTC" || cfg.Feed.Assets[1] != "ETH" {
		t.Fatalf("unexpected Feed.Assets: %+v", cfg.Feed.Assets)
	}
	if cfg.Feed.PollIntervalSecs != 2 {
		t.Fatalf("unexpected Feed.PollIntervalSecs: %d", cfg.Feed.PollIntervalSecs)
	}
	if cfg.Feed.Backfill {
		t.Fatalf("expected backfill disabled")
	}
	if cfg.Feed.WSURL != "ws://localhost:8083" {
		t.Fatalf("unexpected Feed.WSURL: %s", cfg.Feed.WSURL)
	}
	if cfg.Bots.TickIntervalSecs != 15 {
		t.Fatalf("unexpected Bots.TickIntervalSecs: %d", cfg.Bots.TickIntervalSecs)
	}
	if !cfg.Bots.Demo.Enabled {
		t.Fatalf("expected demo bot enabled")
	}
	if cfg.Bots.Demo.Strategy != "momentum" {
		t.Fatalf("unexpected demo strategy: %s", cfg.Bots.Demo.Strategy)
	}
	if cfg.Bots.Demo.StoplossAmount != 250 {
		t.Fatalf("unexpected demo stoploss: %.2f", cfg.Bots.Demo.StoplossAmount)
	}
	if cfg.Storage.Path != "test.db" {
		t.Fatalf("unexpected Storage.Path: %s", cfg.Storage.Path)
	}
	if cfg.Storage.TransactionsLog != "tx.log" {
		t.Fatalf("unexpected Storage.TransactionsLog: %s", cfg.Storage.TransactionsLog)
	}
	if cfg.Profiling.Enabled {
		t.Fatalf("expected profiling disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := &Config{
		App:  App{Name: "roundtrip", Env: "dev", MetricsAddr: ":9000", LogLevel: "info"},
		Feed: Feed{Provider: "coinbase", Assets: []string{"BTC"}, PollIntervalSecs: 5, Backfill: true},
		Bots: Bots{TickIntervalSecs: 60},
	}
	if err := Save(path, original); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.App.Name != "roundtrip" || loaded.Feed.Provider != "coinbase" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if !loaded.Feed.Backfill || loaded.Bots.TickIntervalSecs != 60 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestSaveNilConfig(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "config.yaml"), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
