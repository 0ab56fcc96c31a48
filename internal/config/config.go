// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Feed describes the price-feed collaborator: which provider supplies ticks
// for which assets, and how often.
type Feed struct {
	Provider         string   `yaml:"provider"` // stub | coinbase | coinbase-ws
	Assets           []string `yaml:"assets"`
	PollIntervalSecs int      `yaml:"poll_interval_secs"`
	Backfill         bool     `yaml:"backfill"`
	SpotBaseURL      string   `yaml:"spot_base_url"`
	CandleBaseURL    string   `yaml:"candle_base_url"`
	WSURL            string   `yaml:"ws_url"`
}

// Bots groups bot-supervision knobs.
type Bots struct {
	TickIntervalSecs int     `yaml:"tick_interval_secs"`
	Demo             DemoBot `yaml:"demo"`
}

// DemoBot optionally starts one bot for the demo account at boot, useful
// for exercising the engine without an API caller.
type DemoBot struct {
	Enabled        bool    `yaml:"enabled"`
	Strategy       string  `yaml:"strategy"`
	BaseAsset      string  `yaml:"base_asset"`
	QuoteAsset     string  `yaml:"quote_asset"`
	StoplossAmount float64 `yaml:"stoploss_amount"`
}

// Storage locates the durable account mirror.
type Storage struct {
	Path            string `yaml:"path"`
	TransactionsLog string `yaml:"transactions_log"`
}

// Profiling configures the optional continuous profiler.
type Profiling struct {
	Enabled       bool   `yaml:"enabled"`
	ServerAddress string `yaml:"server_address"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Feed      Feed      `yaml:"feed"`
	Bots      Bots      `yaml:"bots"`
	Storage   Storage   `yaml:"storage"`
	Profiling Profiling `yaml:"profiling"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
