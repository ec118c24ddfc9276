package config

import "time"

// Config holds runtime settings for the postboard terminal client.
//
// Fields:
//   - ServerURL: base URL of the REST gateway, including the /api prefix.
//   - RequestTimeout: per-request timeout for gateway calls.
//   - DatabaseDSN: SQLite file holding the stored credential (":memory:" keeps nothing).
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DatabaseDSN    string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabaseDSN = "board.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg, ".env")
	parseFlags(cfg)
	return cfg
}
