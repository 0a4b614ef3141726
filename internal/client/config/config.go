package config

import "time"

// Config holds runtime settings for the dashboard CLI.
//
// Fields:
//   - BackendURL: base URL of the dashboard backend.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: path of the local SQLite state database.
//   - PageLimit: markets fetched per page.
//   - OnlineCheckInterval: how often the client probes backend reachability.
type Config struct {
	BackendURL          string
	RequestTimeout      time.Duration
	DatabasePath        string
	PageLimit           int
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://localhost:5000"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "dashboard.db"
	c.PageLimit = 12
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
