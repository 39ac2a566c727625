// Package config loads runtime settings for the StoryShare CLI.
// Sources are layered: defaults, then a JSON file, then command-line flags,
// with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the StoryShare CLI.
//
// Fields:
//   - APIBaseURL: base URL of the remote Story API (including version prefix).
//   - DatabasePath: path to the local SQLite database.
//   - PushGatewayURL: base URL of the delivery worker's push endpoint,
//     registered with the server on subscribe.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	PushGatewayURL      string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.DatabasePath = "stories.db"
	c.PushGatewayURL = "http://127.0.0.1:8790"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
