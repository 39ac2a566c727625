// Package config loads runtime settings for the delivery worker. Sources are
// layered the same way as the CLI's: defaults, then JSON, then flags.
package config

import "time"

// Config holds runtime settings for the delivery worker.
//
// Fields:
//   - ListenAddr: address the interception proxy listens on.
//   - APIOrigin: origin of the remote Story API.
//   - APIPathPrefix: request paths under this prefix use the network-first
//     policy; everything else is cache-first.
//   - StaticOrigin: origin serving the app's static assets.
//   - PushStreamURL: websocket URL delivering push payloads; empty disables
//     the stream (pushes can still arrive over HTTP).
//   - CacheDBPath: path to the SQLite cache database.
//   - PrecacheURLs: static asset paths fetched into the precache on install.
//   - ReadTimeout: upstream fetch timeout.
type Config struct {
	ListenAddr    string
	APIOrigin     string
	APIPathPrefix string
	StaticOrigin  string
	PushStreamURL string
	CacheDBPath   string
	PrecacheURLs  []string
	ReadTimeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:8790"
	c.APIOrigin = "https://story-api.dicoding.dev"
	c.APIPathPrefix = "/v1/stories"
	c.StaticOrigin = "http://127.0.0.1:5173"
	c.PushStreamURL = ""
	c.CacheDBPath = "worker-cache.db"
	c.ReadTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays JSON and
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
