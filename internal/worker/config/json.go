package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/storyshare/internal/flagx"
	"github.com/dmitrijs2005/storyshare/internal/timex"
)

// JsonConfig is the JSON DTO for the worker configuration.
type JsonConfig struct {
	ListenAddr    string         `json:"listen_addr"`
	APIOrigin     string         `json:"api_origin"`
	APIPathPrefix string         `json:"api_path_prefix"`
	StaticOrigin  string         `json:"static_origin"`
	PushStreamURL string         `json:"push_stream_url"`
	CacheDBPath   string         `json:"cache_db_path"`
	PrecacheURLs  []string       `json:"precache_urls"`
	ReadTimeout   timex.Duration `json:"read_timeout"`
}

func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ListenAddr != "" {
		cfg.ListenAddr = jc.ListenAddr
	}
	if jc.APIOrigin != "" {
		cfg.APIOrigin = jc.APIOrigin
	}
	if jc.APIPathPrefix != "" {
		cfg.APIPathPrefix = jc.APIPathPrefix
	}
	if jc.StaticOrigin != "" {
		cfg.StaticOrigin = jc.StaticOrigin
	}
	if jc.PushStreamURL != "" {
		cfg.PushStreamURL = jc.PushStreamURL
	}
	if jc.CacheDBPath != "" {
		cfg.CacheDBPath = jc.CacheDBPath
	}
	if len(jc.PrecacheURLs) > 0 {
		cfg.PrecacheURLs = jc.PrecacheURLs
	}
	if jc.ReadTimeout.Duration != 0 {
		cfg.ReadTimeout = jc.ReadTimeout.Duration
	}
}
