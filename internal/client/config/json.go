package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/storyshare/internal/flagx"
	"github.com/dmitrijs2005/storyshare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be given either as strings like "3s" or as
// integer nanoseconds.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	DatabasePath        string         `json:"database_path"`
	PushGatewayURL      string         `json:"push_gateway_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flag. Missing flag means no JSON is loaded. Zero-valued
// fields in the file leave the existing value alone.
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PushGatewayURL != "" {
		cfg.PushGatewayURL = jc.PushGatewayURL
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
