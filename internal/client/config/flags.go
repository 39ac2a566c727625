package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the Story API (default from Config)
//	-d string   path to the local database file
//	-g string   base URL of the delivery worker push gateway
//	-i int      online check interval in seconds
//
// Only the flags handled here are parsed; the rest of os.Args is filtered
// out via flagx.FilterArgs to avoid interfering with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-g", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the Story API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.PushGatewayURL, "g", cfg.PushGatewayURL, "push gateway base URL")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
