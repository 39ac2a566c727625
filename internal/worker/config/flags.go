package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/storyshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-l string   listen address of the interception proxy
//	-o string   origin of the Story API
//	-s string   origin serving static assets
//	-p string   websocket URL of the push stream
//	-d string   path to the cache database
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-o", "-s", "-p", "-d"})

	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "l", cfg.ListenAddr, "listen address")
	fs.StringVar(&cfg.APIOrigin, "o", cfg.APIOrigin, "Story API origin")
	fs.StringVar(&cfg.StaticOrigin, "s", cfg.StaticOrigin, "static asset origin")
	fs.StringVar(&cfg.PushStreamURL, "p", cfg.PushStreamURL, "push stream websocket URL")
	fs.StringVar(&cfg.CacheDBPath, "d", cfg.CacheDBPath, "cache database path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
