package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/storyshare/internal/buildinfo"
	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/dmitrijs2005/storyshare/internal/worker"
	"github.com/dmitrijs2005/storyshare/internal/worker/config"

	_ "modernc.org/sqlite"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewDefault()

	w, err := worker.NewWorker(ctx, cfg, nil, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	w.Install(ctx)
	if err := w.Activate(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	if err := w.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
