package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/logging"
)

// Pinger probes server reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// OnlineWatcher periodically probes the server and tracks connectivity.
// An offline-to-online transition fires the reconnect callback, which the
// app wires to a sync pass.
type OnlineWatcher struct {
	probe       Pinger
	interval    time.Duration
	onReconnect func(ctx context.Context)
	log         logging.Logger

	mu      sync.RWMutex
	online  bool
	settled bool // first probe result recorded
}

func NewOnlineWatcher(probe Pinger, interval time.Duration, onReconnect func(ctx context.Context), log logging.Logger) *OnlineWatcher {
	return &OnlineWatcher{
		probe:       probe,
		interval:    interval,
		onReconnect: onReconnect,
		log:         log.With("component", "watcher"),
	}
}

// Online reports the last observed connectivity state.
func (w *OnlineWatcher) Online() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.online
}

// Run blocks until ctx is cancelled, probing at the configured interval.
func (w *OnlineWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *OnlineWatcher) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := w.probe.Ping(probeCtx)
	cancel()

	w.mu.Lock()
	wasOnline, settled := w.online, w.settled
	w.online, w.settled = err == nil, true
	nowOnline := w.online
	w.mu.Unlock()

	if !settled || wasOnline == nowOnline {
		return
	}

	if nowOnline {
		w.log.Info(ctx, "connection restored")
		if w.onReconnect != nil {
			w.onReconnect(ctx)
		}
	} else {
		w.log.Warn(ctx, "connection lost, switching to offline mode")
	}
}
