// Package worker implements the delivery worker: a local proxy that keeps
// the app usable offline. It serves requests through named response caches,
// receives push payloads over HTTP and a websocket stream, shows them as
// notifications, and routes notification clicks back into connected pages.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/dmitrijs2005/storyshare/internal/worker/cache"
	"github.com/dmitrijs2005/storyshare/internal/worker/config"
	"github.com/dmitrijs2005/storyshare/internal/worker/push"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

// Cache names. Bumping the precache version makes Activate drop the
// previous generation.
const (
	PrecacheName     = "storyshare-v1"
	RuntimeCacheName = "storyshare-runtime"
)

// maxPushPayload bounds the body of an inbound push request.
const maxPushPayload = 64 * 1024

type Worker struct {
	cfg      *config.Config
	store    *cache.Store
	closeDB  func() error
	handler  *Handler
	hub      *Hub
	notifier Notifier
	log      logging.Logger
}

func NewWorker(ctx context.Context, cfg *config.Config, notifier Notifier, log logging.Logger) (*Worker, error) {
	store, db, err := cache.InitStore(ctx, cfg.CacheDBPath)
	if err != nil {
		return nil, err
	}

	handler, err := NewHandler(cfg.APIOrigin, cfg.StaticOrigin, cfg.APIPathPrefix, cfg.ReadTimeout, store, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	if notifier == nil {
		notifier = NewDesktopNotifier(log)
	}

	return &Worker{
		cfg:      cfg,
		store:    store,
		closeDB:  db.Close,
		handler:  handler,
		hub:      NewHub(log),
		notifier: notifier,
		log:      log.With("component", "worker"),
	}, nil
}

// Install fetches the configured static assets into the precache. A failed
// asset is logged and skipped; installation never blocks on the network
// being complete.
func (w *Worker) Install(ctx context.Context) {
	for _, u := range w.cfg.PrecacheURLs {
		entry, err := w.handler.Fetch(ctx, u)
		if err != nil {
			w.log.Warn(ctx, "precache fetch failed", "url", u, "err", err)
			continue
		}
		if err := w.store.Put(ctx, PrecacheName, u, entry); err != nil {
			w.log.Warn(ctx, "precache store failed", "url", u, "err", err)
			continue
		}
		w.log.Debug(ctx, "precached", "url", u)
	}
}

// Activate drops every cache except the current precache and the runtime
// cache, so a version bump leaves no stale entries behind.
func (w *Worker) Activate(ctx context.Context) error {
	n, err := w.store.DeleteOthers(ctx, PrecacheName, RuntimeCacheName)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Info(ctx, "dropped stale cache entries", "count", n)
	}
	return nil
}

// Run serves the interception proxy until ctx is cancelled. When a push
// stream URL is configured, a background goroutine keeps a websocket
// subscription alive for the whole run.
func (w *Worker) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", w.hub)
	mux.HandleFunc("/push", w.HandlePush)
	mux.HandleFunc("/push/", w.HandlePush)
	mux.HandleFunc("/notifications/click", w.HandleClick)
	mux.Handle("/", w.handler)

	srv := &http.Server{
		Addr:        w.cfg.ListenAddr,
		Handler:     mux,
		ReadTimeout: w.cfg.ReadTimeout,
	}

	if w.cfg.PushStreamURL != "" {
		go w.runPushStream(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	w.log.Info(ctx, "worker listening", "addr", w.cfg.ListenAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		w.hub.Close()
		_ = w.closeDB()
		return nil
	case err := <-errCh:
		_ = w.closeDB()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// HandlePush accepts a push payload over HTTP, as a push gateway would
// deliver it.
func (w *Worker) HandlePush(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPushPayload))
	if err != nil {
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	w.deliver(r.Context(), payload)
	rw.WriteHeader(http.StatusNoContent)
}

// clickRequest is the body of a notification click report.
type clickRequest struct {
	Action string `json:"action"`
	Data   struct {
		URL     string `json:"url"`
		StoryID string `json:"storyId"`
	} `json:"data"`
}

// clickResponse echoes the routing decision taken for the click.
type clickResponse struct {
	Focus       bool   `json:"focus"`
	NavigateURL string `json:"navigateUrl,omitempty"`
	OpenURL     string `json:"openUrl,omitempty"`
}

// HandleClick resolves a notification click and pushes the resulting
// commands to connected pages.
func (w *Worker) HandleClick(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	data := push.NotificationData{URL: req.Data.URL, StoryID: req.Data.StoryID}
	routing := push.RouteClick(req.Action, data, w.hub.HasClients())

	if routing.Focus {
		w.hub.Broadcast(ClientCommand{Type: "focus"})
	}
	if routing.NavigateURL != "" {
		w.hub.Broadcast(ClientCommand{Type: "navigate", URL: routing.NavigateURL})
	}
	if routing.OpenURL != "" {
		w.hub.Broadcast(ClientCommand{Type: "open", URL: routing.OpenURL})
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(clickResponse{
		Focus:       routing.Focus,
		NavigateURL: routing.NavigateURL,
		OpenURL:     routing.OpenURL,
	})
}

// deliver turns a raw payload into a notification and shows it. Decoding is
// total, so every payload ends up visible to the user one way or another.
func (w *Worker) deliver(ctx context.Context, payload []byte) {
	n := push.Decode(payload)
	if err := w.notifier.Show(ctx, n); err != nil {
		w.log.Error(ctx, "failed to show notification", "title", n.Title, "err", err)
	}
}

// runPushStream keeps a websocket subscription to the push gateway alive,
// reconnecting with fibonacci backoff capped at one minute. The backoff
// resets after every successful connection.
func (w *Worker) runPushStream(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		var conn *websocket.Conn
		b := retry.WithCappedDuration(time.Minute, retry.NewFibonacci(time.Second))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			c, _, err := websocket.DefaultDialer.DialContext(ctx, w.cfg.PushStreamURL, nil)
			if err != nil {
				w.log.Warn(ctx, "push stream dial failed", "url", w.cfg.PushStreamURL, "err", err)
				return retry.RetryableError(err)
			}
			conn = c
			return nil
		})
		if err != nil {
			return
		}

		w.log.Info(ctx, "push stream connected", "url", w.cfg.PushStreamURL)
		w.readPushStream(ctx, conn)
	}
}

func (w *Worker) readPushStream(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.log.Warn(ctx, "push stream closed", "err", err)
			}
			return
		}
		w.deliver(ctx, payload)
	}
}
