package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/dmitrijs2005/storyshare/internal/worker/cache"
)

// offlineEnvelope is served when a network-first request cannot be satisfied
// from either the network or the cache. It is shaped like the API's own
// error envelope so callers see one contract online and offline.
const offlineEnvelope = `{"error":true,"message":"offline"}`

// Handler intercepts requests and applies one of two policies:
//
//   - network-first for API paths: fetch, cache successful responses into
//     the runtime cache, fall back to the cache, finally synthesize an
//     offline envelope;
//   - cache-first for everything else: serve the cached asset if present,
//     otherwise fetch it without writing back (the precache covers statics).
type Handler struct {
	api       *url.URL
	static    *url.URL
	apiPrefix string
	store     *cache.Store
	client    *http.Client
	log       logging.Logger
}

func NewHandler(apiOrigin, staticOrigin, apiPrefix string, timeout time.Duration, store *cache.Store, log logging.Logger) (*Handler, error) {
	api, err := url.Parse(apiOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid API origin: %w", err)
	}
	static, err := url.Parse(staticOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid static origin: %w", err)
	}

	return &Handler{
		api:       api,
		static:    static,
		apiPrefix: apiPrefix,
		store:     store,
		client:    &http.Client{Timeout: timeout},
		log:       log.With("component", "fetch"),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, h.apiPrefix) {
		h.networkFirst(w, r)
		return
	}
	h.cacheFirst(w, r)
}

// key identifies a request in the cache: path plus query, like the request
// URL the original cache was keyed by.
func key(r *http.Request) string {
	return r.URL.RequestURI()
}

// servableFromCache reports whether a cached response may answer the request.
// Entries are keyed by URL only, so serving a cached GET body to a POST would
// turn a failed write into a fake success; only reads match the cache.
func servableFromCache(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func (h *Handler) networkFirst(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := h.forward(r, h.api)
	if err != nil {
		h.log.Warn(ctx, "network fetch failed, trying cache", "url", key(r), "err", err)
		if servableFromCache(r) {
			if cached, cerr := h.store.Match(ctx, RuntimeCacheName, key(r)); cerr == nil {
				writeEntry(w, cached)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, offlineEnvelope)
		return
	}

	// Only successful reads go into the runtime cache.
	if r.Method == http.MethodGet && entry.Status == http.StatusOK {
		if err := h.store.Put(ctx, RuntimeCacheName, key(r), entry); err != nil {
			h.log.Warn(ctx, "failed to cache response", "url", key(r), "err", err)
		}
	}
	writeEntry(w, entry)
}

func (h *Handler) cacheFirst(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if servableFromCache(r) {
		if cached, err := h.store.MatchAny(ctx, key(r)); err == nil {
			writeEntry(w, cached)
			return
		}
	}

	entry, err := h.forward(r, h.static)
	if err != nil {
		h.log.Warn(ctx, "static fetch failed", "url", key(r), "err", err)
		http.Error(w, "offline", http.StatusServiceUnavailable)
		return
	}
	// No write-back here: static assets are covered by the precache.
	writeEntry(w, entry)
}

// forward replays the request against the given origin and drains the
// response into a cacheable entry.
func (h *Handler) forward(r *http.Request, origin *url.URL) (*cache.Entry, error) {
	upstream := *origin
	upstream.Path = strings.TrimSuffix(upstream.Path, "/") + r.URL.Path
	upstream.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream.String(), r.Body)
	if err != nil {
		return nil, err
	}
	copyHeaders(req.Header, r.Header)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &cache.Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

// Fetch retrieves a single URL from the static origin; used by the precache
// pass on install.
func (h *Handler) Fetch(ctx context.Context, path string) (*cache.Entry, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	r.URL.Path = path
	return h.forward(r, h.static)
}

func writeEntry(w http.ResponseWriter, e *cache.Entry) {
	copyHeaders(w.Header(), e.Header)
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
