package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/worker/cache"
	"github.com/dmitrijs2005/storyshare/internal/worker/config"
	"github.com/dmitrijs2005/storyshare/internal/worker/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	shown []push.Notification
}

func (f *fakeNotifier) Show(ctx context.Context, n push.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, n)
	return nil
}

func (f *fakeNotifier) all() []push.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]push.Notification(nil), f.shown...)
}

func newTestWorker(t *testing.T, cfg *config.Config) (*Worker, *fakeNotifier) {
	t.Helper()
	if cfg.CacheDBPath == "" {
		cfg.CacheDBPath = ":memory:"
	}
	if cfg.APIOrigin == "" {
		cfg.APIOrigin = "http://127.0.0.1:1"
	}
	if cfg.StaticOrigin == "" {
		cfg.StaticOrigin = "http://127.0.0.1:1"
	}
	if cfg.APIPathPrefix == "" {
		cfg.APIPathPrefix = "/v1/stories"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = time.Second
	}

	notifier := &fakeNotifier{}
	w, err := NewWorker(context.Background(), cfg, notifier, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.closeDB() })
	return w, notifier
}

func TestInstall_PrecachesConfiguredAssets(t *testing.T) {
	static := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/app.js":
			_, _ = io.WriteString(w, "asset:"+r.URL.Path)
		default:
			http.NotFound(w, r)
		}
	}))
	defer static.Close()

	w, _ := newTestWorker(t, &config.Config{
		StaticOrigin: static.URL,
		PrecacheURLs: []string{"/", "/app.js"},
	})

	ctx := context.Background()
	w.Install(ctx)

	got, err := w.store.Match(ctx, PrecacheName, "/app.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("asset:/app.js"), got.Body)

	got, err = w.store.Match(ctx, PrecacheName, "/")
	require.NoError(t, err)
	assert.Equal(t, []byte("asset:/"), got.Body)
}

func TestInstall_SkipsFailedAssets(t *testing.T) {
	static := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	static.Close() // origin unreachable, every fetch fails

	w, _ := newTestWorker(t, &config.Config{
		StaticOrigin: static.URL,
		PrecacheURLs: []string{"/app.js"},
	})

	ctx := context.Background()
	w.Install(ctx)

	_, err := w.store.Match(ctx, PrecacheName, "/app.js")
	assert.Error(t, err)
}

func TestActivate_DropsStaleCaches(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})
	ctx := context.Background()

	for _, name := range []string{PrecacheName, RuntimeCacheName, "storyshare-v0"} {
		require.NoError(t, w.store.Put(ctx, name, "/x", &cache.Entry{
			Status: http.StatusOK,
			Header: http.Header{},
			Body:   []byte("x"),
		}))
	}

	require.NoError(t, w.Activate(ctx))

	names, err := w.store.Names(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PrecacheName, RuntimeCacheName}, names)
}

func TestHandlePush_ShowsDecodedNotification(t *testing.T) {
	w, notifier := newTestWorker(t, &config.Config{})

	body := `{"title":"New story","options":{"body":"From Ann","storyId":"42"}}`
	rec := httptest.NewRecorder()
	w.HandlePush(rec, httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	shown := notifier.all()
	require.Len(t, shown, 1)
	assert.Equal(t, "New story", shown[0].Title)
	assert.Equal(t, "From Ann", shown[0].Body)
	assert.Equal(t, "42", shown[0].Data.StoryID)
}

func TestHandlePush_EmptyBodyShowsDefault(t *testing.T) {
	w, notifier := newTestWorker(t, &config.Config{})

	rec := httptest.NewRecorder()
	w.HandlePush(rec, httptest.NewRequest(http.MethodPost, "/push/abc", strings.NewReader("")))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	shown := notifier.all()
	require.Len(t, shown, 1)
	assert.Equal(t, push.DefaultTitle, shown[0].Title)
	assert.Equal(t, push.DefaultBody, shown[0].Body)
}

func TestHandlePush_RejectsGet(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})

	rec := httptest.NewRecorder()
	w.HandlePush(rec, httptest.NewRequest(http.MethodGet, "/push", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleClick_ViewOpensStoryWithoutClients(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})

	body := `{"action":"view","data":{"storyId":"42"}}`
	rec := httptest.NewRecorder()
	w.HandleClick(rec, httptest.NewRequest(http.MethodPost, "/notifications/click", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp clickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Focus)
	assert.Equal(t, "/#/story/42", resp.OpenURL)
}

func TestHandleClick_DismissDoesNothing(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})

	body := `{"action":"dismiss","data":{"storyId":"42"}}`
	rec := httptest.NewRecorder()
	w.HandleClick(rec, httptest.NewRequest(http.MethodPost, "/notifications/click", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp clickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, clickResponse{}, resp)
}

func TestHandleClick_BodyClickOpensRoot(t *testing.T) {
	w, _ := newTestWorker(t, &config.Config{})

	rec := httptest.NewRecorder()
	w.HandleClick(rec, httptest.NewRequest(http.MethodPost, "/notifications/click", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp clickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, push.RootURL, resp.OpenURL)
}
