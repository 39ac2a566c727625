package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/config"
	"github.com/dmitrijs2005/storyshare/internal/client/services"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/client/storage"
	"github.com/dmitrijs2005/storyshare/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the CLI together: local storage, the API client, the session and
// the services on top of them.
type App struct {
	config        *config.Config
	repos         *storage.Repositories
	session       *session.Session
	auth          *services.AuthService
	stories       *services.StoryService
	sync          *services.SyncService
	notifications *services.NotificationService
	watcher       *services.OnlineWatcher
	log           logging.Logger
	reader        *bufio.Reader

	// lastList caches the most recent server page so "save <n>" can refer
	// to it by position.
	lastList []api.Story
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	sess, err := session.Load(ctx, repos.Metadata)
	if err != nil {
		repos.Close()
		return nil, err
	}

	apiClient := api.NewClient(cfg.APIBaseURL)

	a := &App{
		config:        cfg,
		repos:         repos,
		session:       sess,
		auth:          services.NewAuthService(apiClient, sess, log),
		stories:       services.NewStoryService(apiClient, repos.Stories, sess, log),
		sync:          services.NewSyncService(apiClient, repos.Stories, sess, services.FilePhotoResolver{}, log),
		notifications: services.NewNotificationService(apiClient, repos.Metadata, sess, cfg.PushGatewayURL, log),
		log:           log,
		reader:        bufio.NewReader(os.Stdin),
	}

	a.watcher = services.NewOnlineWatcher(apiClient, cfg.OnlineCheckInterval, a.onReconnect, log)
	return a, nil
}

// onReconnect runs a sync pass whenever connectivity comes back.
func (a *App) onReconnect(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := a.sync.SyncAll(syncCtx); err != nil {
		a.log.Warn(ctx, "background sync failed", "err", err)
	}
}

func (a *App) mode() Mode {
	if a.watcher.Online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

// Run starts the connectivity watcher and the REPL, and blocks until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.repos.Close()

	go a.watcher.Run(ctx)

	if a.session.Expired(time.Now()) {
		printlnFn("Your session has expired, please log in again.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
