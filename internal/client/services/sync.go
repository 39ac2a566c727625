package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/models"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/stories"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/dmitrijs2005/storyshare/internal/logging"
)

// Remote is the slice of the Story API the sync coordinator talks to.
type Remote interface {
	CreateStory(ctx context.Context, token string, p api.StoryPayload) error
	CreateStoryGuest(ctx context.Context, p api.StoryPayload) error
}

// PhotoResolver turns a record's local photo reference into image bytes for
// replay. The reference is opaque to the coordinator.
type PhotoResolver interface {
	Resolve(ctx context.Context, ref string) (data []byte, name string, err error)
}

// Submission is a new story as assembled by the UI: trimmed description,
// photo bytes plus the local reference they came from, optional coordinates.
type Submission struct {
	Description string
	Photo       []byte
	PhotoRef    string
	Lat         *float64
	Lon         *float64
}

// SubmitStatus tells the caller how a submission ended up.
type SubmitStatus int

const (
	// Submitted: the server accepted the story; nothing was written locally.
	Submitted SubmitStatus = iota
	// SavedOffline: the server was unreachable and the story was queued
	// locally for a later sync pass.
	SavedOffline
)

// Report is the aggregate outcome of one reconciliation pass.
type Report struct {
	SuccessCount int
	FailureCount int
}

// SyncService bridges submissions and the local queue and runs the
// reconciliation pass over unsynced records.
type SyncService struct {
	remote  Remote
	repo    stories.Repository
	session *session.Session
	photos  PhotoResolver
	log     logging.Logger

	// test seam
	now func() time.Time

	// single-flight: a second SyncAll trigger while a pass is running is
	// coalesced into the running pass instead of racing it.
	mu       sync.Mutex
	inflight *syncPass
}

type syncPass struct {
	done   chan struct{}
	report Report
	err    error
}

func NewSyncService(remote Remote, repo stories.Repository, sess *session.Session, photos PhotoResolver, log logging.Logger) *SyncService {
	return &SyncService{
		remote:  remote,
		repo:    repo,
		session: sess,
		photos:  photos,
		log:     log.With("component", "sync"),
		now:     time.Now,
	}
}

// Submit attempts remote creation first. On a transport failure the story is
// queued locally with an offline id; an application-level rejection is
// returned verbatim and nothing is persisted.
func (s *SyncService) Submit(ctx context.Context, sub Submission) (SubmitStatus, error) {
	description := strings.TrimSpace(sub.Description)
	if description == "" {
		return 0, errors.New("description must not be empty")
	}

	payload := api.StoryPayload{
		Description: description,
		Photo:       sub.Photo,
		Lat:         sub.Lat,
		Lon:         sub.Lon,
	}

	err := s.create(ctx, payload)
	if err == nil {
		return Submitted, nil
	}

	if !errors.Is(err, common.ErrUnavailable) {
		// Server reachable but rejected the story. Never queued.
		return 0, err
	}

	now := s.now()
	rec := &models.StoryRecord{
		ID:          models.NewOfflineID(now),
		Name:        s.session.UserName(),
		Description: description,
		PhotoURL:    sub.PhotoRef,
		CreatedAt:   now,
		Lat:         sub.Lat,
		Lon:         sub.Lon,
		Synced:      false,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return 0, fmt.Errorf("story could not be queued: %w", err)
	}

	s.log.Info(ctx, "story saved offline", "id", rec.ID)
	return SavedOffline, nil
}

// SyncAll replays every unsynced record against the server, sequentially,
// isolating per-record failures. Concurrent callers (manual trigger plus
// reconnect signal) share a single pass and its report.
func (s *SyncService) SyncAll(ctx context.Context) (Report, error) {
	s.mu.Lock()
	if p := s.inflight; p != nil {
		s.mu.Unlock()
		select {
		case <-p.done:
			return p.report, p.err
		case <-ctx.Done():
			return Report{}, ctx.Err()
		}
	}
	p := &syncPass{done: make(chan struct{})}
	s.inflight = p
	s.mu.Unlock()

	p.report, p.err = s.runPass(ctx)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	close(p.done)

	return p.report, p.err
}

func (s *SyncService) runPass(ctx context.Context) (Report, error) {
	queue, err := s.repo.FindBySync(ctx, false)
	if err != nil {
		return Report{}, fmt.Errorf("failed to enumerate sync queue: %w", err)
	}

	if len(queue) == 0 {
		s.log.Info(ctx, "nothing to sync")
		return Report{}, nil
	}

	var report Report
	for i := range queue {
		// Strictly one in-flight submission: record N+1 is not attempted
		// until record N's outcome is recorded.
		if s.syncOne(ctx, &queue[i]) {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}

	s.log.Info(ctx, "sync finished", "success", report.SuccessCount, "failed", report.FailureCount)
	return report, nil
}

// syncOne replays a single record. Any failure leaves the record untouched.
func (s *SyncService) syncOne(ctx context.Context, rec *models.StoryRecord) bool {
	photo, name, err := s.photos.Resolve(ctx, rec.PhotoURL)
	if err != nil {
		s.log.Warn(ctx, "photo unavailable for replay", "id", rec.ID, "err", err)
		return false
	}

	payload := api.StoryPayload{
		Description: rec.Description,
		Photo:       photo,
		PhotoName:   name,
		Lat:         rec.Lat,
		Lon:         rec.Lon,
	}

	if err := s.create(ctx, payload); err != nil {
		s.log.Warn(ctx, "replay failed", "id", rec.ID, "err", err)
		return false
	}

	// The offline id is kept: the guest endpoint does not reliably return
	// a server id to re-key on.
	rec.Synced = true
	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.log.Warn(ctx, "failed to mark story synced", "id", rec.ID, "err", err)
		return false
	}
	return true
}

func (s *SyncService) create(ctx context.Context, p api.StoryPayload) error {
	if s.session.LoggedIn() {
		return s.remote.CreateStory(ctx, s.session.Token(), p)
	}
	return s.remote.CreateStoryGuest(ctx, p)
}
