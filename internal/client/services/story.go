package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/models"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/stories"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/dmitrijs2005/storyshare/internal/logging"
)

// Lister is the slice of the Story API the story service reads from.
type Lister interface {
	ListStories(ctx context.Context, token string, p api.ListParams) ([]api.Story, error)
}

// StoryService serves the browsing side: remote listing plus the local
// favorites/queue view over the story repository.
type StoryService struct {
	remote  Lister
	repo    stories.Repository
	session *session.Session
	log     logging.Logger
}

func NewStoryService(remote Lister, repo stories.Repository, sess *session.Session, log logging.Logger) *StoryService {
	return &StoryService{remote: remote, repo: repo, session: sess, log: log.With("component", "stories")}
}

// List fetches a page of stories from the server.
func (s *StoryService) List(ctx context.Context, p api.ListParams) ([]api.Story, error) {
	return s.remote.ListStories(ctx, s.session.Token(), p)
}

// Favorites returns all local records, newest first.
func (s *StoryService) Favorites(ctx context.Context) ([]models.StoryRecord, error) {
	recs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

// SaveFavorite stores a server story locally. Server stories are confirmed
// by definition, so the record is synced from the start.
func (s *StoryService) SaveFavorite(ctx context.Context, story api.Story) error {
	rec := &models.StoryRecord{
		ID:          story.ID,
		Name:        story.Name,
		Description: story.Description,
		PhotoURL:    story.PhotoURL,
		CreatedAt:   story.CreatedAt,
		Lat:         story.Lat,
		Lon:         story.Lon,
		Synced:      true,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return fmt.Errorf("story %s is already saved: %w", story.ID, common.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// Delete removes a local record permanently. There is no tombstone.
func (s *StoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Search filters local records by keyword over name and description,
// case-insensitively.
func (s *StoryService) Search(ctx context.Context, keyword string) ([]models.StoryRecord, error) {
	recs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return recs, nil
	}

	filtered := recs[:0]
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Name), kw) ||
			strings.Contains(strings.ToLower(r.Description), kw) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// SortRecords orders records in place by "createdAt", "name" or
// "description"; order is "asc" or "desc".
func SortRecords(recs []models.StoryRecord, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "name":
			return strings.ToLower(recs[i].Name) < strings.ToLower(recs[j].Name)
		case "description":
			return strings.ToLower(recs[i].Description) < strings.ToLower(recs[j].Description)
		default:
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
	}
	if order == "desc" {
		sort.SliceStable(recs, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(recs, less)
}
