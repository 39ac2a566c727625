package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/models"
	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	stories []api.Story
	token   string
}

func (f *fakeLister) ListStories(_ context.Context, token string, _ api.ListParams) ([]api.Story, error) {
	f.token = token
	return f.stories, nil
}

func TestStoryService_ListPassesSessionToken(t *testing.T) {
	repo, sess := setupStores(t)
	ctx := context.Background()
	require.NoError(t, sess.Begin(ctx, "t0k", "u1", "alice"))

	lister := &fakeLister{stories: []api.Story{{ID: "s1"}}}
	s := NewStoryService(lister, repo, sess, testLogger())

	got, err := s.List(ctx, api.ListParams{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "t0k", lister.token)
}

func TestStoryService_FavoritesNewestFirst(t *testing.T) {
	repo, sess := setupStores(t)
	ctx := context.Background()
	s := NewStoryService(&fakeLister{}, repo, sess, testLogger())

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Put(ctx, &models.StoryRecord{
			ID: id, Description: id, CreatedAt: base.Add(time.Duration(i) * time.Hour), Synced: true,
		}))
	}

	favs, err := s.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 3)
	assert.Equal(t, "new", favs[0].ID)
	assert.Equal(t, "old", favs[2].ID)
}

func TestStoryService_SaveFavorite_DuplicateReported(t *testing.T) {
	repo, sess := setupStores(t)
	ctx := context.Background()
	s := NewStoryService(&fakeLister{}, repo, sess, testLogger())

	story := api.Story{ID: "s1", Name: "n", Description: "d", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.SaveFavorite(ctx, story))

	err := s.SaveFavorite(ctx, story)
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	// saved server stories are synced from the start
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Synced)
}

func TestStoryService_Search(t *testing.T) {
	repo, sess := setupStores(t)
	ctx := context.Background()
	s := NewStoryService(&fakeLister{}, repo, sess, testLogger())

	now := time.Now().UTC()
	require.NoError(t, repo.Put(ctx, &models.StoryRecord{ID: "1", Name: "Alice", Description: "beach sunset", CreatedAt: now}))
	require.NoError(t, repo.Put(ctx, &models.StoryRecord{ID: "2", Name: "Bob", Description: "mountain", CreatedAt: now}))

	got, err := s.Search(ctx, "SUNSET")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = s.Search(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got, err = s.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSortRecords(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	recs := []models.StoryRecord{
		{ID: "b", Name: "Bob", Description: "zz", CreatedAt: base.Add(time.Hour)},
		{ID: "a", Name: "alice", Description: "aa", CreatedAt: base},
	}

	SortRecords(recs, "name", "asc")
	assert.Equal(t, "a", recs[0].ID)

	SortRecords(recs, "createdAt", "desc")
	assert.Equal(t, "b", recs[0].ID)

	SortRecords(recs, "description", "asc")
	assert.Equal(t, "a", recs[0].ID)
}
