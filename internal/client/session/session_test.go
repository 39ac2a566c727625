package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB)`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

func TestSession_BeginLoadEnd(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	s, err := Load(ctx, repo)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.Begin(ctx, "t0k", "u1", "alice"))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "t0k", s.Token())
	assert.Equal(t, "alice", s.UserName())

	// a fresh load sees the persisted session
	restored, err := Load(ctx, repo)
	require.NoError(t, err)
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "u1", restored.UserID())

	require.NoError(t, s.End(ctx))
	assert.False(t, s.LoggedIn())

	cleared, err := Load(ctx, repo)
	require.NoError(t, err)
	assert.False(t, cleared.LoggedIn())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1",
		"exp":    exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestSession_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	s, err := Load(ctx, setupRepo(t))
	require.NoError(t, err)

	// no token: nothing to expire
	assert.False(t, s.Expired(now))

	require.NoError(t, s.Begin(ctx, signedToken(t, now.Add(time.Hour)), "u1", "a"))
	assert.False(t, s.Expired(now))

	require.NoError(t, s.Begin(ctx, signedToken(t, now.Add(-time.Hour)), "u1", "a"))
	assert.True(t, s.Expired(now))

	// garbage tokens are left for the server to reject
	require.NoError(t, s.Begin(ctx, "not-a-jwt", "u1", "a"))
	assert.False(t, s.Expired(now))
}
