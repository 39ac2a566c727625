package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	subscribed   []api.PushSubscription
	unsubscribed []string
	tokens       []string
}

func (f *fakeSubscriber) SubscribeNotifications(ctx context.Context, token string, sub api.PushSubscription) error {
	f.tokens = append(f.tokens, token)
	f.subscribed = append(f.subscribed, sub)
	return nil
}

func (f *fakeSubscriber) UnsubscribeNotifications(ctx context.Context, token string, endpoint string) error {
	f.tokens = append(f.tokens, token)
	f.unsubscribed = append(f.unsubscribed, endpoint)
	return nil
}

func setupNotifications(t *testing.T) (*fakeSubscriber, metadata.Repository, *session.Session) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB);`)
	require.NoError(t, err)

	meta := metadata.NewSQLiteRepository(db)
	sess, err := session.Load(context.Background(), meta)
	require.NoError(t, err)

	return &fakeSubscriber{}, meta, sess
}

func TestSubscribe_RequiresLogin(t *testing.T) {
	remote, meta, sess := setupNotifications(t)
	svc := NewNotificationService(remote, meta, sess, "http://127.0.0.1:8790", testLogger())

	err := svc.Subscribe(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Empty(t, remote.subscribed)
}

func TestSubscribe_RegistersAndPersistsEndpoint(t *testing.T) {
	remote, meta, sess := setupNotifications(t)
	ctx := context.Background()
	require.NoError(t, sess.Begin(ctx, "tok-1", "u1", "Ann"))

	svc := NewNotificationService(remote, meta, sess, "http://127.0.0.1:8790", testLogger())
	require.NoError(t, svc.Subscribe(ctx))

	require.Len(t, remote.subscribed, 1)
	sub := remote.subscribed[0]
	assert.True(t, strings.HasPrefix(sub.Endpoint, "http://127.0.0.1:8790/push/"))
	assert.NotEmpty(t, sub.Keys.P256dh)
	assert.NotEmpty(t, sub.Keys.Auth)
	assert.Equal(t, []string{"tok-1"}, remote.tokens)

	stored, err := svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, sub.Endpoint, stored.Endpoint)
}

func TestUnsubscribe_RemovesStoredSubscription(t *testing.T) {
	remote, meta, sess := setupNotifications(t)
	ctx := context.Background()
	require.NoError(t, sess.Begin(ctx, "tok-1", "u1", "Ann"))

	svc := NewNotificationService(remote, meta, sess, "http://127.0.0.1:8790", testLogger())
	require.NoError(t, svc.Subscribe(ctx))
	endpoint := remote.subscribed[0].Endpoint

	require.NoError(t, svc.Unsubscribe(ctx))
	assert.Equal(t, []string{endpoint}, remote.unsubscribed)

	stored, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUnsubscribe_NoopWithoutSubscription(t *testing.T) {
	remote, meta, sess := setupNotifications(t)
	svc := NewNotificationService(remote, meta, sess, "http://127.0.0.1:8790", testLogger())

	require.NoError(t, svc.Unsubscribe(context.Background()))
	assert.Empty(t, remote.unsubscribed)
}
