package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/google/uuid"
)

const keySubscription = "push.subscription"

// Subscriber is the slice of the Story API the notification service needs.
type Subscriber interface {
	SubscribeNotifications(ctx context.Context, token string, sub api.PushSubscription) error
	UnsubscribeNotifications(ctx context.Context, token string, endpoint string) error
}

// NotificationService manages the push subscription: it registers the
// delivery worker's endpoint with the server and remembers the subscription
// across restarts.
type NotificationService struct {
	remote  Subscriber
	meta    metadata.Repository
	session *session.Session
	gateway string // base URL the delivery worker listens on for pushes
	log     logging.Logger
}

func NewNotificationService(remote Subscriber, meta metadata.Repository, sess *session.Session, gateway string, log logging.Logger) *NotificationService {
	return &NotificationService{
		remote:  remote,
		meta:    meta,
		session: sess,
		gateway: gateway,
		log:     log.With("component", "notifications"),
	}
}

// Subscribe registers a fresh subscription with the server. Requires login.
func (s *NotificationService) Subscribe(ctx context.Context) error {
	if !s.session.LoggedIn() {
		return common.ErrUnauthorized
	}

	sub := api.PushSubscription{
		Endpoint: fmt.Sprintf("%s/push/%s", s.gateway, uuid.NewString()),
	}
	sub.Keys.P256dh = randKey(65)
	sub.Keys.Auth = randKey(16)

	if err := s.remote.SubscribeNotifications(ctx, s.session.Token(), sub); err != nil {
		return err
	}

	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := s.meta.Set(ctx, keySubscription, data); err != nil {
		return fmt.Errorf("subscribed but subscription could not be saved: %w", err)
	}

	s.log.Info(ctx, "subscribed to push notifications", "endpoint", sub.Endpoint)
	return nil
}

// Unsubscribe removes the stored subscription from the server and locally.
func (s *NotificationService) Unsubscribe(ctx context.Context) error {
	sub, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	if err := s.remote.UnsubscribeNotifications(ctx, s.session.Token(), sub.Endpoint); err != nil {
		return err
	}
	if err := s.meta.Delete(ctx, keySubscription); err != nil {
		return err
	}

	s.log.Info(ctx, "unsubscribed from push notifications")
	return nil
}

// Current returns the stored subscription, or nil when there is none.
func (s *NotificationService) Current(ctx context.Context) (*api.PushSubscription, error) {
	data, err := s.meta.Get(ctx, keySubscription)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sub api.PushSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, errors.New("stored subscription is corrupt")
	}
	return &sub, nil
}

// randKey returns n random bytes in standard base64, the format the server
// expects for subscription keys.
func randKey(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}
