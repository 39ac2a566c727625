// Package session holds the authenticated user's state as an explicit object
// with a single owner (the app), instead of ambient token lookups scattered
// across components. It is set at login, cleared at logout, and persisted
// through the metadata repository so a restart keeps the user signed in.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyToken  = "session.token"
	keyUserID = "session.user_id"
	keyName   = "session.name"
)

type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
	name   string

	repo metadata.Repository
}

// Load restores a session from the metadata repository. A missing token
// simply yields a logged-out session.
func Load(ctx context.Context, repo metadata.Repository) (*Session, error) {
	s := &Session{repo: repo}

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if token == nil {
		return s, nil
	}

	userID, err := repo.Get(ctx, keyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	name, err := repo.Get(ctx, keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.token = string(token)
	s.userID = string(userID)
	s.name = string(name)
	return s, nil
}

// Begin stores the login result and persists it.
func (s *Session) Begin(ctx context.Context, token, userID, name string) error {
	s.mu.Lock()
	s.token, s.userID, s.name = token, userID, name
	s.mu.Unlock()

	if err := s.repo.Set(ctx, keyToken, []byte(token)); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, keyUserID, []byte(userID)); err != nil {
		return err
	}
	return s.repo.Set(ctx, keyName, []byte(name))
}

// End clears the session in memory and on disk.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.userID, s.name = "", "", ""
	s.mu.Unlock()

	for _, key := range []string{keyToken, keyUserID, keyName} {
		if err := s.repo.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Expired reports whether the stored token has an exp claim in the past.
// The signature is not verified here: only the server holds the key, the
// client just wants to know whether a re-login is due. Tokens without an
// exp claim, or tokens that do not parse, are treated as non-expired and
// left for the server to reject.
func (s *Session) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
