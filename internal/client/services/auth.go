package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/session"
	"github.com/dmitrijs2005/storyshare/internal/logging"
)

// Authenticator is the slice of the Story API auth needs.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
}

// AuthService owns the session lifecycle: Begin on login, End on logout.
type AuthService struct {
	remote  Authenticator
	session *session.Session
	log     logging.Logger
}

func NewAuthService(remote Authenticator, sess *session.Session, log logging.Logger) *AuthService {
	return &AuthService{remote: remote, session: sess, log: log.With("component", "auth")}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	return s.remote.Register(ctx, name, email, password)
}

func (s *AuthService) Login(ctx context.Context, email, password string) error {
	res, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.session.Begin(ctx, res.Token, res.UserID, res.Name); err != nil {
		return fmt.Errorf("login succeeded but session could not be saved: %w", err)
	}
	s.log.Info(ctx, "logged in", "user", res.Name)
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.End(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "logged out")
	return nil
}
