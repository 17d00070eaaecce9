package resource

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SessionHandler reacts to the server rejecting the stored credential.
type SessionHandler interface {
	Expired(ctx context.Context, cause error)
}

// TokenClearer removes the stored credential.
type TokenClearer interface {
	ClearToken(ctx context.Context) error
}

// Navigator moves the user to the login entry point.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// Session clears the credential and redirects once per expiry, however many
// requests fail with it.
type Session struct {
	tokens   TokenClearer
	navigate Navigator
	logger   *zap.Logger

	once sync.Once
}

// NewSession builds a SessionHandler.
func NewSession(tokens TokenClearer, navigate Navigator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{tokens: tokens, navigate: navigate, logger: logger}
}

func (s *Session) Expired(ctx context.Context, cause error) {
	s.once.Do(func() {
		s.logger.Warn("session expired", zap.Error(cause))
		if s.tokens != nil {
			if err := s.tokens.ClearToken(ctx); err != nil {
				s.logger.Error("clear credential", zap.Error(err))
			}
		}
		if s.navigate != nil {
			s.navigate.RedirectToLogin()
		}
	})
}
