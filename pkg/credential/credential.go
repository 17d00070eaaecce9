// Package credential keeps the bearer token used for every authenticated
// call. Nothing outside this package touches the persisted value.
package credential

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// TokenKey is the persisted key of the bearer token.
const TokenKey = "auth_token"

// ErrNoCredential is returned when no token is stored.
var ErrNoCredential = errors.New("no stored credential, run login first")

// Store persists a single token.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Manager is the process wide credential. It is injected into API clients
// and into the session handler that clears it on auth failures.
type Manager struct {
	store  Store
	logger *zap.Logger
}

// NewManager wraps a store.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// Token returns the stored token.
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, err := m.store.Get(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// SetToken stores a new token; surrounding whitespace and a "Bearer " prefix
// are stripped.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return errors.New("token must not be empty")
	}
	if err := m.store.Set(ctx, token); err != nil {
		return err
	}
	m.logger.Debug("credential stored")
	return nil
}

// ClearToken removes the stored token.
func (m *Manager) ClearToken(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear credential failed", zap.Error(err))
		return err
	}
	m.logger.Info("credential cleared")
	return nil
}
