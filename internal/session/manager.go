package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rinkore1/BookServer/internal/kv"
)

// ErrSessionNotFound indicates the token is absent, expired or revoked.
var ErrSessionNotFound = errors.New("session: not found")

// Sessions live under their own key namespace so a token can never
// collide with a rate-limit counter or any other key space.
const keyPrefix = "session:"

// Manager maps opaque bearer tokens to user ids. It holds no state of
// its own: every session lives in the shared key-value store, so any
// number of service instances resolve the same tokens.
type Manager struct {
	store kv.Store
	ttl   time.Duration
}

func NewManager(store kv.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{store: store, ttl: ttl}
}

func key(token string) string {
	return keyPrefix + token
}

// Issue creates a session for userID and returns the new token.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("session: missing user id")
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}

	if err := m.store.SetWithTTL(ctx, key(token), userID, m.ttl); err != nil {
		return "", fmt.Errorf("session: failed to persist: %w", err)
	}

	return token, nil
}

// Validate reports whether the token maps to a live session. It does
// not refresh the TTL; idle sessions expire at their original
// deadline.
func (m *Manager) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return m.store.Exists(ctx, key(token))
}

// ResolveUser returns the user id behind the token.
func (m *Manager) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}

	userID, err := m.store.Get(ctx, key(token))
	if errors.Is(err, kv.ErrNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}

	return userID, nil
}

// Revoke deletes the session. Revoking an absent or already-expired
// token is a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, key(token))
}
