package session

import (
	"context"
	"log/slog"

	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/model"
)

// Manager owns session state. Every mutating operation writes through to
// the durable store in the same call, so the in-memory session handed to a
// request and the persisted copy never diverge.
type Manager struct {
	store  *Store
	api    *api.Client
	logger *slog.Logger
}

func NewManager(store *Store, client *api.Client, logger *slog.Logger) *Manager {
	return &Manager{store: store, api: client, logger: logger}
}

// Restore loads the cached token and user for a session ID, then validates
// the token against GET /auth/me. On success the cached user is replaced
// with the fresh server copy and re-persisted. On any failure, network or
// authorization, the session is treated as invalid and torn down the same
// way Logout tears it down.
func (m *Manager) Restore(ctx context.Context, sessionID string) *Session {
	token, user, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil
	}

	sess := &Session{ID: sessionID, Token: token, User: user}

	fresh, err := m.api.Me(ctx, token)
	if err != nil {
		m.logger.Warn("session validation failed", "err", err)
		m.Logout(ctx, sess)
		return nil
	}

	sess.User = fresh
	if err := m.store.UpdateUser(ctx, sessionID, fresh); err != nil {
		m.logger.Error("failed to persist refreshed user", "err", err)
	}
	return sess
}

// Login authenticates against the backend. On success the token and user
// are persisted and the new session returned. On failure nothing is
// mutated; the caller extracts the display message from err.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.persist(ctx, resp)
}

// Signup registers an account and, like the backend contract promises,
// establishes an authenticated session immediately.
func (m *Manager) Signup(ctx context.Context, fullName, email, password string) (*Session, error) {
	resp, err := m.api.Signup(ctx, fullName, email, password)
	if err != nil {
		return nil, err
	}
	return m.persist(ctx, resp)
}

func (m *Manager) persist(ctx context.Context, resp *api.AuthResponse) (*Session, error) {
	user := resp.User
	id, err := m.store.Create(ctx, resp.Token, &user)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Token: resp.Token, User: &user}, nil
}

// Logout calls the server logout endpoint best-effort and unconditionally
// removes the durable session afterward. The cleanup runs whether or not
// the server call succeeded.
func (m *Manager) Logout(ctx context.Context, sess *Session) {
	defer func() {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			m.logger.Error("failed to delete session", "err", err)
		}
	}()

	if sess.Token == "" {
		return
	}
	if err := m.api.Logout(ctx, sess.Token); err != nil {
		m.logger.Warn("logout request failed", "err", err)
	}
}

// Destroy removes the durable session without the server call. Used by the
// global authorization-failure path, where the token is already dead.
func (m *Manager) Destroy(ctx context.Context, sessionID string) {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Error("failed to delete session", "err", err)
	}
}

// UpdateUser replaces the session's user record and re-persists it. Used
// after profile edits so the session stays consistent without a re-fetch.
func (m *Manager) UpdateUser(ctx context.Context, sess *Session, user *model.User) error {
	if err := m.store.UpdateUser(ctx, sess.ID, user); err != nil {
		return err
	}
	sess.User = user
	return nil
}

// Sweep removes expired session rows.
func (m *Manager) Sweep(ctx context.Context) error {
	return m.store.DeleteExpired(ctx)
}
