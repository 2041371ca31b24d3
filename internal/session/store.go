package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/userconsole/internal/model"
)

// TTL is how long a session row (and its cookie) lives.
const TTL = 7 * 24 * time.Hour

// ErrNotFound is returned when a session row does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists the durable mirror of each session: the backend token and
// the serialized user record, keyed by a random ID carried in the cookie.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new session row and returns its ID.
func (s *Store) Create(ctx context.Context, token string, user *model.User) (string, error) {
	id := newToken()
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal user: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_json, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		id, token, string(userJSON), format(now), format(now.Add(TTL)),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// Get returns the token and user for a live session.
func (s *Store) Get(ctx context.Context, id string) (string, *model.User, error) {
	var token, userJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json FROM sessions WHERE id = ? AND expires_at > ?`,
		id, format(time.Now().UTC()),
	).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("select session: %w", err)
	}
	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return "", nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return token, &user, nil
}

// UpdateUser overwrites the persisted user copy. Called whenever the
// in-memory user changes so the two never diverge.
func (s *Store) UpdateUser(ctx context.Context, id string, user *model.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET user_json = ? WHERE id = ?`, string(userJSON), id)
	return err
}

// Delete removes a session row.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpired removes expired rows. Run periodically.
func (s *Store) DeleteExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, format(time.Now().UTC()))
	return err
}

func format(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
