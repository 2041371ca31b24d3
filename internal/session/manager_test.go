package session_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/db/migrations"
	"github.com/userconsole/internal/model"
	"github.com/userconsole/internal/session"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// In-memory databases are per-connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.FS.ReadFile("000001_create_sessions.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return db
}

func newTestManager(t *testing.T, backend http.Handler) (*session.Manager, *session.Store, *sql.DB) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db := newTestDB(t)
	store := session.NewStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewManager(store, api.New(srv.URL), logger), store, db
}

func countSessions(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return n
}

func TestLoginPersistsSession(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t1","user":{"id":"1","fullName":"Jane","email":"a@b.com","role":"user","status":"active"}}`))
	})
	m, store, _ := newTestManager(t, backend)

	sess, err := m.Login(context.Background(), "a@b.com", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !sess.IsAuthenticated() {
		t.Error("session must be authenticated after login")
	}
	if sess.IsAdmin() {
		t.Error("role=user must not be admin")
	}

	token, user, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if token != "t1" || user.Email != "a@b.com" {
		t.Errorf("durable copy mismatch: token=%q user=%+v", token, user)
	}
}

func TestLoginFailureMutatesNothing(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	})
	m, _, db := newTestManager(t, backend)

	sess, err := m.Login(context.Background(), "a@b.com", "wrong")
	if sess != nil {
		t.Error("failed login must not return a session")
	}
	if got := api.ErrorMessage(err, "Login failed"); got != "Invalid email or password" {
		t.Errorf("message = %q", got)
	}
	if n := countSessions(t, db); n != 0 {
		t.Errorf("failed login persisted %d rows", n)
	}
}

func TestSignupEstablishesSessionImmediately(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t2","user":{"id":"2","fullName":"New User","email":"n@b.com","role":"user","status":"active"}}`))
	})
	m, _, db := newTestManager(t, backend)

	sess, err := m.Signup(context.Background(), "New User", "n@b.com", "Secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !sess.IsAuthenticated() {
		t.Error("signup must authenticate immediately")
	}
	if n := countSessions(t, db); n != 1 {
		t.Errorf("expected 1 session row, got %d", n)
	}
}

func TestLogoutClearsStateEvenWhenServerFails(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	m, store, db := newTestManager(t, backend)

	id, err := store.Create(context.Background(), "t1", &model.User{ID: "1", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	m.Logout(context.Background(), &session.Session{ID: id, Token: "t1"})

	if _, _, err := store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("durable session must be gone after logout, got %v", err)
	}
	if n := countSessions(t, db); n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestRestoreRefreshesUserFromServer(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"1","fullName":"Fresh Name","email":"a@b.com","role":"user","status":"active"}}`))
	})
	m, store, _ := newTestManager(t, backend)

	id, err := store.Create(context.Background(), "t1", &model.User{ID: "1", FullName: "Stale Name", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess := m.Restore(context.Background(), id)
	if sess == nil {
		t.Fatal("expected restored session")
	}
	if sess.User.FullName != "Fresh Name" {
		t.Errorf("user not refreshed: %+v", sess.User)
	}

	_, user, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.FullName != "Fresh Name" {
		t.Errorf("refreshed user not re-persisted: %+v", user)
	}
}

func TestRestoreRejectedTokenDestroysSession(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expired"}`))
		case "/auth/logout":
			w.WriteHeader(http.StatusOK)
		}
	})
	m, store, _ := newTestManager(t, backend)

	id, err := store.Create(context.Background(), "stale", &model.User{ID: "1", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if sess := m.Restore(context.Background(), id); sess != nil {
		t.Error("rejected token must not restore a session")
	}
	if _, _, err := store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("durable session must be destroyed, got %v", err)
	}
}

func TestRestoreTransportFailureDestroysSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	db := newTestDB(t)
	store := session.NewStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := session.NewManager(store, api.New(srv.URL), logger)

	id, err := store.Create(context.Background(), "t1", &model.User{ID: "1", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if sess := m.Restore(context.Background(), id); sess != nil {
		t.Error("unreachable backend must not restore a session")
	}
	if _, _, err := store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("durable session must be destroyed on transport failure, got %v", err)
	}
}

func TestRestoreUnknownID(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown session must not reach the backend")
	})
	m, _, _ := newTestManager(t, backend)

	if sess := m.Restore(context.Background(), "nope"); sess != nil {
		t.Error("unknown session ID must restore nothing")
	}
}

func TestUpdateUserWritesThrough(t *testing.T) {
	m, store, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	id, err := store.Create(context.Background(), "t1", &model.User{ID: "1", FullName: "Before", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess := &session.Session{ID: id, Token: "t1", User: &model.User{ID: "1", FullName: "Before"}}

	updated := &model.User{ID: "1", FullName: "After", Role: model.RoleUser}
	if err := m.UpdateUser(context.Background(), sess, updated); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if sess.User.FullName != "After" {
		t.Error("in-memory user not replaced")
	}

	_, user, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.FullName != "After" {
		t.Errorf("durable user not replaced: %+v", user)
	}
}

func TestExpiredRowsInvisibleAndSwept(t *testing.T) {
	m, store, db := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	past := time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")
	_, err := db.Exec(
		`INSERT INTO sessions (id, token, user_json, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		"expired-id", "t1", `{"id":"1"}`, past, past,
	)
	if err != nil {
		t.Fatalf("insert expired row: %v", err)
	}

	if _, _, err := store.Get(context.Background(), "expired-id"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expired row must read as not found, got %v", err)
	}

	if err := m.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n := countSessions(t, db); n != 0 {
		t.Errorf("sweep left %d expired rows", n)
	}
}

func TestIsAuthenticatedRequiresBoth(t *testing.T) {
	var nilSession *session.Session
	if nilSession.IsAuthenticated() {
		t.Error("nil session must not be authenticated")
	}
	if (&session.Session{Token: "t1"}).IsAuthenticated() {
		t.Error("token without user must not be authenticated")
	}
	if (&session.Session{User: &model.User{ID: "1"}}).IsAuthenticated() {
		t.Error("user without token must not be authenticated")
	}
	full := &session.Session{Token: "t1", User: &model.User{ID: "1", Role: model.RoleAdmin}}
	if !full.IsAuthenticated() {
		t.Error("token and user together must be authenticated")
	}
	if !full.IsAdmin() {
		t.Error("admin role must report IsAdmin")
	}
}
