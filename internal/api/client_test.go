package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestBearerTokenAttachedPerRequest(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"1"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Me(context.Background(), "t1"); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer t1")
	}

	// Login carries no token
	if _, err := c.Login(context.Background(), "a@b.com", "Secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("login must not send Authorization, got %q", gotAuth)
	}
}

func TestErrorParsing(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Email already registered"}`, "Email already registered"},
		{"error field", http.StatusBadRequest, `{"error":"bad request"}`, "bad request"},
		{"empty body", http.StatusInternalServerError, ``, ""},
		{"non-json body", http.StatusBadGateway, `upstream down`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Me(context.Background(), "t1")
			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.message)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Me(context.Background(), "stale")
	if !IsUnauthorized(err) {
		t.Errorf("401 must be recognized as unauthorized: %v", err)
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := New(srv.URL).Me(context.Background(), "t1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if IsUnauthorized(err) {
		t.Error("transport failure must not read as unauthorized")
	}
	if got := ErrorMessage(err, "Failed to fetch users"); got != "Failed to fetch users" {
		t.Errorf("ErrorMessage fallback = %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{StatusCode: 400, Message: "Invalid email or password"}
	if got := ErrorMessage(err, "Login failed"); got != "Invalid email or password" {
		t.Errorf("ErrorMessage = %q", got)
	}
	empty := &Error{StatusCode: 500}
	if got := ErrorMessage(empty, "Login failed"); got != "Login failed" {
		t.Errorf("ErrorMessage fallback = %q", got)
	}
}

func TestListUsersQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[],"pagination":{"currentPage":1,"totalPages":1,"totalUsers":0,"limit":10}}`))
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("page", "2")
	q.Set("limit", "10")
	q.Set("status", "inactive")
	q.Set("search", "jane")

	if _, err := New(srv.URL).ListUsers(context.Background(), "t1", q); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if gotQuery.Get("page") != "2" || gotQuery.Get("status") != "inactive" || gotQuery.Get("search") != "jane" {
		t.Errorf("query not forwarded: %v", gotQuery)
	}
}

func TestActionPaths(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if err := c.ActivateUser(ctx, "t1", "42"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPut || gotPath != "/admin/users/42/activate" {
		t.Errorf("activate: %s %s", gotMethod, gotPath)
	}

	if err := c.DeleteUser(ctx, "t1", "42"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/admin/users/42" {
		t.Errorf("delete: %s %s", gotMethod, gotPath)
	}
}
