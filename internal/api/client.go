package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/userconsole/internal/model"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"

	requestTimeout = 15 * time.Second
)

// Client talks to the backend user-management API. All business logic
// (hashing, token issuance, persistence) lives behind these endpoints; the
// client only moves JSON and attaches the bearer token it is given.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// doRequest performs one request. The token is read per call, never cached,
// so a login or logout between calls is always reflected.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, token, nil, result)
}

func (c *Client) post(ctx context.Context, path, token string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, token, body, result)
}

func (c *Client) put(ctx context.Context, path, token string, body, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, token, body, result)
}

func (c *Client) delete(ctx context.Context, path, token string) error {
	return c.doRequest(ctx, http.MethodDelete, path, token, nil, nil)
}

// AuthResponse is the body of successful signup and login calls.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type userResponse struct {
	User model.User `json:"user"`
}

// Signup creates an account. A successful signup is immediately
// authenticated; there is no separate confirmation step.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (*AuthResponse, error) {
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	var resp AuthResponse
	if err := c.post(ctx, "/auth/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me validates the token and returns the current user.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var resp userResponse
	if err := c.get(ctx, "/auth/me", token, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout invalidates the session server-side. Best effort; callers clear
// local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/auth/logout", token, nil, nil)
}

// Profile fetches the caller's own profile.
func (c *Client) Profile(ctx context.Context, token string) (*model.User, error) {
	var resp userResponse
	if err := c.get(ctx, "/users/profile", token, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateProfile updates the caller's name and email and returns the fresh
// user record.
func (c *Client) UpdateProfile(ctx context.Context, token, fullName, email string) (*model.User, error) {
	body := map[string]string{"fullName": fullName, "email": email}
	var resp userResponse
	if err := c.put(ctx, "/users/profile", token, body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ChangePassword rotates the caller's password.
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.put(ctx, "/users/change-password", token, body, nil)
}

// ListUsers fetches one page of the admin user table. The query carries
// page, limit and any active filters.
func (c *Client) ListUsers(ctx context.Context, token string, query url.Values) (*model.UserList, error) {
	var resp model.UserList
	if err := c.get(ctx, "/admin/users?"+query.Encode(), token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateUser sets the account status to active.
func (c *Client) ActivateUser(ctx context.Context, token, id string) error {
	return c.put(ctx, "/admin/users/"+url.PathEscape(id)+"/activate", token, nil, nil)
}

// DeactivateUser sets the account status to inactive.
func (c *Client) DeactivateUser(ctx context.Context, token, id string) error {
	return c.put(ctx, "/admin/users/"+url.PathEscape(id)+"/deactivate", token, nil, nil)
}

// DeleteUser removes the account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/admin/users/"+url.PathEscape(id), token)
}
