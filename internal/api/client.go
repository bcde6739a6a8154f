// Package api is the HTTP client for the platform's account and room
// directory endpoints. Authentication is cookie based: a successful login
// stores the session cookie in the client's jar, and the same jar is handed
// to the WebSocket dialer so the real-time channel is authenticated too.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SessionCookieName is the cookie the server sets on login.
const SessionCookieName = "token"

var (
	// ErrUnauthenticated is returned when the server does not recognize the
	// session cookie.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRoomNotFound is returned for an unknown room id, distinguished
	// from generic directory failures.
	ErrRoomNotFound = errors.New("room not found")

	// ErrUsernameTaken is returned when registration hits a duplicate
	// username.
	ErrUsernameTaken = errors.New("username already exists")
)

// Room status values used by the directory.
const (
	RoomWaiting  = "Waiting"
	RoomPlaying  = "Playing"
	RoomFinished = "Finished"
)

// RoomSummary describes one room in the directory. It is fetched once per
// session and never mutated by socket traffic.
type RoomSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client talks to the platform HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL (e.g. http://localhost:8000)
// with a fresh cookie jar.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Jar exposes the cookie jar so the WebSocket dialer can share the session
// cookie.
func (c *Client) Jar() http.CookieJar { return c.http.Jar }

// SessionToken returns the raw session cookie value, if one is held.
func (c *Client) SessionToken() (string, bool) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", false
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == SessionCookieName {
			return ck.Value, true
		}
	}
	return "", false
}

// Health probes GET /api/health. Used before login to fail fast with a
// page-level error instead of a confusing credential failure.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %s", respError(resp))
	}
	return nil
}

// Register creates an account. A 409 maps to ErrUsernameTaken.
func (c *Client) Register(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/register", credentials{username, password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrUsernameTaken
	default:
		return fmt.Errorf("register: %s", respError(resp))
	}
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/login", credentials{username, password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	default:
		return fmt.Errorf("login: %s", respError(resp))
	}
}

// Logout is best effort: local auth state is cleared regardless of what the
// server says.
func (c *Client) Logout(ctx context.Context) {
	resp, err := c.do(ctx, http.MethodPost, "/api/logout", nil)
	if err == nil {
		resp.Body.Close()
	}
	jar, err := cookiejar.New(nil)
	if err == nil {
		c.http.Jar = jar
	}
}

// Me resolves the authenticated identity. Any non-2xx response means the
// session is not authenticated.
func (c *Client) Me(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/me", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ErrUnauthenticated
	}
	var body struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode identity: %w", err)
	}
	return body.Sub, nil
}

// Rooms lists the room directory.
func (c *Client) Rooms(ctx context.Context) ([]RoomSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/rooms", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list rooms: %s", respError(resp))
	}
	var rooms []RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return rooms, nil
}

// Room fetches one room by id. 404 maps to ErrRoomNotFound.
func (c *Client) Room(ctx context.Context, id string) (*RoomSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		var room RoomSummary
		if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		return &room, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrRoomNotFound
	default:
		return nil, fmt.Errorf("fetch room: %s", respError(resp))
	}
}

// CreateRoom adds a room to the directory and returns its summary.
func (c *Client) CreateRoom(ctx context.Context, name string) (*RoomSummary, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/rooms", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("create room: %s", respError(resp))
	}
	var room RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// respError extracts the server's error text, falling back to the HTTP
// status.
func respError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	text := strings.TrimSpace(string(data))
	if err != nil || text == "" {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, text)
}
