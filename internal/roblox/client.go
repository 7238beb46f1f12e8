// Package roblox is a thin client for the site's public REST endpoints used by
// the daemon: bulk user presence, Robux balance, friend-request count, asset
// details and the authenticated user.
//
// CLIENT BEHAVIOR:
//   - Transport: one resty client shared by all endpoints, with per-service base URLs
//   - Retries: connection errors on GET requests only; POSTs are never replayed
//   - Authentication: optional .ROBLOSECURITY cookie plus the X-CSRF-TOKEN handshake
//   - Errors: any non-2xx response becomes a *StatusError
//
// Base URLs are configurable so tests can point every service at an
// httptest server.
package roblox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/validate"
)

const (
	// AuthCookieName is the session cookie the site authenticates with
	AuthCookieName = ".ROBLOSECURITY"

	// csrfHeader carries the token the site demands on authenticated writes
	csrfHeader = "X-Csrf-Token"
)

// Config holds the endpoints and transport settings of the site client.
type Config struct {
	PresenceURL string `json:"presence_url"`
	EconomyURL  string `json:"economy_url"`
	FriendsURL  string `json:"friends_url"`
	UsersURL    string `json:"users_url"`

	Timeout    time.Duration `json:"timeout"`
	RetryCount int           `json:"retry_count" validate:"min=0,max=10"`
	RetryWait  time.Duration `json:"retry_wait"`

	AuthCookie string `json:"-"` // Session cookie value, empty for anonymous access
	UserAgent  string `json:"user_agent"`
}

// DefaultConfig returns the production endpoints with conservative timeouts.
func DefaultConfig() *Config {
	return &Config{
		PresenceURL: "https://presence.roblox.com",
		EconomyURL:  "https://economy.roblox.com",
		FriendsURL:  "https://friends.roblox.com",
		UsersURL:    "https://users.roblox.com",
		Timeout:     10 * time.Second,
		RetryCount:  2,
		RetryWait:   500 * time.Millisecond,
		UserAgent:   "rplus",
	}
}

// Validate checks that every endpoint is an absolute URL and the timeouts
// are usable.
func (c *Config) Validate() error {
	endpoints := []struct{ value, name string }{
		{c.PresenceURL, "presence URL"},
		{c.EconomyURL, "economy URL"},
		{c.FriendsURL, "friends URL"},
		{c.UsersURL, "users URL"},
	}
	for _, e := range endpoints {
		if err := validate.ValidateBaseURL(e.value, e.name); err != nil {
			return err
		}
	}
	if err := validate.ValidatePositiveTimeout(c.Timeout, "site client timeout"); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid site client config: %w", err)
	}
	return nil
}

// StatusError is returned when an endpoint answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// ErrNotAuthenticated is returned by calls that need a session when no
// auth cookie is configured or the site rejects it.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client talks to the site's REST endpoints.
type Client struct {
	http   *resty.Client
	config Config

	mu        sync.Mutex
	csrfToken string
}

// NewClient validates config and builds the resty client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: *config}

	client := resty.New()
	client.SetLogger(logging.RestyLogger{Prefix: "roblox"})
	client.
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", config.UserAgent)

	if config.AuthCookie != "" {
		client.SetCookie(&http.Cookie{Name: AuthCookieName, Value: config.AuthCookie})
	}

	// Only retry on connection errors of idempotent requests
	client.
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWait).
		SetRetryMaxWaitTime(4 * config.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err == nil {
				return false
			}
			return r == nil || r.Request == nil || r.Request.Method == resty.MethodGet
		})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Method != resty.MethodGet {
			if token := c.getCSRFToken(); token != "" {
				req.SetHeader(csrfHeader, token)
			}
		}
		logging.Debug("Site request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logging.Debug("Site response: %d %s (took %v)",
			resp.StatusCode(), resp.Request.URL, resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Site request failed: %s %s - %v", req.Method, req.URL, err)
	})

	c.http = client
	return c, nil
}

// Authenticated reports whether a session cookie is configured.
func (c *Client) Authenticated() bool {
	return c.config.AuthCookie != ""
}

func (c *Client) getCSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) setCSRFToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csrfToken = token
}

// get issues a GET and decodes a 2xx body into result.
func (c *Client) get(ctx context.Context, url string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	return checkResponse(resp)
}

// post issues a JSON POST. A 403 carrying a fresh CSRF token is the site's
// handshake, so the request is repeated once with the token attached.
func (c *Client) post(ctx context.Context, url string, body, result any) error {
	for attempt := 0; ; attempt++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			SetResult(result).
			Post(url)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", url, err)
		}

		token := resp.Header().Get(csrfHeader)
		if resp.StatusCode() == http.StatusForbidden && token != "" && attempt == 0 {
			logging.Debug("Site requested CSRF token refresh for %s", url)
			c.setCSRFToken(token)
			continue
		}
		return checkResponse(resp)
	}
}

func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s %s returned 401", ErrNotAuthenticated, resp.Request.Method, resp.Request.URL)
	}
	return &StatusError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode(),
		Body:       truncate(resp.String(), 200),
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
