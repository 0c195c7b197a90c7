// Package auth performs the Holland2Stay login handshake at startup.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const baseURL = "https://holland2stay.com"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials is a Holland2Stay account login pair.
type Credentials struct {
	Username string
	Password string
}

// Session is the outcome of a successful login.
type Session struct {
	BearerToken string
}

// Client runs the session/csrf/login handshake against Holland2Stay.
type Client struct {
	http HTTPClient
	base string
}

// New creates a Client with a cookie-aware HTTP client, which the
// handshake needs to carry the session cookie between calls.
func New() *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
		base: baseURL,
	}
}

// NewWithClient creates a Client using the given HTTP client and base URL.
func NewWithClient(client HTTPClient, base string) *Client {
	return &Client{http: client, base: base}
}

// Login acquires a bearer token for the given credentials. Transient
// failures are retried with exponential backoff; this runs once at
// startup and a failure after the retries is fatal to the process.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var session *Session
	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := c.login(ctx, creds)
		if err != nil {
			return retry.RetryableError(err)
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

func (c *Client) login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := c.initiateSession(ctx); err != nil {
		return nil, fmt.Errorf("initiate session: %w", err)
	}

	csrf, err := c.csrfToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get csrf token: %w", err)
	}

	form := url.Values{
		"username":  {creds.Username},
		"password":  {creds.Password},
		"csrfToken": {csrf},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/api/auth/callback/credentials", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := c.doDiscard(req); err != nil {
		return nil, fmt.Errorf("post credentials: %w", err)
	}

	var sessionResp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.getJSON(ctx, "/api/auth/session", &sessionResp); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sessionResp.AccessToken == "" {
		return nil, fmt.Errorf("session response has no access token")
	}

	return &Session{BearerToken: sessionResp.AccessToken}, nil
}

func (c *Client) initiateSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/auth/session", nil)
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.getJSON(ctx, "/api/auth/csrf", &resp); err != nil {
		return "", err
	}
	if resp.CSRFToken == "" {
		return "", fmt.Errorf("csrf response has no token")
	}
	return resp.CSRFToken, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doDiscard(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
