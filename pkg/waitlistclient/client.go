// Package waitlistclient talks to the waitlist API and holds the submission
// form and admin reporting logic shared by the CLI and any Go front end.
package waitlistclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 10 * time.Second

	// NetworkErrorMessage is shown when no response body could be read.
	NetworkErrorMessage = "Network error. Please try again."

	maxResponseBytes = 4 << 20
)

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("waitlist api: %d: %s", e.StatusCode, e.Message)
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Entry mirrors one row of the admin listing.
type Entry struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Source      string    `json:"source"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	Country     string    `json:"country,omitempty"`
	City        string    `json:"city,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Submission struct {
	Email       string `json:"email"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts an email to the waitlist and returns the server's confirmation message.
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/submit", "", sub)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Login exchanges the admin password for a session token.
func (c *Client) Login(ctx context.Context, password string) (*Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/admin-check", "", map[string]string{"password": password})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (c *Client) ListEntries(ctx context.Context, token string) ([]Entry, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/admin/emails", token, nil)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &env, nil
}
