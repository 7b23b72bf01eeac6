package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://discord.com/api/v9"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// MaxPageSize is the largest limit the messages endpoint accepts.
	MaxPageSize = 100

	maxErrorBody = 2048
)

// Client issues authenticated requests against the REST API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. The current http.Client is copied
// first, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client for the given session token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Me returns the account behind the token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, "get user info", http.MethodGet, "/users/@me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Guilds lists the servers the current user belongs to.
func (c *Client) Guilds(ctx context.Context) ([]Guild, error) {
	var gs []Guild
	if err := c.do(ctx, "get guilds", http.MethodGet, "/users/@me/guilds", nil, nil, &gs); err != nil {
		return nil, err
	}
	return gs, nil
}

// Messages lists messages of a channel, newest first.
func (c *Client) Messages(ctx context.Context, channelID string, q MessageQuery) ([]Message, error) {
	params := url.Values{}
	limit := q.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	params.Set("limit", strconv.Itoa(limit))
	if q.Before != "" {
		params.Set("before", q.Before)
	}
	if q.After != "" {
		params.Set("after", q.After)
	}

	var msgs []Message
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if err := c.do(ctx, "get messages", http.MethodGet, path, params, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

type createMessage struct {
	Content   string            `json:"content"`
	Reference *MessageReference `json:"message_reference,omitempty"`
}

// SendMessage posts content to a channel, optionally as a reply to ref.
func (c *Client) SendMessage(ctx context.Context, channelID, content string, ref *MessageReference) (*Message, error) {
	body := createMessage{Content: content, Reference: ref}
	if ref != nil && ref.ChannelID == "" {
		r := *ref
		r.ChannelID = channelID
		body.Reference = &r
	}

	var m Message
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if err := c.do(ctx, "send message", http.MethodPost, path, nil, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// TriggerTyping shows the typing indicator in a channel for a few seconds.
func (c *Client) TriggerTyping(ctx context.Context, channelID string) error {
	path := "/channels/" + url.PathEscape(channelID) + "/typing"
	return c.do(ctx, "start typing", http.MethodPost, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Op:         op,
			Status:     resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			RetryAfter: retryAfter(resp.Header),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
