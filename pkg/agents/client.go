package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PublicKeyHeader carries the caller's public key on ledger API requests.
const PublicKeyHeader = "X-Public-Key"

// Client reads the agent directory from the ledger REST API (GET {base}/agents).
type Client struct {
	baseURL   string
	publicKey string
	http      *http.Client
	timeout   time.Duration
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for directory requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithPublicKey sets the key identifying the current user.
func WithPublicKey(key string) ClientOption {
	return func(c *Client) {
		c.publicKey = strings.TrimSpace(key)
	}
}

// WithTimeout bounds each directory request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a directory client for the API rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("agents: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("agents: parse base url: %w", err)
	}

	c := &Client{
		baseURL: base,
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Agents implements Directory.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agents", nil)
	if err != nil {
		return nil, fmt.Errorf("agents: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.publicKey != "" {
		req.Header.Set(PublicKeyHeader, c.publicKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agents: request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return nil, &RejectError{Status: res.StatusCode, Reason: fmt.Sprintf("directory answered %d: %s", res.StatusCode, strings.TrimSpace(string(body)))}
	}

	var list []Agent
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("agents: decode response: %w", err)
	}
	c.logger.Debug("agent directory fetched", "count", len(list))
	return list, nil
}

// PublicKey implements Directory.
func (c *Client) PublicKey() string {
	return c.publicKey
}
