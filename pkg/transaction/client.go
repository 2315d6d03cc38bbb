package transaction

import (
	"bytes"
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

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/ledger"
)

const maxErrorBody = 64 << 10

// Client posts batches to the ledger REST API at POST {base}/transactions.
type Client struct {
	baseURL   string
	publicKey string
	http      *http.Client
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithPublicKey identifies the submitting agent.
func WithPublicKey(key string) ClientOption {
	return func(c *Client) {
		c.publicKey = strings.TrimSpace(key)
	}
}

// WithTimeout bounds each submission, including the wait for commit.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientClock overrides the clock used to stamp batches.
func WithClientClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithClientLogger sets the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a Submitter for the API rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("transaction: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("transaction: parse base url: %w", err)
	}

	c := &Client{
		baseURL: base,
		http:    http.DefaultClient,
		timeout: 30 * time.Second,
		now:     time.Now,
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

// Submit implements Submitter. The batch is stamped with the current time in
// milliseconds.
func (c *Client) Submit(ctx context.Context, payloads []ledger.Payload, wait bool) error {
	if len(payloads) == 0 {
		return errors.New("transaction: empty batch")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(ledger.Batch{
		Timestamp: c.now().UnixMilli(),
		Payloads:  payloads,
	})
	if err != nil {
		return fmt.Errorf("transaction: encode batch: %w", err)
	}

	endpoint := c.baseURL + "/transactions"
	if wait {
		endpoint += "?wait=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transaction: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.publicKey != "" {
		req.Header.Set(agents.PublicKeyHeader, c.publicKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transaction: request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		c.logger.Debug("batch accepted", "payloads", len(payloads), "status", res.StatusCode, "wait", wait)
		return nil
	}
	return decodeRejection(res)
}

func decodeRejection(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	rejection := &RejectionError{Status: res.StatusCode}
	if err := json.Unmarshal(raw, rejection); err != nil || (rejection.Message == "" && len(rejection.Errors) == 0) {
		rejection.Message = strings.TrimSpace(string(raw))
	}
	if rejection.Message == "" {
		rejection.Message = http.StatusText(res.StatusCode)
	}
	return rejection
}
