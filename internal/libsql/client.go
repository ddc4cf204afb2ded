package libsql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
	"github.com/dmitrijs2005/ideaboard/internal/logging"
)

// debugBodyLimit caps how much of a request body is written to debug logs.
const debugBodyLimit = 240

// Client executes statements against a libSQL HTTP endpoint. It holds only
// static configuration and is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logging.Logger
}

var _ dbx.Executor = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.With("component", "libsql")
		}
	}
}

// NewClient builds a client for the given endpoint URL and bearer token.
// Missing values are not rejected here; Execute reports them.
func NewClient(rawURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    BaseURL(rawURL),
		token:      token,
		httpClient: &http.Client{},
		logger:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the canonical base host the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute runs a single statement. Placeholders are '?' and params are
// positional.
func (c *Client) Execute(ctx context.Context, sql string, params []any) (*dbx.Result, error) {
	if c.baseURL == "" || c.token == "" {
		return nil, fmt.Errorf("%w: database url or token is not set", common.ErrConfiguration)
	}

	stmt := Stmt{SQL: sql, Args: EncodeArgs(params), WantRows: dbx.WantsRows(sql)}

	var lastErr error
	for _, a := range attempts {
		body, err := json.Marshal(a.build(stmt))
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", a.name, err)
		}

		payload, err := c.post(ctx, a, body)
		if err == nil {
			return normalizeResponse(payload)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Debug(ctx, "request attempt failed", "attempt", a.name, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

// Ping runs SELECT 1 and checks the answer.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.Execute(ctx, "SELECT 1 as ok", nil)
	if err != nil {
		return err
	}
	if row := res.First(); row == nil || row.Int64("ok") != 1 {
		return fmt.Errorf("unexpected ping result: %v", res.Rows)
	}
	return nil
}

// post sends one attempt and returns the response body of a 2xx answer.
func (c *Client) post(ctx context.Context, a attempt, body []byte) ([]byte, error) {
	url := c.baseURL + a.path

	c.logger.Debug(ctx, "POST", "attempt", a.name, "url", url, "body", truncate(body, debugBodyLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", a.name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrNetwork, a.name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", common.ErrNetwork, a.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
