// Package apiclient talks to the dashboard REST backend: bearer auth, JSON
// bodies, envelope normalization and typed failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/pkg/credential"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

const maxBodyBytes = 8 << 20

// TokenSource yields the bearer token for each authenticated call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer receives one sample per outbound request. Status is 0 when no
// response arrived.
type Observer interface {
	ObserveClientRequest(method, resource string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Observer   Observer
	Logger     *zap.Logger
}

// Client issues authenticated JSON requests against one API origin.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	tokens   TokenSource
	observer Observer
	logger   *zap.Logger
}

// Response is a raw 2xx response.
type Response struct {
	Status int
	Body   []byte
}

// New validates options and builds a client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http(s), got %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		base:     base,
		http:     opts.HTTPClient,
		timeout:  opts.Timeout,
		tokens:   opts.Tokens,
		observer: opts.Observer,
		logger:   opts.Logger,
	}, nil
}

// Do performs one authenticated request. Non-2xx responses become
// *errors.HTTPError, transport failures *errors.NetworkError. A missing stored
// credential is reported as a 401 so callers run the same re-login path.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	endpoint := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			if errors.Is(err, credential.ErrNoCredential) {
				return nil, &appErrors.HTTPError{Status: http.StatusUnauthorized, Messages: []string{err.Error()}}
			}
			return nil, fmt.Errorf("read credential: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		netErr := &appErrors.NetworkError{Method: method, URL: endpoint, Err: err}
		var timeoutErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeoutErr) && timeoutErr.Timeout()) {
			netErr.Timeout = true
		}
		c.logger.Debug("api request failed", zap.String("method", method), zap.String("url", endpoint), zap.Error(err))
		return nil, netErr
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &appErrors.NetworkError{Method: method, URL: endpoint, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &appErrors.HTTPError{Status: resp.StatusCode, Messages: errorMessages(raw)}
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	endpoint := c.base.String() + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *Client) observe(method, path string, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveClientRequest(method, resourceLabel(path), status, d)
}

// resourceLabel keeps metric cardinality bounded: "v1/batch/123" -> "v1/batch".
func resourceLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}

// errorMessages reads {message: string|string[]} and the nested
// {error: {message, details}} form.
func errorMessages(raw []byte) []string {
	var doc struct {
		Message json.RawMessage `json:"message"`
		Error   *struct {
			Message string   `json:"message"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if len(doc.Message) > 0 {
		var list []string
		if err := json.Unmarshal(doc.Message, &list); err == nil {
			return list
		}
		var single string
		if err := json.Unmarshal(doc.Message, &single); err == nil && single != "" {
			return []string{single}
		}
	}
	if doc.Error != nil {
		if len(doc.Error.Details) > 0 {
			return doc.Error.Details
		}
		if doc.Error.Message != "" {
			return []string{doc.Error.Message}
		}
	}
	return nil
}
