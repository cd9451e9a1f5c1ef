package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "ccmonitor/1.0"
)

// HTTP fetches snapshots from an endpoint serving the collector's JSON, such
// as a ccmonitor daemon's /v1/snapshot.
type HTTP struct {
	url   *url.URL
	token string
	http  *http.Client
}

// NewHTTP creates a client for rawURL. token is sent as a bearer token when
// non-empty.
func NewHTTP(rawURL, token string) (*HTTP, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("source: parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported url scheme %q", u.Scheme)
	}
	return &HTTP{
		url:   u,
		token: strings.TrimSpace(token),
		http:  &http.Client{},
	}, nil
}

// URL returns the endpoint being fetched.
func (c *HTTP) URL() string { return c.url.String() }

// Snapshot fetches the current snapshot.
func (c *HTTP) Snapshot(ctx context.Context) (*model.UsageSnapshot, error) {
	return c.get(ctx, false)
}

// Refresh fetches with refresh=1 so the server re-collects before answering.
func (c *HTTP) Refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	return c.get(ctx, true)
}

func (c *HTTP) get(ctx context.Context, refresh bool) (*model.UsageSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	u := *c.url
	if refresh {
		q := u.Query()
		q.Set("refresh", "1")
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("source: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusNoContent, http.StatusNotFound:
		return nil, ErrNoSnapshot
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	return Decode(io.LimitReader(resp.Body, maxBodySize))
}
