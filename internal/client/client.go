package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bugdaily/internal/features/reports/models"
)

// FetchError is returned for network failures and non-2xx responses.
// The caller keeps whatever data it already had.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client talks to the BugDaily reports API
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		userAgent: "bugdaily-watch",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchReports requests one page of the feed
func (c *Client) FetchReports(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	var page models.FeedPage
	if err := c.get(ctx, "/reports", encodeQuery(q), &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.Report{}
	}
	return &page, nil
}

// Platforms returns the platform names the server knows about
func (c *Client) Platforms(ctx context.Context) ([]string, error) {
	var list models.PlatformList
	if err := c.get(ctx, "/reports/platforms", nil, &list); err != nil {
		return nil, err
	}
	return list.Platforms, nil
}

// encodeQuery drops empty values so the server applies its own defaults
func encodeQuery(q models.FeedQuery) url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			params.Set(key, value)
		}
	}

	set("q", q.Text)
	set("severity", q.Severity)
	set("platform", q.Platform)
	set("since", q.Since)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{Op: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &FetchError{Op: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
