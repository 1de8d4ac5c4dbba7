// Package apiclient is the HTTP client for the portfolio API used by the CLI tools.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/adminlist"
	"portfolio/internal/models"
	"portfolio/internal/revalidate"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const visitorHeader = "X-Visitor-ID"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as the bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL, e.g. "http://localhost:8375".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload models.ErrorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login exchanges admin credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return "", err
	}
	c.token = res.Token
	return res.Token, nil
}

// Revalidate asks the server to drop the cached pages at paths.
func (c *Client) Revalidate(ctx context.Context, paths ...string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/revalidate", nil, map[string][]string{"paths": paths}, nil)
}

// LikeStatus returns the like state of postID for visitorID.
func (c *Client) LikeStatus(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	var state models.LikeState
	path := fmt.Sprintf("/api/posts/%d/like?visitor=%s", postID, url.QueryEscape(visitorID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// ToggleLike flips visitorID's like on postID.
func (c *Client) ToggleLike(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	var state models.LikeState
	h := http.Header{}
	h.Set(visitorHeader, visitorID)
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), h, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Posts returns the admin endpoints for posts.
func (c *Client) Posts() *Resource {
	return &Resource{c: c, collection: "posts", paths: revalidate.PostPaths}
}

// Projects returns the admin endpoints for projects.
func (c *Client) Projects() *Resource {
	return &Resource{c: c, collection: "projects", paths: revalidate.ProjectPaths}
}

// Resource is one admin collection. It satisfies adminlist.Remote and adminlist.Revalidator.
type Resource struct {
	c          *Client
	collection string
	paths      func(slugs ...string) []string
}

var (
	_ adminlist.Remote      = (*Resource)(nil)
	_ adminlist.Revalidator = (*Resource)(nil)
)

func (r *Resource) path(id uint, suffix string) string {
	return "/api/admin/" + r.collection + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}

// List returns admin rows, optionally filtered by status.
func (r *Resource) List(ctx context.Context, status models.Status, limit int) ([]adminlist.Row, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/admin/" + r.collection
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var rows []adminlist.Row
	if err := r.c.do(ctx, http.MethodGet, path, nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns one admin row.
func (r *Resource) Get(ctx context.Context, id uint) (*adminlist.Row, error) {
	var row adminlist.Row
	if err := r.c.do(ctx, http.MethodGet, r.path(id, ""), nil, nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Resource) Publish(ctx context.Context, id uint) error {
	return r.c.do(ctx, http.MethodPost, r.path(id, "/publish"), nil, nil, nil)
}

func (r *Resource) Archive(ctx context.Context, id uint) error {
	return r.c.do(ctx, http.MethodPost, r.path(id, "/archive"), nil, nil, nil)
}

// Revalidate refreshes the list, home and detail pages of the record.
func (r *Resource) Revalidate(ctx context.Context, id uint) error {
	row, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.c.Revalidate(ctx, r.paths(row.Slug)...)
}
