// Package api is the client for the baggage registry service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	xsimimage "xsim/internal/image"
	"xsim/internal/model"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the registry over HTTP/JSON.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveURL turns a service-relative path into an absolute URL.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.ResolveURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Categories returns every threat category.
func (c *Client) Categories(ctx context.Context) ([]model.ThreatCategory, error) {
	var out []model.ThreatCategory
	if err := c.getJSON(ctx, "/itemCategory", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RandomBaggage returns a randomized batch for an area. An empty typeID
// requests every type. A single object response is returned as a list of one.
func (c *Client) RandomBaggage(ctx context.Context, area int, typeID string) ([]model.BaggageRecord, error) {
	if typeID == "" {
		typeID = "all"
	}
	var raw json.RawMessage
	path := "/cbt/random/" + strconv.Itoa(area) + "/" + url.PathEscape(typeID)
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []model.BaggageRecord
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode baggage list: %w", err)
		}
		return list, nil
	}
	var one model.BaggageRecord
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("failed to decode baggage: %w", err)
	}
	return []model.BaggageRecord{one}, nil
}

// User is an operator account.
type User struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
}

// DisplayName joins the operator's names.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// User fetches an operator by id.
func (c *Client) User(ctx context.Context, id int) (User, error) {
	var u User
	if err := c.getJSON(ctx, "/users/"+strconv.Itoa(id), &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// LoadImage fetches and decodes an image. Relative paths resolve against
// the service base URL.
func (c *Client) LoadImage(ctx context.Context, path string) (image.Image, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode}
	}
	return xsimimage.Decode(resp.Body)
}
