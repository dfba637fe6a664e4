package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoginRoute is where the navigator is sent whenever the backend answers 401
const LoginRoute = "/login"

// maxResponseSize limits the response body read into memory
const maxResponseSize = 32 * 1024 * 1024

const defaultTimeout = 60 * time.Second

// Navigator redirects the user's view. The client only ever asks for LoginRoute.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// SessionStore receives the actions dispatched by a successful login
type SessionStore interface {
	AddUser(user json.RawMessage) error
	SetLoggedIn(loggedIn bool) error
}

// Client is the single choke point for calls to the backend API.
type Client struct {
	baseURL   string
	client    *http.Client
	tokens    token.Holder
	navigator Navigator
	session   SessionStore
	logger    zerolog.Logger

	baseHTTPClient *http.Client
	registerer     prometheus.Registerer
	timeout        time.Duration
}

type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped,
// not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.baseHTTPClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStore sets the store that login dispatches ADD_USER and SET_LOGGED_IN into
func WithStore(s SessionStore) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithMetrics registers request counters and latency histograms on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// New creates a client for the API at baseURL. Every request carries the
// token currently held by tokens; every 401 is reported to navigator.
func New(baseURL string, tokens token.Holder, navigator Navigator, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[httpclient New] invalid base URL %q", baseURL)
	}
	if tokens == nil {
		return nil, fmt.Errorf("[httpclient New] token holder is required")
	}
	if navigator == nil {
		navigator = NavigatorFunc(func(string) {})
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    tokens,
		navigator: navigator,
		logger:    log.Logger,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	var m *metrics
	if c.registerer != nil {
		if m, err = newMetrics(c.registerer); err != nil {
			return nil, fmt.Errorf("[httpclient New] metrics: %w", err)
		}
	}

	hc := &http.Client{Timeout: c.timeout}
	if c.baseHTTPClient != nil {
		copied := *c.baseHTTPClient
		hc = &copied
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &transport{base: base, tokens: tokens, logger: c.logger, metrics: m}
	c.client = hc

	return c, nil
}

// BaseURL returns the API root all paths are relative to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path. A 401 navigates to the login route; no failure is returned.
func (c *Client) Get(ctx context.Context, path string, query url.Values) Result {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	return c.result(resp, err)
}

// Post sends body as JSON. A 401 navigates to the login route and is returned.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPost, path, body)
}

// Put has the same contract as Post
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPut, path, body)
}

// Delete has the same contract as Get; body may be nil
func (c *Client) Delete(ctx context.Context, path string, body any) Result {
	reader, contentType, err := encodeJSON(body)
	if err != nil {
		return Result{Kind: ResultFailed, Err: err}
	}
	resp, err := c.do(ctx, http.MethodDelete, path, nil, reader, contentType)
	return c.result(resp, err)
}

// UploadFile posts a multipart form and returns the whole response envelope.
// A 401 navigates to the login route and is returned.
func (c *Client) UploadFile(ctx context.Context, path string, form *MultipartForm) (*Response, error) {
	reader, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("[httpclient UploadFile] %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, nil, reader, contentType)
	if err != nil {
		c.redirectIfUnauthorized(err)
		return resp, err
	}
	return resp, nil
}

// DownloadFile fetches binary content. Result.Body holds the raw bytes.
func (c *Client) DownloadFile(ctx context.Context, path string) Result {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	return c.result(resp, err)
}

func (c *Client) write(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	reader, contentType, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, method, path, nil, reader, contentType)
	if err != nil {
		c.redirectIfUnauthorized(err)
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	return json.RawMessage(resp.Body), nil
}

// result maps a read-style outcome to its Result variant
func (c *Client) result(resp *Response, err error) Result {
	if err == nil {
		return Result{Kind: ResultOK, StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
	}

	r := Result{Kind: ResultFailed, Err: err}
	if resp != nil {
		r.StatusCode = resp.StatusCode
		r.Header = resp.Header
	}
	if c.redirectIfUnauthorized(err) {
		r.Kind = ResultUnauthorized
		return r
	}
	c.logger.Debug().Err(err).Msg("read request failed, no value returned")
	return r
}

func (c *Client) redirectIfUnauthorized(err error) bool {
	if !IsUnauthorized(err) {
		return false
	}
	c.logger.Info().Str("route", LoginRoute).Msg("unauthorized, redirecting to login")
	c.navigator.Navigate(LoginRoute)
	return true
}

// do performs one request. Non-2xx statuses come back as *StatusError
// together with the response envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*Response, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	target := c.baseURL + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, */*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, &StatusError{Method: method, Path: path, StatusCode: httpResp.StatusCode, Body: data}
	}
	return resp, nil
}

func encodeJSON(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return bytes.NewReader(b), "application/json", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}
