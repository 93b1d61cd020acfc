// Package apiclient is the HTTP pipeline shared by every gateway wrapper. It
// attaches bearer tokens, refreshes once on 401 and decides when an expired
// session must send the shopper back to the login page.
package apiclient

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthProvider supplies and maintains the bearer token for one shopper.
type AuthProvider interface {
	// AccessToken returns the stored access token, if any.
	AccessToken(ctx context.Context) (string, bool)
	// Refresh exchanges the refresh token for a new access token.
	Refresh(ctx context.Context) (string, error)
	// ClearAccessToken drops a token the gateway rejected.
	ClearAccessToken(ctx context.Context)
	// Logout drops every stored credential.
	Logout(ctx context.Context)
}

// RefreshChecker is implemented by providers that can tell whether a refresh
// token is still held after the access token has expired.
type RefreshChecker interface {
	CanRefresh(ctx context.Context) bool
}

// Navigator moves the shopper to another storefront page.
type Navigator interface {
	RedirectToLogin(ctx context.Context, target string)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithAuth(auth AuthProvider) Option {
	return func(c *Client) { c.auth = auth }
}

func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// Client is bound to one base URL such as http://gateway/v1/order.
type Client struct {
	baseURL   string
	service   string
	http      *http.Client
	auth      AuthProvider
	nav       Navigator
	logger    *slog.Logger
	userAgent string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    slog.Default(),
		userAgent: "vibex-storefront",
	}
	if u, err := url.Parse(c.baseURL); err == nil && u.Path != "" {
		c.service = u.Path
	} else {
		c.service = c.baseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of the client with extra options applied, sharing the
// underlying transport. Used to bind a shared client to one shopper.
func (c *Client) With(opts ...Option) *Client {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// BaseURL returns the prefix every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON encoded unless it is a *Form or Form.
	Body any
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends the request and decodes a 2xx JSON response into out (which may be nil).
//
// Transport errors are returned unchanged. Non-2xx responses come back as
// *HTTPError. A 401 is refreshed and replayed at most once.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	target := c.resolve(req)
	path := c.pathOf(target)
	public := IsPublicAuthEndpoint(path)

	token := ""
	if !public && c.auth != nil {
		token, _ = c.auth.AccessToken(ctx)
	}

	err = c.send(ctx, req, target, body, token, out)
	if StatusCode(err) != http.StatusUnauthorized {
		return err
	}

	// Refresh and login-flow failures go straight back to the caller.
	if isRefreshEndpoint(path) || public {
		return err
	}

	if token != "" || c.canRefresh(ctx) {
		fresh, refreshErr := c.auth.Refresh(ctx)
		if refreshErr != nil {
			tokenRefreshTotal.WithLabelValues("failure").Inc()
			c.logger.Warn("token refresh failed, logging out", "path", path, "err", refreshErr)
			c.auth.Logout(ctx)
			return refreshErr
		}
		tokenRefreshTotal.WithLabelValues("success").Inc()

		// Replay exactly once; a second 401 falls through to the redirect decision.
		err = c.send(ctx, req, target, body, fresh, out)
		if StatusCode(err) != http.StatusUnauthorized {
			return err
		}
	}

	return c.unauthorized(ctx, path, err)
}

func (c *Client) canRefresh(ctx context.Context) bool {
	if c.auth == nil {
		return false
	}
	rc, ok := c.auth.(RefreshChecker)
	return ok && rc.CanRefresh(ctx)
}

// unauthorized decides what a surfaced 401 does to the session.
func (c *Client) unauthorized(ctx context.Context, path string, err error) error {
	page := PageFrom(ctx)
	publicContent := IsPublicContentEndpoint(path)

	hasToken := false
	if c.auth != nil {
		_, hasToken = c.auth.AccessToken(ctx)
	}

	if publicContent || IsAuthPage(page) || IsPublicPage(page) {
		// A token may only lack permission for a public endpoint; keep it there.
		if hasToken && !publicContent {
			c.auth.ClearAccessToken(ctx)
		}
		return err
	}

	if !hasToken {
		return err
	}

	c.auth.ClearAccessToken(ctx)
	if c.nav != nil {
		c.nav.RedirectToLogin(ctx, LoginRedirect(page))
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, err)
}

func (c *Client) send(ctx context.Context, req *Request, target string, body *encodedBody, token string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", body.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	requestID := requestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	gatewayRequestDuration.WithLabelValues(c.service, req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(c.service, req.Method, "error").Inc()
		c.logger.Debug("gateway request failed", "method", req.Method, "path", c.pathOf(target), "err", err)
		return err
	}
	defer resp.Body.Close()
	gatewayRequestsTotal.WithLabelValues(c.service, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("gateway request",
		"method", req.Method,
		"path", c.pathOf(target),
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(req.Method, target, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, c.pathOf(target), err)
	}
	return nil
}

func (c *Client) resolve(req *Request) string {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

func (c *Client) pathOf(target string) string {
	if u, err := url.Parse(target); err == nil {
		return u.Path
	}
	return target
}

// IsSessionExpired reports whether err ended with a forced login redirect.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
