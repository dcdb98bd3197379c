// Package api is the HTTP client for the task API. It attaches the bearer
// token to every authenticated call and, on a 401, refreshes the access token
// once and replays the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/sadopc/taskr/internal/errors"
	"github.com/sadopc/taskr/internal/logging"
)

// TokenStore holds the session tokens the client reads and refreshes.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string) error
	Clear() error
}

type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	log       *log.Logger
	onExpired func()
	timeout   time.Duration

	refreshes singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The client is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithSessionExpiredHandler registers fn to run after a failed refresh has
// cleared the session.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// request is one logical call. It survives the retry so the body and request
// ID are reused.
type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    []byte
	auth    bool
	id      string
	token   string
	retried bool
}

func (c *Client) newRequest(op, method, path string, in any, auth bool) (*request, error) {
	r := &request{op: op, method: method, path: path, auth: auth, id: uuid.NewString()}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, apperrors.NewTransportError(op, err)
		}
		r.body = b
	}
	return r, nil
}

func (c *Client) build(ctx context.Context, r *request) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, err
	}
	if len(r.query) > 0 {
		req.URL.RawQuery = r.query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", r.id)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r.token = ""
	if r.auth && c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			r.token = tok
			(&oauth2.Token{AccessToken: tok}).SetAuthHeader(req)
		}
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	req, err := c.build(ctx, r)
	if err != nil {
		return nil, apperrors.NewTransportError(r.op, err)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", "op", r.op, "request_id", r.id, "err", err)
		return nil, apperrors.NewTransportError(r.op, err)
	}
	c.log.Debug("request",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"retried", r.retried,
		"request_id", r.id,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

// do sends r and decodes a 2xx body into out. A 401 on the first attempt of an
// authenticated request triggers one refresh and one replay.
func (c *Client) do(ctx context.Context, r *request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && r.auth && !r.retried {
		discard(resp)
		r.retried = true
		if _, err := c.refresh(ctx, r.token); err != nil {
			return err
		}
		resp, err = c.send(ctx, r)
		if err != nil {
			return err
		}
	}
	defer discard(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewStatusError(r.op, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewDecodeError(r.op, err)
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers share one request.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	return c.refresh(ctx, "")
}

// refresh is keyed on a single flight. stale is the access token a failed
// request carried; when the store already holds a different one, another
// caller has refreshed and that token is returned without a new exchange.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	v, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		if stale != "" {
			if cur := c.tokens.AccessToken(); cur != "" && cur != stale {
				return cur, nil
			}
		}
		tok, err := c.exchange(ctx)
		if err != nil {
			c.expire(err)
			return "", apperrors.NewSessionExpiredError(err)
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchange(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", errors.New("no session")
	}
	rt := c.tokens.RefreshToken()
	if rt == "" {
		return "", errors.New("no refresh token")
	}

	r, err := c.newRequest("refresh token", http.MethodPost, "/auth/refresh-token", refreshRequest{RefreshToken: rt}, false)
	if err != nil {
		return "", err
	}
	var out refreshResponse
	if err := c.do(ctx, r, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response carried no access token")
	}
	if err := c.tokens.SetAccessToken(out.AccessToken); err != nil {
		return "", err
	}
	c.log.Info("access token refreshed")
	return out.AccessToken, nil
}

// expire clears the session after a failed refresh and fires the hook.
func (c *Client) expire(cause error) {
	c.log.Error("token refresh failed", "err", cause)
	if c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			c.log.Error("clear session", "err", err)
		}
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
