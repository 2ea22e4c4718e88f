// Package api wraps the fund-tracking backend's REST interface in typed
// single-shot calls. No call is retried or cached; the backend owns all
// state and every mutation is followed by a full re-fetch at the screen
// layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fundtracker.org/internal/ids"
	"fundtracker.org/internal/obs"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer credential for outgoing requests.
// The session store implements it; absence means unauthenticated.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the backend. Construct once and share.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	tokens     TokenSource
	limiter    *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger replaces the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRateLimit caps outgoing calls with a token bucket. Zero or
// negative perSecond leaves the client unlimited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// New builds a client for the backend at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        obs.Logger(),
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request. Mutations carry an Idempotency-Key; the
// backend is the sole arbiter of what a duplicate means.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := ids.NewRequestID()
	req.Header.Set("X-Request-Id", requestID)
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	obs.OutboundStarted()
	defer obs.OutboundDone()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		obs.ObserveOutbound(op, "error", time.Since(start))
		c.log.Warn("backend unreachable",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	obs.ObserveOutbound(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 {
		return c.rejection(op, requestID, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

const maxErrorBody = 64 << 10

func (c *Client) rejection(op, requestID string, resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(data, &payload)

	reason := payload.Error
	if reason == "" {
		reason = payload.Detail
	}
	if reason == "" {
		reason = payload.Message
	}
	c.log.Warn("backend rejected request",
		zap.String("operation", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", reason))
	return &ServerError{StatusCode: resp.StatusCode, Reason: reason}
}
