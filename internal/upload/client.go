// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload POSTs template records to the remote templates API.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/template-uploader/internal/httputil"
	"github.com/pdiddy/template-uploader/pkg/types"
)

const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is kept for diagnostics.
	maxBodyBytes = 64 << 10
)

// Client uploads TemplateRequests with a bearer token.
type Client struct {
	http      *http.Client
	endpoint  string
	token     string
	userAgent string
	policy    httputil.Policy
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client for cfg.
func NewClient(cfg types.APIConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		endpoint:  cfg.Endpoint,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		policy: httputil.Policy{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends req as JSON and reports the outcome. Success is HTTP 200 or
// 201. Any other status or a transport error is a failure; neither is
// returned as an error so the caller can keep going.
func (c *Client) Upload(ctx context.Context, req types.TemplateRequest, label string) types.UploadOutcome {
	out := types.UploadOutcome{Label: label}

	body, err := json.Marshal(req)
	if err != nil {
		out.Err = fmt.Errorf("encoding request: %w", err)
		return out
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		out.Err = fmt.Errorf("creating request: %w", err)
		return out
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	log := c.logger.With(zap.String("file", label), zap.String("request_id", requestID))
	log.Debug("upload.start", zap.String("endpoint", c.endpoint), zap.Int("bytes", len(body)))

	resp, attempts, err := httputil.DoWithRetry(ctx, c.http, httpReq, c.policy,
		func(retry int, wait time.Duration, status int, err error) {
			log.Warn("upload.retry",
				zap.Int("retry", retry),
				zap.Duration("wait", wait),
				zap.Int("status", status),
				zap.Error(err),
			)
		})
	out.Attempts = attempts
	if err != nil {
		out.Err = err
		log.Warn("upload.network_error", zap.Int("attempts", attempts), zap.Error(err))
		return out
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	out.StatusCode = resp.StatusCode
	out.Body = string(data)

	if out.OK() {
		log.Debug("upload.ok", zap.Int("status", resp.StatusCode), zap.Int("attempts", attempts))
		return out
	}
	log.Warn("upload.rejected",
		zap.Int("status", resp.StatusCode),
		zap.Int("attempts", attempts),
		zap.String("body", out.Body),
		zap.NamedError("read_error", readErr),
	)
	return out
}
