// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for the upload client.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Policy controls DoWithRetry. The zero value performs a single attempt.
type Policy struct {
	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int

	// BaseDelay is the first backoff interval; it doubles every attempt.
	BaseDelay time.Duration

	// MaxDelay caps one backoff interval. Zero means no cap.
	MaxDelay time.Duration
}

// Backoff returns the wait before retry number attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retryable reports whether a response status should be retried:
// 429 Too Many Requests and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// RetryHook is called before each backoff wait with the 1-based retry
// number, the wait, and the status or error that caused it.
type RetryHook func(retry int, wait time.Duration, status int, err error)

// DoWithRetry executes req and retries on 429, 5xx and transport errors with
// exponential backoff (BaseDelay, 2×BaseDelay, 4×BaseDelay, ... capped at
// MaxDelay). Requests with a body must have GetBody set, which
// http.NewRequest does for in-memory readers.
//
// On each retryable response the body is drained and closed before
// sleeping. If ctx is cancelled the function returns ctx.Err(). After
// exhausting retries the last response or transport error is returned so the
// caller can inspect it. attempts reports how many requests were sent.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy, hook RetryHook) (resp *http.Response, attempts int, err error) {
	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, attempts, fmt.Errorf("rewinding request body: %w", bodyErr)
			}
			r.Body = body
		}

		attempts++
		resp, err = client.Do(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, attempts, ctx.Err()
			}
			if errors.Is(err, context.Canceled) || attempt >= p.MaxRetries {
				return nil, attempts, err
			}
		} else if !Retryable(resp.StatusCode) || attempt >= p.MaxRetries {
			return resp, attempts, nil
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		wait := p.Backoff(attempt)
		if hook != nil {
			hook(attempt+1, wait, status, err)
		}

		select {
		case <-ctx.Done():
			return nil, attempts, ctx.Err()
		case <-time.After(wait):
		}
	}
}
