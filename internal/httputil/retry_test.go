// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps backoff waits tiny so tests finish quickly.
func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newPost(t *testing.T, url, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	return req
}

func TestDoWithRetry_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	resp, attempts, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL, "{}"), fastPolicy(3), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_RetriesThenSucceedsWithBody(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	var hooked []int
	hook := func(retry int, _ time.Duration, status int, _ error) {
		hooked = append(hooked, status)
	}

	resp, attempts, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL, `{"name":"a"}`), fastPolicy(5), hook)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"name":"a"}`, `{"name":"a"}`, `{"name":"a"}`}, bodies)
	assert.Equal(t, []int{http.StatusServiceUnavailable, http.StatusTooManyRequests}, hooked)
}

func TestDoWithRetry_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer ts.Close()

	resp, attempts, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL, "{}"), fastPolicy(2), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "boom", string(data))
	// 1 initial + 2 retries = 3 total calls.
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ZeroPolicySingleAttempt(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	resp, attempts, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL, "{}"), Policy{}, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	resp, attempts, err := DoWithRetry(context.Background(), ts.Client(), newPost(t, ts.URL, "{}"), fastPolicy(5), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_TransportErrorRetried(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	var hooks int
	hook := func(_ int, _ time.Duration, status int, err error) {
		hooks++
		assert.Equal(t, 0, status)
		assert.Error(t, err)
	}

	_, attempts, err := DoWithRetry(context.Background(), http.DefaultClient, newPost(t, url, "{}"), fastPolicy(2), hook)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, hooks)
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	// A long backoff so the context expires during the wait.
	p := Policy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, err := DoWithRetry(ctx, ts.Client(), newPost(t, ts.URL, "{}"), p, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 5*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(10))

	uncapped := Policy{BaseDelay: time.Second}
	assert.Equal(t, 8*time.Second, uncapped.Backoff(3))
}

func TestRetryable(t *testing.T) {
	for status, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusCreated:             false,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusGatewayTimeout:      true,
	} {
		assert.Equal(t, want, Retryable(status), "status %d", status)
	}
}
