package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"deal-observer/src/helpers"
	"deal-observer/src/logger"
	"deal-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testManager() *AsyncNetworkManager {
	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Network: models.MNetworkConfig{
			RequestTimeout: 5,
			MaxRetries:     2,
			RetryDelayMs:   1,
		},
		Deals: models.MDealsConfig{APIKey: "secret-key"},
	}
	return NewAsyncNetworkManager(cfg, logger.NewLogger(cfg.LogLevel, "test"))
}

// -----------------------------------------------------------------------------

func TestDoInjectsCredential(t *testing.T) {
	var gotKey atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.URL.Query().Get("key"))
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	nm := testManager()
	body, err := nm.Do(context.Background(), http.MethodGet, srv.URL, map[string]string{"country": "JP"}, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "secret-key", gotKey.Load())
}

// -----------------------------------------------------------------------------

func TestDoKeepsExplicitCredential(t *testing.T) {
	var gotKey atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.URL.Query().Get("key"))
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	nm := testManager()
	_, err := nm.Do(context.Background(), http.MethodGet, srv.URL+"?key=explicit", nil, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, "explicit", gotKey.Load())
}

// -----------------------------------------------------------------------------

func TestDoRetriesTransientStatus(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`recovered`))
	}))
	defer srv.Close()

	nm := testManager()
	body, err := nm.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

// -----------------------------------------------------------------------------

func TestDoRetriesRateLimit(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	nm := testManager()
	_, err := nm.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

// -----------------------------------------------------------------------------

func TestDoFatalStatusFailsImmediately(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"reason":"no such game"}`))
	}))
	defer srv.Close()

	nm := testManager()
	_, err := nm.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, "test")
	require.Error(t, err)

	var statusErr *helpers.UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, statusErr.Body, "no such game")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

// -----------------------------------------------------------------------------

func TestDoExhaustsRetryBudget(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	nm := testManager()
	_, err := nm.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, "test")
	require.Error(t, err)

	var transient *helpers.TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, 3, transient.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))

	// The credential never appears in the surfaced error.
	assert.NotContains(t, err.Error(), "secret-key")
}

// -----------------------------------------------------------------------------

func TestDoTruncatesErrorBody(t *testing.T) {
	long := make([]byte, 1024)
	for i := range long {
		long[i] = 'x'
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write(long)
	}))
	defer srv.Close()

	nm := testManager()
	_, err := nm.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, "test")
	require.Error(t, err)

	var statusErr *helpers.UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Len(t, statusErr.Body, errorBodyLimit)
}
