package network

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"deal-observer/src/helpers"
	"deal-observer/src/logger"
	"deal-observer/src/models"
)

const errorBodyLimit = 256

// -----------------------------------------------------------------------------

// AsyncNetworkManager is the retrying call primitive every aggregator request
// funnels through. It injects the API credential into the query string, so it
// must only ever run in a trusted process; the credential is never echoed in
// logs or errors.
type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Logger: log,
		// Per-attempt timeouts are enforced through context cancellation,
		// not a client-wide deadline.
		Client: &http.Client{},
	}
}

// -----------------------------------------------------------------------------

// Do performs a request with the retry policy: HTTP 429, any 5xx and
// transport errors are retried with a doubling backoff; every other non-2xx
// status is fatal immediately. The returned error distinguishes the two
// cases (*helpers.TransientError vs *helpers.UpstreamStatusError).
func (nm *AsyncNetworkManager) Do(ctx context.Context, method, urlStr string, params map[string]string, body []byte, label string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	if q.Get("key") == "" && nm.Config.Deals.APIKey != "" {
		q.Set("key", nm.Config.Deals.APIKey)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	delay := time.Duration(nm.Config.Network.RetryDelayMs) * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			nm.Logger.Warning("[%s] attempt %d/%d failed: %v. Retrying in %v",
				label, attempt, maxRetries+1, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		respBody, retryable, err := nm.attempt(ctx, method, finalUrl, body, label)
		if err == nil {
			return respBody, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, helpers.NewTransientError(maxRetries+1, lastErr)
}

// -----------------------------------------------------------------------------

// attempt issues one bounded request. The second return value reports whether
// the failure may be retried.
func (nm *AsyncNetworkManager) attempt(ctx context.Context, method, finalUrl string, body []byte, label string) ([]byte, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(nm.Config.Network.RequestTimeout)*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, finalUrl, reader)
	if err != nil {
		return nil, false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if nm.Config.Network.UserAgent != "" {
		req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		// Transport failure or timeout
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return respBody, true, nil
	}

	// Read at most a truncated slice of the body for the error message.
	truncated, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	statusErr := &helpers.UpstreamStatusError{
		Status: resp.StatusCode,
		Body:   string(truncated),
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, statusErr
	}

	nm.Logger.Error("[%s] fatal upstream status %d", label, resp.StatusCode)
	return nil, false, statusErr
}
