// Package providers is the anti-corruption layer between the pipeline and
// the third-party meteorological, oceanographic, and biogeochemical APIs.
// All outbound calls go through Client, which enforces consistent resilience
// patterns: circuit breaking, bounded retries with backoff, gzip response
// decoding, and error mapping to types.AppError. Each provider file pairs a
// raw payload schema with a pure normalization adapter; adapters never leak
// provider idiosyncrasies past the canonical record types.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"

	"tidecast/internal/types"
)

// RetryPolicy configures transport-level retry behavior. The orchestrator's
// fallback chain attempts each provider at most once per request, so
// providers running under it use MaxRetries=0; standalone callers may allow
// more.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// NoRetry is the policy used under the fetch orchestrator: the fallback
// chain is the retry mechanism, not the transport.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 0, MinWait: 250 * time.Millisecond, MaxWait: 2 * time.Second}
}

// DefaultRetryPolicy returns sensible defaults for direct client use.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		MinWait:    500 * time.Millisecond,
		MaxWait:    10 * time.Second,
	}
}

// Client wraps an *http.Client and a per-provider circuit breaker. Provider
// implementations embed a Client rather than reaching for http directly.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	retry      RetryPolicy
	userAgent  string
	sleepFn    func(time.Duration)
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithSleepFunc overrides the sleep function used between retries.
// Intended for tests, to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) ClientOption {
	return func(c *Client) {
		c.sleepFn = fn
	}
}

// NewClient creates a Client with a dedicated circuit breaker named after
// the provider. The breaker opens after five consecutive failures and
// half-opens after thirty seconds, which keeps a dead provider from eating
// its timeout budget on every request while the fallback chain serves data.
func NewClient(httpClient *http.Client, breakerName string, retry RetryPolicy, userAgent string, opts ...ClientOption) *Client {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	c := &Client{
		httpClient: httpClient,
		breaker:    cb,
		retry:      retry,
		userAgent:  userAgent,
		sleepFn:    time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET to url with the given extra headers and decodes the
// JSON response body into out. Responses are transparently gunzipped when
// the upstream honors Accept-Encoding.
//
// Failure mapping:
//   - network error, 5xx after retries  -> upstream_provider_unavailable
//   - 429 after retries, breaker open   -> upstream_provider_rate_limited
//   - other non-2xx                     -> upstream_provider_unavailable
//   - undecodable body                  -> upstream_schema_mismatch is NOT
//     raised here; decode errors surface as plain errors for the adapter
//     to wrap with field context.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	resp, err := c.get(ctx, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return types.NewAppError(
			types.ErrCodeProviderUnavailable,
			fmt.Sprintf("upstream returned %d", resp.StatusCode),
			nil,
		).WithDetails(map[string]any{"status": resp.StatusCode})
	}

	body := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, gzErr := gzip.NewReader(resp.Body)
		if gzErr != nil {
			return fmt.Errorf("opening gzip body: %w", gzErr)
		}
		defer gz.Close()
		body = gz
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// get executes the request under the circuit breaker, retrying 429/5xx per
// the retry policy with Retry-After support and jittered backoff.
func (c *Client) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	maxAttempts := 1 + c.retry.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building upstream request", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if traceID := types.GetRequestID(ctx); traceID != "" {
			req.Header.Set("X-Request-Id", traceID)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			// 5xx and 429 count as failures for the breaker.
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("upstream returned %d", r.StatusCode)
			}
			return r, nil
		})

		if err == nil {
			return resp, nil
		}
		lastErr = err

		if resp != nil {
			if attempt < maxAttempts-1 {
				resp.Body.Close()
			} else {
				lastResp = resp
			}
		}

		// Breaker open: fail immediately, no point retrying.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		// Context done: honor the caller's deadline.
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		if attempt < maxAttempts-1 {
			c.sleepFn(c.backoff(attempt, resp))
		}
	}

	if lastResp != nil {
		lastResp.Body.Close()
	}
	return nil, c.mapError(lastResp, lastErr)
}

// backoff computes the wait before the next retry: Retry-After when the
// upstream sent one, otherwise exponential backoff with full jitter clamped
// to [MinWait, MaxWait].
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
				wait := time.Duration(seconds) * time.Second
				if wait > c.retry.MaxWait {
					wait = c.retry.MaxWait
				}
				return wait
			}
			if t, err := http.ParseTime(ra); err == nil {
				wait := time.Until(t)
				switch {
				case wait <= 0:
					return c.retry.MinWait
				case wait > c.retry.MaxWait:
					return c.retry.MaxWait
				default:
					return wait
				}
			}
		}
	}

	base := float64(c.retry.MinWait) * math.Pow(2, float64(attempt))
	if maxW := float64(c.retry.MaxWait); base > maxW {
		base = maxW
	}
	minW := float64(c.retry.MinWait)
	if base <= minW {
		return c.retry.MinWait
	}
	return time.Duration(minW + rand.Float64()*(base-minW))
}

// mapError translates transport-level failures into domain AppErrors.
func (c *Client) mapError(resp *http.Response, err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeProviderRateLimited,
			"circuit breaker open; provider temporarily disabled",
			err,
		)
	}
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return types.NewAppError(types.ErrCodeProviderRateLimited, "provider rate limit exceeded", err)
	}
	if resp != nil && resp.StatusCode >= 500 {
		return types.NewAppError(
			types.ErrCodeProviderUnavailable,
			fmt.Sprintf("upstream returned %d after retries", resp.StatusCode),
			err,
		)
	}
	return types.NewAppError(types.ErrCodeProviderUnavailable, "upstream request failed", err)
}
