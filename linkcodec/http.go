package linkcodec

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// retryLog hands retryablehttp messages to a slog.Logger. Failed attempts
// are logged as warnings and retries at info.
type retryLog struct {
	logger *slog.Logger
}

func (l retryLog) Error(msg string, kv ...any) { l.logger.Warn(msg, kv...) }
func (l retryLog) Warn(msg string, kv ...any)  { l.logger.Warn(msg, kv...) }
func (l retryLog) Info(msg string, kv ...any)  { l.logger.Info(msg, kv...) }
func (l retryLog) Debug(msg string, kv ...any) { l.logger.Info(msg, kv...) }

type fetchClient struct {
	retry   *retryablehttp.Client
	timeout time.Duration
}

// ClientOption adjusts the page fetching client built by NewFetchClient.
type ClientOption func(*fetchClient)

// WithLogger routes retry logging to logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *fetchClient) {
		c.retry.Logger = retryablehttp.LeveledLogger(retryLog{logger: logger})
	}
}

// WithRetries sets how often a failed fetch is retried, and the backoff
// bounds between attempts.
func WithRetries(retries int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *fetchClient) {
		c.retry.RetryMax = retries
		c.retry.RetryWaitMin = waitMin
		c.retry.RetryWaitMax = waitMax
	}
}

// WithTransport replaces the traced, pooled transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *fetchClient) {
		c.retry.HTTPClient.Transport = rt
	}
}

// WithTimeout bounds a whole fetch, retries included.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *fetchClient) {
		c.timeout = d
	}
}

// NewFetchClient returns the HTTP client page documents are fetched with.
//
// Connection errors and 5xx responses (except 501) are retried, as are 429
// responses, honoring Retry-After. Missing pages (404, 410) fail at once.
// Each attempt is traced.
func NewFetchClient(opts ...ClientOption) *http.Client {
	c := &fetchClient{
		retry:   retryablehttp.NewClient(),
		timeout: 20 * time.Second,
	}
	c.retry.HTTPClient.Transport = otelhttp.NewTransport(cleanhttp.DefaultPooledTransport())
	c.retry.CheckRetry = pageRetryPolicy
	WithRetries(3, time.Second, 10*time.Second)(c)
	WithLogger(slog.Default())(c)
	for _, opt := range opts {
		opt(c)
	}

	client := c.retry.StandardClient()
	client.Timeout = c.timeout
	return client
}

func pageRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone) {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
