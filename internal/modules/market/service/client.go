package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dex_trader/internal/metrics"
	"dex_trader/internal/modules/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBackoff = 60 * time.Second

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// sourceClient это HTTP клиент одного провайдера. Минимальный интервал между
// запросами, один запрос в полёте, экспоненциальный backoff на 429/5xx.
type sourceClient struct {
	name    string
	baseURL string
	headers map[string]string

	http     *http.Client
	limiter  *rate.Limiter
	inflight chan struct{}

	maxRetries     int
	initialBackoff time.Duration

	log     *zap.Logger
	metrics *metrics.Metrics
}

func newSourceClient(name string, src config.Source, log *zap.Logger, m *metrics.Metrics) *sourceClient {
	limit := rate.Inf
	if src.MinInterval > 0 {
		limit = rate.Every(src.MinInterval)
	}
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &sourceClient{
		name:           name,
		baseURL:        src.BaseURL,
		headers:        map[string]string{"Accept": "application/json"},
		http:           &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, 1),
		inflight:       make(chan struct{}, 1),
		maxRetries:     src.MaxRetries,
		initialBackoff: 500 * time.Millisecond,
		log:            log.With(zap.String("source", name)),
		metrics:        m,
	}
}

func (c *sourceClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		select {
		case c.inflight <- struct{}{}:
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		}
		defer func() { <-c.inflight }()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "build request"))
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.metrics.SourceRequest(c.name, "error")
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return errors.Wrap(err, "do request")
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		c.metrics.SourceRequest(c.name, strconv.Itoa(resp.StatusCode))
		if err != nil {
			return errors.Wrap(err, "read body")
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.Warn("retryable response", zap.Int("status", resp.StatusCode), zap.String("path", path))
			return &statusError{Code: resp.StatusCode, Body: truncate(b)}
		case resp.StatusCode/100 != 2:
			return backoff.Permanent(&statusError{Code: resp.StatusCode, Body: truncate(b)})
		}
		body = b
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = b
	if c.maxRetries >= 0 {
		policy = backoff.WithMaxRetries(b, uint64(c.maxRetries))
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, errors.Wrapf(err, "%s GET %s", c.name, path)
	}
	return body, nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit])
	}
	return string(b)
}
