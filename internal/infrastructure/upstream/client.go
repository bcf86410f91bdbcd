package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/metrics"
	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
)

const maxBodyBytes = 8 << 20

// Cache stores raw response bodies. The redis client satisfies it.
type Cache interface {
	GetRaw(ctx context.Context, key string) ([]byte, bool, error)
	SetRaw(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client executes kudago.Spec values against the public API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cache   Cache
	ttl     time.Duration
}

// New builds a client. cache may be nil, which disables response caching.
func New(cfg Config, cache Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		// No global timeout - we set per-request timeouts
		http:    &http.Client{},
		timeout: timeout,
		cache:   cache,
		ttl:     cfg.CacheTTL,
	}
}

// Fetch resolves spec, performs the GET and decodes the JSON body into dest.
func (c *Client) Fetch(ctx context.Context, spec kudago.Spec, dest any) error {
	rawURL, err := spec.URL(c.baseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	key := cacheKey(rawURL)
	if body, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(body, dest); err == nil {
			return nil
		}
	}

	body, err := c.get(ctx, spec, rawURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if c.cache != nil && c.ttl > 0 {
		if err := c.cache.SetRaw(ctx, key, body, c.ttl); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("upstream cache set failed")
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || c.ttl <= 0 {
		return nil, false
	}
	body, ok, err := c.cache.GetRaw(ctx, key)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("upstream cache get failed")
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return body, true
}

func (c *Client) get(ctx context.Context, spec kudago.Spec, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, spec.Method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resource := string(spec.Resource)
	log := logger.Ctx(ctx).With().
		Str("method", spec.Method).
		Str("url", rawURL).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	if err != nil {
		mapped := mapError(err)
		ev := log.Warn()
		if errors.Is(mapped, ErrCanceled) {
			ev = log.Debug()
		}
		ev.Err(err).Dur("duration", time.Since(start)).Msg("upstream_request_failed")
		metrics.UpstreamRequests.WithLabelValues(resource, outcome(mapped)).Inc()
		return nil, mapped
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		mapped := mapError(err)
		metrics.UpstreamRequests.WithLabelValues(resource, outcome(mapped)).Inc()
		return nil, mapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues(resource, "status").Inc()
		log.Warn().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream_request_rejected")
		return nil, &StatusError{StatusCode: resp.StatusCode, Description: describe(resp.StatusCode, body)}
	}

	metrics.UpstreamRequests.WithLabelValues(resource, "ok").Inc()
	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream_request_completed")
	return body, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	}
	// Connection refused, DNS errors, etc.
	return ErrUnavailable
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	}
	return "unavailable"
}

func describe(status int, body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(status)
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "explore:upstream:" + hex.EncodeToString(sum[:])
}
