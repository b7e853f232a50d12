package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/transport"
	"golang.org/x/time/rate"
)

// AuthHeader carries the api token
const AuthHeader = "X-Auth-Token"

// Cache stores raw response bodies, *store.Store satisfies it
type Cache interface {
	CacheGet(key string) ([]byte, bool, error)
	CachePut(key string, body []byte, ttl time.Duration) error
}

// Client talks to the football-data.org v4 api
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	aliases map[string]int
}

type Option func(*Client)

// WithCache caches every successful response for the configured ttl
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient replaces the shared transport client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client limited to cfg.RequestsPerMinute, bursting up to the same number
func NewClient(cfg config.FootballDataConfig, opts ...Option) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm < 1 {
		rpm = 1
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		cacheTTL: cfg.CacheTTL,
		now:      time.Now,
		aliases:  defaultAliases(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		logger.Warn("No football-data api key set, requests will probably be refused")
	}
	return c
}

// get fetches path and decodes the json body into v, going via the cache when there is one
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.fetch(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	caching := c.cache != nil && c.cacheTTL > 0
	if caching {
		body, ok, err := c.cache.CacheGet(u)
		if err != nil {
			logger.Warn("Cache read failed", err)
		} else if ok {
			logger.Debug("Cache hit", u)
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	body, err := transport.Get(ctx, c.http, u, map[string]string{AuthHeader: c.apiKey})
	if err != nil {
		return nil, err
	}

	if caching {
		if err := c.cache.CachePut(u, body, c.cacheTTL); err != nil {
			logger.Warn("Cache write failed", err)
		}
	}
	return body, nil
}
