// Package client provides the core KOL Port HTTP client with caching,
// request de-duplication, retry, and rate limiting.
package client

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kolport/kolport-go/pkg/cache"
	"github.com/kolport/kolport-go/pkg/events"
	"github.com/kolport/kolport-go/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kolport_requests_total",
		Help: "Total requests by endpoint and outcome",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kolport_request_duration_seconds",
		Help:    "Request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kolport_errors_total",
		Help: "Total request errors by class",
	}, []string{"class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kolport_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kolport_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.3, 0.6, 1.2, 2.5, 5, 10},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kolport_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Version is sent on every request in the X-Client-Version header.
const Version = "0.3.0"

// platformTag identifies the runtime in the X-Client-Platform header.
const platformTag = "go"

// Environment selects the backend endpoint root.
type Environment string

const (
	// EnvProduction targets the production backend.
	EnvProduction Environment = "production"

	// EnvTest targets the staging backend.
	EnvTest Environment = "test"

	// EnvDevelopment targets a local backend.
	EnvDevelopment Environment = "development"
)

// environmentBaseURLs are the fixed endpoint roots per environment.
var environmentBaseURLs = map[Environment]string{
	EnvProduction:  "https://api.kolport.io/v1",
	EnvTest:        "https://api.test.kolport.io/v1",
	EnvDevelopment: "http://localhost:8787/v1",
}

// Defaults applied by DefaultConfig.
const (
	DefaultCacheTTL   = 60 * time.Second
	DefaultMaxRetries = 3
)

// Client is the main KOL Port API client. All mutable state (cache,
// pending-request registry, rate limit window) is owned by the
// instance; multiple independent clients can coexist in one process.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config

	cache   cache.Store
	pending *pendingRequests
	limiter *ratelimit.Limiter
	events  *events.Bus
	logger  zerolog.Logger
	jitter  JitterFunc

	closed    atomic.Bool
	closeOnce sync.Once
}

// Config holds the client configuration.
type Config struct {
	// APIKey is sent as a bearer token on every request (REQUIRED).
	APIKey string

	// Environment selects the endpoint root.
	Environment Environment

	// BaseURL overrides the environment's endpoint root when set.
	BaseURL string

	// HTTPClient overrides the default HTTP client (30s timeout).
	HTTPClient *http.Client

	// Cache is the response cache backend. Defaults to an in-memory
	// store swept on SweepInterval.
	Cache cache.Store

	// CacheTTL is how long successful responses stay cached.
	CacheTTL time.Duration

	// SweepInterval is the expired-entry sweep period of the default
	// in-memory store.
	SweepInterval time.Duration

	// Retry
	AutoRetry  bool
	MaxRetries int
	BaseDelay  time.Duration

	// Jitter overrides the backoff jitter source (for tests).
	Jitter JitterFunc

	// EventSource feeds the event bus. Nil means no push events; the
	// bus still carries client-emitted events.
	EventSource events.Source
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:        apiKey,
		Environment:   EnvProduction,
		CacheTTL:      DefaultCacheTTL,
		SweepInterval: cache.DefaultSweepInterval,
		AutoRetry:     true,
		MaxRetries:    DefaultMaxRetries,
		BaseDelay:     DefaultBaseDelay,
	}
}

// New creates a new KOL Port client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		env := cfg.Environment
		if env == "" {
			env = EnvProduction
		}
		resolved, ok := environmentBaseURLs[env]
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", env)
		}
		baseURL = resolved
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	logger := log.With().Str("component", "kolport-client").Logger()

	store := cfg.Cache
	if store == nil {
		store = cache.NewMemoryStore(cfg.SweepInterval)
	}

	return &Client{
		httpClient: orDefaultHTTPClient(cfg.HTTPClient),
		baseURL:    baseURL,
		config:     cfg,
		cache:      store,
		pending:    newPendingRequests(),
		limiter:    ratelimit.NewLimiter(logger),
		events:     events.NewBus(cfg.EventSource, logger),
		logger:     logger,
		jitter:     cfg.Jitter,
	}, nil
}

func orDefaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// Events returns the client's event bus.
func (c *Client) Events() *events.Bus {
	return c.events
}

// Cache returns the cache store (for testing).
func (c *Client) Cache() cache.Store {
	return c.cache
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// CancelAll aborts every in-flight request. Each aborted caller
// observes a REQUEST_CANCELLED envelope.
func (c *Client) CancelAll() {
	c.pending.cancelAll()
}

// Close disposes the client: cancels all in-flight requests, stops the
// cache sweep timer, and releases all event listeners. Safe to call
// more than once. Issuing operations after Close is a programmer error
// and panics.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.pending.cancelAll()
		if err := c.cache.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Cache close error")
		}
		if err := c.events.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Event bus close error")
		}
	})
	return nil
}

// checkOpen panics when the client has been disposed.
func (c *Client) checkOpen() {
	if c.closed.Load() {
		panic("kolport: client used after Close")
	}
}
