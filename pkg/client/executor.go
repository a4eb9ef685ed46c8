package client

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kolport/kolport-go/pkg/cache"
)

// ExecOptions control caching behavior for one execution.
type ExecOptions struct {
	// UseCache enables the cache fast path and response caching.
	UseCache bool

	// BypassCache skips the cache lookup while still allowing the
	// response to be stored. Retries always bypass.
	BypassCache bool
}

// Execute runs one logical request with caching, de-duplication, and
// retry, returning a response envelope. It never returns a Go error:
// every expected failure mode is represented in the envelope.
func (c *Client) Execute(ctx context.Context, req *Request) *Response {
	return c.ExecuteWithOptions(ctx, req, ExecOptions{UseCache: true})
}

// ExecuteWithOptions is Execute with explicit cache options.
//
// The retry sequence is an explicit loop with an attempt counter:
// transient failures (5xx, network) back off and go around with the
// cache bypassed; everything else returns immediately.
func (c *Client) ExecuteWithOptions(ctx context.Context, req *Request, opts ExecOptions) *Response {
	c.checkOpen()

	key := req.Key()
	endpoint := req.Endpoint

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	for attempt := 0; ; attempt++ {
		// Cache fast path: first attempt only, retries force a fresh call.
		if attempt == 0 && opts.UseCache && !opts.BypassCache {
			if resp := c.cacheLookup(ctx, key, endpoint); resp != nil {
				return resp
			}
		}

		if !c.limiter.Allow() {
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			return failure(CodeRateLimited, "request blocked: rate limit budget exhausted", nil)
		}

		resp, class := c.dispatch(ctx, req, key)

		if resp.Success {
			if opts.UseCache {
				c.cacheStore(ctx, key, endpoint, resp)
			}
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return resp
		}

		if class != "" {
			errorsTotal.WithLabelValues(string(class)).Inc()
		}

		if !c.config.AutoRetry || !shouldRetry(class) {
			return resp
		}
		if attempt >= c.config.MaxRetries {
			retryExhaustedTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Str("error_class", string(class)).
				Int("max_retries", c.config.MaxRetries).
				Msg("Retry attempts exhausted")
			return resp
		}

		delay := backoffDelay(attempt, c.config.BaseDelay, c.jitter)
		retriesTotal.WithLabelValues(string(class)).Inc()
		retryBackoffSeconds.WithLabelValues(string(class)).Observe(delay.Seconds())

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("error_class", string(class)).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("Retrying request after backoff")

		// The backoff wait is itself cancellable: the waiter holds a
		// registry entry so Close, CancelAll, and a superseding call for
		// the same key all reach it before the next attempt dispatches.
		waitCtx, cancelWait := context.WithCancel(ctx)
		entry := c.pending.register(key, cancelWait)

		var waitErr error
		select {
		case <-waitCtx.Done():
			waitErr = waitCtx.Err()
		case <-time.After(delay):
			waitErr = waitCtx.Err()
		}

		c.pending.removeOnSettle(key, entry)
		cancelWait()

		if waitErr != nil {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Cancelled during retry backoff")
			requestsTotal.WithLabelValues(endpoint, "cancelled").Inc()
			return failure(CodeRequestCancelled, "request cancelled during backoff", waitErr.Error())
		}

		opts.BypassCache = true
	}
}

// cacheLookup returns the cached envelope for key, or nil.
func (c *Client) cacheLookup(ctx context.Context, key, endpoint string) *Response {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		return nil
	}

	var resp Response
	if err := json.Unmarshal(entry.Payload, &resp); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry")
		_ = c.cache.Delete(ctx, key)
		return nil
	}

	requestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("key", key).
		Msg("Cache hit")

	return &resp
}

// cacheStore writes a successful envelope with the configured TTL.
func (c *Client) cacheStore(ctx context.Context, key, endpoint string, resp *Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to marshal response for cache")
		return
	}
	if err := c.cache.Set(ctx, key, payload, c.config.CacheTTL); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("endpoint", endpoint).
		Dur("ttl", c.config.CacheTTL).
		Msg("Cached response")
}

// dispatch performs exactly one network call for req. It supersedes
// any in-flight call for the same key, registers a cancellation handle
// before awaiting, and cleans the registry on settlement.
func (c *Client) dispatch(ctx context.Context, req *Request, key string) (*Response, ErrorClass) {
	// Last-request-wins: a newer call for the same key cancels an older
	// one in flight rather than coexisting with it.
	c.pending.cancelAndRemove(key)

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	entry := c.pending.register(key, cancel)
	defer c.pending.removeOnSettle(key, entry)

	httpReq, err := req.build(callCtx, c.baseURL, c.config.APIKey)
	if err != nil {
		return failure(CodeRequestFailed, "failed to build request", err.Error()), ErrorClassInternal
	}

	c.logger.Debug().
		Str("endpoint", req.Endpoint).
		Str("method", req.Method).
		Msg("Executing request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if callCtx.Err() != nil {
			requestsTotal.WithLabelValues(req.Endpoint, "cancelled").Inc()
			return failure(CodeRequestCancelled, "request cancelled", callCtx.Err().Error()), ErrorClassCancelled
		}
		c.logger.Error().Err(err).Str("endpoint", req.Endpoint).Msg("HTTP request failed")
		requestsTotal.WithLabelValues(req.Endpoint, "network_error").Inc()
		return failure(CodeNetworkError, "network request failed", err.Error()), ErrorClassNetwork
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if callCtx.Err() != nil {
			requestsTotal.WithLabelValues(req.Endpoint, "cancelled").Inc()
			return failure(CodeRequestCancelled, "request cancelled", callCtx.Err().Error()), ErrorClassCancelled
		}
		requestsTotal.WithLabelValues(req.Endpoint, "network_error").Inc()
		return failure(CodeNetworkError, "failed to read response body", err.Error()), ErrorClassNetwork
	}

	if err := c.limiter.UpdateFromHeaders(httpResp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	status := httpResp.StatusCode
	requestsTotal.WithLabelValues(req.Endpoint, strconv.Itoa(status)).Inc()

	if status >= 500 {
		c.logger.Warn().
			Str("endpoint", req.Endpoint).
			Int("status", status).
			Msg("Server error response")
		return failure(httpErrorCode(status), httpResp.Status, truncate(body)), ErrorClassServer
	}
	if status >= 400 {
		c.logger.Warn().
			Str("endpoint", req.Endpoint).
			Int("status", status).
			Msg("Client error response")
		return failure(httpErrorCode(status), httpResp.Status, truncate(body)), ErrorClassClient
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error().Err(err).Str("endpoint", req.Endpoint).Msg("Malformed response body")
		return failure(CodeParseError, "malformed response body", err.Error()), ErrorClassParse
	}

	return &resp, ""
}

// truncate bounds error detail payloads taken from response bodies.
func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
