// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// HeaderStatus reports HIT or MISS on cacheable requests.
	HeaderStatus = "X-Cache"
)

// ResponseCache stores successful JSON responses of public GET endpoints
// in Valkey, keyed by path and canonical query string. A nil cache, a nil
// client or a zero TTL disables it.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

// Enabled reports whether responses are cached at all.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key returns the cache key for a request. Query parameters are sorted so
// ?a=1&b=2 and ?b=2&a=1 share an entry.
func Key(r *http.Request) string {
	q := r.URL.Query().Encode()
	if q == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q
}

// Get retrieves a cached body. Errors count as misses.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a body with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, responseKeyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached response by scanning for the prefix.
// Called after any admin catalog mutation, since a single category or
// product change can affect listings, trees and sitemaps alike.
func (c *ResponseCache) InvalidateAll(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "deleted", deleted)
	}
}

// recorder tees the response body so a 200 can be stored after the
// handler returns.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// HitFunc runs after a request has been answered from the cache, with the
// cached body. It carries the side effects the skipped handler would have
// performed.
type HitFunc func(r *http.Request, body []byte)

// Middleware serves GET requests from the cache and stores 200 responses.
// Other methods and status codes pass through untouched.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return c.serve(next, nil)
}

// OnHit returns Middleware with fn called on every cache hit.
func (c *ResponseCache) OnHit(fn HitFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return c.serve(next, fn)
	}
}

func (c *ResponseCache) serve(next http.Handler, onHit HitFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.Enabled() || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := Key(r)
		if body, ok := c.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set(HeaderStatus, "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			if onHit != nil {
				onHit(r, body)
			}
			return
		}

		w.Header().Set(HeaderStatus, "MISS")
		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == http.StatusOK {
			c.Set(r.Context(), key, rec.body.Bytes())
		}
	})
}
