// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the cookie carrying the cart id.
	CookieName = "sf_cart"

	// DefaultTTL is how long an untouched cart survives in Valkey.
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "cart:"
)

// Store persists carts by id.
type Store interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, id string, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// ValkeyStore keeps carts as JSON in Valkey with a sliding TTL.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyStore creates a cart store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, ttl time.Duration) *ValkeyStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &ValkeyStore{client: client, ttl: ttl}
}

// Load returns the stored cart, or an empty cart if none exists.
func (s *ValkeyStore) Load(ctx context.Context, id string) (*Cart, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart get: %w", err)
	}

	c := New()
	if err := json.Unmarshal(payload, c); err != nil {
		return nil, fmt.Errorf("cart unmarshal: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

// Save stores the cart and resets its TTL.
func (s *ValkeyStore) Save(ctx context.Context, id string, c *Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart set: %w", err)
	}
	return nil
}

// Delete removes the cart.
func (s *ValkeyStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("cart delete: %w", err)
	}
	return nil
}

// ID returns the cart id from the request cookie, or "" if there is none.
func ID(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// EnsureID returns the request's cart id, issuing a new cookie when the
// request has none.
func EnsureID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if id := ID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultTTL.Seconds()),
	})
	return id
}
