// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides the fakes and request helpers shared by the
// handler tests. Every store is replaced by an in-memory fake so the
// handlers run without PostgreSQL or Valkey.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/store"
)

func ptr[T any](v T) *T { return &v }

// ---------- requests ----------

// jsonRequest builds a request with body marshalled as JSON. A string body
// is sent verbatim.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withURLParam adds a chi URL parameter to a request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches session data the way LoadSession does.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), data))
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

// errorMessage returns the "error" field of an error response.
func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rr, &body)
	return body["error"]
}

// ---------- analytics ----------

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recordingTracker) Track(_ context.Context, e analytics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingTracker) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

// ---------- carts ----------

// memCarts is an in-memory cart.Store.
type memCarts struct {
	mu      sync.Mutex
	carts   map[string][]cart.Item
	saveErr error
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[string][]cart.Item{}}
}

func (m *memCarts) Load(_ context.Context, id string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cart.New()
	if items, ok := m.carts[id]; ok {
		c.Items = slices.Clone(items)
	}
	return c, nil
}

func (m *memCarts) Save(_ context.Context, id string, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[id] = slices.Clone(c.Items)
	return nil
}

func (m *memCarts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, id)
	return nil
}

func (m *memCarts) items(id string) ([]cart.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.carts[id]
	return items, ok
}

// ---------- products ----------

// runnerProduct is an active product with an active and an inactive
// variant. The active variant has one size.
func runnerProduct() *models.Product {
	return &models.Product{
		ID:     1,
		Title:  "Runner",
		Slug:   "runner",
		Active: true,
		Variants: []models.Variant{
			{
				ID: 10, ProductID: 1, Color: ptr("red"), Price: 5000, Active: true,
				Images: []models.VariantImage{{ID: 7, VariantID: 10, URL: "https://cdn.test/runner.jpg"}},
				Sizes:  []models.VariantSize{{ID: 100, VariantID: 10, Size: "42", Stock: ptr(3)}},
			},
			{ID: 11, ProductID: 1, Color: ptr("blue"), Price: 5200, Active: false},
		},
	}
}

// fakeProducts implements ProductFinder and AdminProductStore.
type fakeProducts struct {
	mu       sync.Mutex
	byID     map[int64]*models.Product
	saved    []*models.Product
	variants []*models.Variant
	sizes    []*models.VariantSize
	deleted  []int64
	images   []models.VariantImage
	filter   store.AdminProductFilter
}

func newFakeProducts(ps ...*models.Product) *fakeProducts {
	f := &fakeProducts{byID: map[int64]*models.Product{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProducts) FindByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Product not found")
	}
	return p, nil
}
