// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/analytics"
	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/store"
)

// CatalogService is the read side of the catalog served to shoppers.
type CatalogService interface {
	List(ctx context.Context, req catalog.ListRequest) (*catalog.Listing, error)
	CategoryTree(ctx context.Context, genderCode string) ([]*catalog.Node, error)
	Navigation(ctx context.Context, slug string) ([]catalog.NavItem, error)
	Item(ctx context.Context, slug string) (*catalog.ItemDetail, error)
	Recommendations(ctx context.Context, slug string) ([]catalog.ListItem, error)
	ActiveCategories(ctx context.Context) ([]models.Category, error)
	Sitemap(ctx context.Context) (*catalog.Sitemap, error)
}

// OfficeLister lists pickup offices.
type OfficeLister interface {
	List(ctx context.Context, f store.OfficeFilter) ([]models.Office, uint64, error)
}

// OrderFinder looks up an order by its number.
type OrderFinder interface {
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
}

// Public groups the unauthenticated catalog, office and order handlers.
type Public struct {
	catalog CatalogService
	offices OfficeLister
	orders  OrderFinder
	tracker analytics.Tracker
}

// NewPublic creates a new Public handler group. A nil tracker discards
// analytics events.
func NewPublic(c CatalogService, offices OfficeLister, orders OrderFinder, tracker analytics.Tracker) *Public {
	if tracker == nil {
		tracker = analytics.Discard{}
	}
	return &Public{catalog: c, offices: offices, orders: orders, tracker: tracker}
}

// Health reports liveness.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List serves GET /catalog/list: one page of products for a category,
// gender, brand or text query.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	req, err := catalog.ParseListRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := p.catalog.List(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, e := range analytics.ListingEvents(req, listing) {
		p.tracker.Track(r.Context(), e)
	}
	writeJSON(w, http.StatusOK, listing)
}

// ListHit emits the listing events for a /catalog/list response served
// from the cache.
func (p *Public) ListHit(r *http.Request, body []byte) {
	req, err := catalog.ParseListRequest(r.URL.Query())
	if err != nil {
		return
	}
	var listing catalog.Listing
	if err := json.Unmarshal(body, &listing); err != nil {
		slog.Warn("decode cached listing", "error", err)
		return
	}
	for _, e := range analytics.ListingEvents(req, &listing) {
		p.tracker.Track(r.Context(), e)
	}
}

// CategoryTree serves GET /catalog/categories?gender=.
func (p *Public) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := p.catalog.CategoryTree(r.Context(), strings.TrimSpace(r.URL.Query().Get("gender")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Navigation serves GET /catalog/category-navigation?slug=.
func (p *Public) Navigation(w http.ResponseWriter, r *http.Request) {
	items, err := p.catalog.Navigation(r.Context(), strings.TrimSpace(r.URL.Query().Get("slug")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Item serves GET /catalog/item?slug=.
func (p *Public) Item(w http.ResponseWriter, r *http.Request) {
	detail, err := p.catalog.Item(r.Context(), strings.TrimSpace(r.URL.Query().Get("slug")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.tracker.Track(r.Context(), analytics.ViewItemEvent(detail.Product))
	writeJSON(w, http.StatusOK, detail)
}

// ItemHit emits view_item for a /catalog/item response served from the
// cache.
func (p *Public) ItemHit(r *http.Request, body []byte) {
	var detail catalog.ItemDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		slog.Warn("decode cached item", "error", err)
		return
	}
	if detail.Product != nil {
		p.tracker.Track(r.Context(), analytics.ViewItemEvent(detail.Product))
	}
}

// Recommendations serves GET /catalog/recommendations?slug=.
func (p *Public) Recommendations(w http.ResponseWriter, r *http.Request) {
	items, err := p.catalog.Recommendations(r.Context(), strings.TrimSpace(r.URL.Query().Get("slug")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// categorySummary is the public view of an active category.
type categorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Categories serves GET /categories: every active category.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.catalog.ActiveCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categorySummary, len(cats))
	for i, c := range cats {
		out[i] = categorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	writeJSON(w, http.StatusOK, out)
}

// SitemapCategories serves GET /sitemap/categories.json.
func (p *Public) SitemapCategories(w http.ResponseWriter, r *http.Request) {
	sm, err := p.catalog.Sitemap(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sm.Categories)
}

// SitemapProducts serves GET /sitemap/products.json.
func (p *Public) SitemapProducts(w http.ResponseWriter, r *http.Request) {
	sm, err := p.catalog.Sitemap(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sm.Products)
}

// Offices serves GET /offices: active pickup offices ordered by name.
func (p *Public) Offices(w http.ResponseWriter, r *http.Request) {
	offices, _, err := p.offices.List(r.Context(), store.OfficeFilter{ActiveOnly: true})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offices)
}

// Order serves GET /orders?number=: an order with its items.
func (p *Public) Order(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if number == "" {
		writeError(w, r, apperr.InvalidArgument("Order number required"))
		return
	}
	o, err := p.orders.FindByNumber(r.Context(), number)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
