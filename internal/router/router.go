// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// storefront API. Routes are organised into public, cart, auth and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront/internal/cache"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

// Deps holds everything the router wires together. Cache and Limiter may
// be nil, which disables response caching and rate limiting.
type Deps struct {
	Sessions middleware.SessionLoader
	Cache    *cache.ResponseCache
	Limiter  *middleware.RateLimiter
	Secure   bool

	Public   *handlers.Public
	Cart     *handlers.Cart
	Checkout *handlers.Checkout
	Auth     *handlers.Auth
	Admin    *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check: no rate limit, no session requirements.
	r.Get("/health", d.Public.Health)

	// Storefront API.
	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		// Cacheable catalog reads. Tracked endpoints replay their
		// analytics events on a hit.
		r.With(d.Cache.OnHit(d.Public.ListHit)).Get("/catalog/list", d.Public.List)
		r.With(d.Cache.OnHit(d.Public.ItemHit)).Get("/catalog/item", d.Public.Item)
		r.Group(func(r chi.Router) {
			r.Use(d.Cache.Middleware)

			r.Get("/catalog/categories", d.Public.CategoryTree)
			r.Get("/catalog/category-navigation", d.Public.Navigation)
			r.Get("/catalog/recommendations", d.Public.Recommendations)
			r.Get("/categories", d.Public.Categories)
			r.Get("/offices", d.Public.Offices)
			r.Get("/sitemap/categories.json", d.Public.SitemapCategories)
			r.Get("/sitemap/products.json", d.Public.SitemapProducts)
		})

		r.Get("/orders", d.Public.Order)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", d.Cart.Get)
			r.Delete("/", d.Cart.Clear)
			r.Post("/items", d.Cart.Add)
			r.Patch("/items/{key}", d.Cart.Update)
			r.Delete("/items/{key}", d.Cart.Remove)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/begin", d.Cart.BeginCheckout)
			r.Post("/place-order", d.Checkout.PlaceOrder)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/me", d.Auth.Me)

			// Completing a login needs a session that still owes a code.
			r.With(middleware.RequireAuth).Post("/2fa/verify", d.Auth.Verify2FA)

			// Enrolment needs a fully authenticated session.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)
				r.Get("/2fa/qr", d.Auth.TwoFASetup)
				r.Post("/2fa/enable", d.Auth.TwoFAEnable)
			})
		})
	})

	// Back office: admin role with completed 2FA, plus CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Use(middleware.NewCSRF(d.Secure))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Admin.Categories)
			r.Get("/tree", d.Admin.CategoryTree)
			r.Get("/genders", d.Admin.Genders)
			r.Post("/save", d.Admin.SaveCategory)
			r.Post("/remove", d.Admin.RemoveCategory)
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", d.Admin.Brands)
			r.Post("/save", d.Admin.SaveBrand)
			r.Post("/remove", d.Admin.RemoveBrand)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", d.Admin.Products)
			r.Get("/{id}", d.Admin.Product)
			r.Post("/save", d.Admin.SaveProduct)
			r.Post("/upload", d.Admin.Upload)
			r.Post("/variants/save", d.Admin.SaveVariant)
			r.Post("/variants/remove", d.Admin.RemoveVariant)
			r.Post("/variants/sizes/save", d.Admin.SaveSize)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", d.Admin.Orders)
			r.Patch("/", d.Admin.UpdateOrder)
		})

		r.Route("/offices", func(r chi.Router) {
			r.Get("/", d.Admin.Offices)
			r.Post("/", d.Admin.CreateOffice)
			r.Get("/{id}", d.Admin.Office)
			r.Patch("/{id}", d.Admin.UpdateOffice)
		})
	})

	return r
}

// writeStatus writes a JSON error body for router-level failures.
func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
