// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/apperr"
	"storefront/internal/markdown"
	"storefront/internal/models"
	"storefront/internal/store"
)

// RecommendationLimit caps the number of recommended products.
const RecommendationLimit = 10

// Sitemap locales. The empty locale is the default site without prefix.
var sitemapLocales = []string{"", "en"}

// Catalog serves the public catalog read operations.
type Catalog struct {
	*Lister
}

// New returns a Catalog over the given stores.
func New(categories CategoryReader, genders GenderReader, brands BrandReader, products ProductReader, scope ScopeResolver) *Catalog {
	return &Catalog{Lister: NewLister(categories, genders, brands, products, scope)}
}

// CategoryTree returns the active category forest of a gender. A missing or
// unknown gender yields an empty forest.
func (c *Catalog) CategoryTree(ctx context.Context, genderCode string) ([]*Node, error) {
	if genderCode == "" {
		return []*Node{}, nil
	}
	g, err := c.genders.FindByCode(ctx, genderCode)
	if apperr.IsNotFound(err) {
		return []*Node{}, nil
	}
	if err != nil {
		return nil, err
	}

	visible, err := visibleCategories(ctx, c.categories)
	if err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(visible))
	for _, cat := range visible {
		if cat.GenderID != nil && *cat.GenderID == g.ID {
			cats = append(cats, cat)
		}
	}
	return BuildTree(cats), nil
}

// NavItem is one entry of the category navigation strip.
type NavItem struct {
	Slug  string  `json:"slug"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

func navItem(c models.Category) NavItem {
	return NavItem{Slug: c.Slug, Name: c.Name, Image: c.Image}
}

// Navigation returns the navigation strip around a category: the parent
// (if any), the category itself, then its children or, for a leaf, its
// siblings. Without a slug it returns the root categories.
func (c *Catalog) Navigation(ctx context.Context, slug string) ([]NavItem, error) {
	cats, err := visibleCategories(ctx, c.categories)
	if err != nil {
		return nil, err
	}
	ix := NewIndex(cats)

	var out []NavItem
	if slug == "" {
		for _, r := range ix.Roots() {
			out = append(out, navItem(r))
		}
		return ensureNav(out), nil
	}

	cur, ok := ix.BySlug(slug)
	if !ok {
		return nil, apperr.NotFound("Category not found")
	}
	if p, ok := ix.parentOf(cur); ok {
		parent, _ := ix.Get(p)
		out = append(out, navItem(parent))
	}
	out = append(out, navItem(cur))

	around := ix.Children(cur.ID)
	if len(around) == 0 {
		around = ix.Siblings(cur.ID)
	}
	for _, s := range around {
		out = append(out, navItem(s))
	}
	return out, nil
}

func ensureNav(items []NavItem) []NavItem {
	if items == nil {
		return []NavItem{}
	}
	return items
}

// ItemDetail is a product page: the product with its active variants, the
// category trail from the root to its primary category and breadcrumbs.
type ItemDetail struct {
	Product         *models.Product   `json:"product"`
	DescriptionHTML string            `json:"description_html,omitempty"`
	Categories      []models.Category `json:"categories"`
	Breadcrumbs     []Breadcrumb      `json:"breadcrumbs"`
}

// Item loads an active product by slug.
func (c *Catalog) Item(ctx context.Context, slug string) (*ItemDetail, error) {
	if slug == "" {
		return nil, apperr.InvalidArgument("Missing slug")
	}
	p, err := c.products.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	out := &ItemDetail{Product: p, Categories: []models.Category{}}
	if p.Description != nil && *p.Description != "" {
		if out.DescriptionHTML, err = markdown.ToHTML(*p.Description); err != nil {
			slog.Warn("render product description", "product_id", p.ID, "error", err)
		}
	}
	var gender *models.Gender
	if p.PrimaryCategoryID != nil {
		cat, err := c.categories.FindByID(ctx, *p.PrimaryCategoryID)
		switch {
		case apperr.IsNotFound(err):
		case err != nil:
			return nil, err
		default:
			chain, err := c.scope.AncestorChain(ctx, cat.ID)
			if err != nil {
				return nil, err
			}
			out.Categories = append(chain, *cat)
			if gender, err = c.genderByID(ctx, cat.GenderID); err != nil {
				return nil, err
			}
		}
	}

	var code string
	var trail []Breadcrumb
	if gender != nil {
		code = gender.Code
		trail = append(trail, Breadcrumb{
			Label: gender.Name,
			To:    Route{Name: RouteGender, Params: map[string]string{"gender": code}},
		})
	}
	for _, cat := range out.Categories {
		params := map[string]string{"category": cat.Slug}
		if code != "" {
			params["gender"] = code
		}
		trail = append(trail, Breadcrumb{Label: cat.Name, To: Route{Name: RouteCategory, Params: params}})
	}
	out.Breadcrumbs = append(trail, Breadcrumb{
		Label: p.Title,
		To:    Route{Name: RouteProduct, Params: map[string]string{"slug": p.Slug}},
	})
	return out, nil
}

func (c *Catalog) genderByID(ctx context.Context, id *int64) (*models.Gender, error) {
	if id == nil {
		return nil, nil
	}
	all, err := c.genders.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == *id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Recommendations lists up to RecommendationLimit active products from the
// subtree of the product's primary category, excluding the product itself.
// When the subtree has nothing else it falls back to the parent category.
func (c *Catalog) Recommendations(ctx context.Context, slug string) ([]ListItem, error) {
	if slug == "" {
		return nil, apperr.InvalidArgument("Missing product slug")
	}
	p, err := c.products.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	if p.PrimaryCategoryID == nil {
		return []ListItem{}, nil
	}

	scope, err := c.scope.DescendantIDs(ctx, *p.PrimaryCategoryID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	f := models.ProductFilter{
		CategoryIDs: scope,
		ExcludeID:   &p.ID,
		Sort:        models.SortDefault,
		Limit:       RecommendationLimit,
	}
	if len(scope) > 0 {
		items, _, err := c.page(ctx, f)
		if err != nil || len(items) > 0 {
			return items, err
		}
	}

	cat, err := c.categories.FindByID(ctx, *p.PrimaryCategoryID)
	if apperr.IsNotFound(err) {
		return []ListItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	if cat.ParentID == nil {
		return []ListItem{}, nil
	}
	f.CategoryIDs = []int64{*cat.ParentID}
	items, _, err := c.page(ctx, f)
	return items, err
}

// ActiveCategories returns every category shoppers can reach, ordered by
// name. Categories under an inactive ancestor are left out.
func (c *Catalog) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	return visibleCategories(ctx, c.categories)
}

// SitemapEntry is one URL of the sitemap.
type SitemapEntry struct {
	Loc        string     `json:"loc"`
	LastMod    *time.Time `json:"lastmod,omitempty"`
	ChangeFreq string     `json:"changefreq"`
	Priority   float64    `json:"priority"`
}

// Sitemap holds the category and product URLs of every locale. Gender
// landing pages lead the category list.
type Sitemap struct {
	Categories []SitemapEntry
	Products   []SitemapEntry
}

// Sitemap loads genders, visible categories and products concurrently and
// expands each into one entry per locale.
func (c *Catalog) Sitemap(ctx context.Context) (*Sitemap, error) {
	var genders []models.Gender
	var cats []models.Category
	var products []store.ProductSlug

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genders, err = c.genders.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = visibleCategories(gctx, c.categories)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = c.products.Slugs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(genders, func(i, j int) bool { return genders[i].Code < genders[j].Code })
	sort.Slice(cats, func(i, j int) bool { return cats[i].Slug < cats[j].Slug })

	sm := &Sitemap{
		Categories: make([]SitemapEntry, 0, (len(genders)+len(cats))*len(sitemapLocales)),
		Products:   make([]SitemapEntry, 0, len(products)*len(sitemapLocales)),
	}
	for _, gen := range genders {
		for _, loc := range sitemapLocales {
			sm.Categories = append(sm.Categories, SitemapEntry{
				Loc:        localePrefix(loc) + "/" + gen.Code,
				ChangeFreq: "daily",
				Priority:   0.8,
			})
		}
	}
	for _, cat := range cats {
		for _, loc := range sitemapLocales {
			sm.Categories = append(sm.Categories, SitemapEntry{
				Loc:        localePrefix(loc) + "/category/" + cat.Slug,
				ChangeFreq: "weekly",
				Priority:   0.6,
			})
		}
	}
	for _, p := range products {
		lastmod := p.CreatedAt.UTC()
		for _, loc := range sitemapLocales {
			sm.Products = append(sm.Products, SitemapEntry{
				Loc:        localePrefix(loc) + "/product/" + p.Slug,
				LastMod:    &lastmod,
				ChangeFreq: "weekly",
				Priority:   0.7,
			})
		}
	}
	return sm, nil
}

func localePrefix(locale string) string {
	if locale == "" {
		return ""
	}
	return "/" + locale
}
