// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store"
)

// HomeLabel is the label of the first breadcrumb.
const HomeLabel = "Página inicial"

// Route names used by breadcrumbs.
const (
	RouteIndex    = "index"
	RouteGender   = "gender"
	RouteCategory = "gender-category"
	RouteProduct  = "product-slug"
)

// Route is a named front-end route with its parameters.
type Route struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// Breadcrumb is one step of the navigation trail.
type Breadcrumb struct {
	Label string `json:"label"`
	To    Route  `json:"to"`
}

// Listing is one page of a product listing.
type Listing struct {
	Items       []ListItem   `json:"items"`
	Total       uint64       `json:"total"`
	Page        uint64       `json:"page"`
	Limit       uint64       `json:"limit"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}

// CategoryReader is the part of the category store the catalog reads.
type CategoryReader interface {
	List(ctx context.Context, f store.CategoryFilter) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// GenderReader resolves gender codes.
type GenderReader interface {
	FindByCode(ctx context.Context, code string) (*models.Gender, error)
	List(ctx context.Context) ([]models.Gender, error)
}

// BrandReader resolves brand slugs.
type BrandReader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Brand, error)
}

// ProductReader runs product queries.
type ProductReader interface {
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.ProductRow, uint64, error)
	VariantsFor(ctx context.Context, productIDs []int64, activeOnly bool) (map[int64][]models.Variant, error)
	FindBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error)
	Slugs(ctx context.Context) ([]store.ProductSlug, error)
}

// Lister runs product listings.
type Lister struct {
	categories CategoryReader
	genders    GenderReader
	brands     BrandReader
	products   ProductReader
	scope      ScopeResolver
}

// NewLister returns a Lister resolving category scope through scope.
func NewLister(categories CategoryReader, genders GenderReader, brands BrandReader, products ProductReader, scope ScopeResolver) *Lister {
	return &Lister{
		categories: categories,
		genders:    genders,
		brands:     brands,
		products:   products,
		scope:      scope,
	}
}

// List resolves a listing request: gender and category scope, breadcrumbs,
// text, brand and variant facets, sort and pagination, then normalizes each
// product to its default variant. Any unresolvable reference fails the
// whole request with NotFound.
func (l *Lister) List(ctx context.Context, req ListRequest) (*Listing, error) {
	out := &Listing{Items: []ListItem{}, Page: req.Page, Limit: req.Limit}

	var gender *models.Gender
	if req.Gender != "" {
		g, err := l.genders.FindByCode(ctx, req.Gender)
		if err != nil {
			return nil, err
		}
		gender = g
	}

	visible, err := visibleCategories(ctx, l.categories)
	if err != nil {
		return nil, err
	}
	shown := make(map[int64]bool, len(visible))
	for _, c := range visible {
		shown[c.ID] = true
	}

	var scope []int64
	var current *models.Category
	var chain []models.Category
	switch {
	case req.Slug != "":
		c, err := l.categories.FindBySlug(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		if !shown[c.ID] {
			return nil, apperr.NotFound("Category not found")
		}
		if gender != nil && (c.GenderID == nil || *c.GenderID != gender.ID) {
			return nil, apperr.NotFound("Category does not belong to this gender")
		}
		below, err := l.scope.DescendantIDs(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range below {
			if shown[id] {
				scope = append(scope, id)
			}
		}
		if chain, err = l.scope.AncestorChain(ctx, c.ID); err != nil {
			return nil, err
		}
		current = c

	default:
		for _, c := range visible {
			if gender == nil || (c.GenderID != nil && *c.GenderID == gender.ID) {
				scope = append(scope, c.ID)
			}
		}
	}

	out.Breadcrumbs = breadcrumbs(req.Gender, gender, chain, current)

	if len(scope) == 0 {
		return out, nil
	}

	filter := models.ProductFilter{
		CategoryIDs: scope,
		Text:        req.Query,
		BrandID:     req.BrandID,
		Variant:     req.Variant,
		Sort:        req.Sort,
		Offset:      req.Offset(),
		Limit:       req.Limit,
	}
	if filter.BrandID == nil && req.BrandSlug != "" {
		b, err := l.brands.FindBySlug(ctx, req.BrandSlug)
		if err != nil {
			return nil, err
		}
		filter.BrandID = &b.ID
	}

	items, total, err := l.page(ctx, filter)
	if err != nil {
		return nil, err
	}
	out.Items = items
	out.Total = total
	return out, nil
}

// visibleCategories lists the categories shoppers can reach: active, with
// every ancestor active.
func visibleCategories(ctx context.Context, categories CategoryReader) ([]models.Category, error) {
	cats, err := categories.List(ctx, store.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	return Visible(cats), nil
}

// page runs the product query and normalizes the rows it returns.
func (l *Lister) page(ctx context.Context, f models.ProductFilter) ([]ListItem, uint64, error) {
	rows, total, err := l.products.ListProducts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []ListItem{}, total, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	variants, err := l.products.VariantsFor(ctx, ids, true)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ListItem, len(rows))
	for i, r := range rows {
		items[i] = normalize(r, variants[r.ID], f.Variant, f.Sort)
	}
	return items, total, nil
}

// breadcrumbs builds the trail home, gender, ancestors, current category.
// Category routes carry the requested gender code when there is one.
func breadcrumbs(genderCode string, gender *models.Gender, chain []models.Category, current *models.Category) []Breadcrumb {
	trail := []Breadcrumb{{Label: HomeLabel, To: Route{Name: RouteIndex, Params: map[string]string{}}}}
	if gender != nil {
		trail = append(trail, Breadcrumb{
			Label: gender.Name,
			To:    Route{Name: RouteGender, Params: map[string]string{"gender": genderCode}},
		})
	}
	if current == nil {
		return trail
	}
	for _, c := range append(chain, *current) {
		params := map[string]string{"category": c.Slug}
		if genderCode != "" {
			params["gender"] = genderCode
		}
		trail = append(trail, Breadcrumb{Label: c.Name, To: Route{Name: RouteCategory, Params: params}})
	}
	return trail
}
