// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store"
)

func ptr[T any](v T) *T { return &v }

func cat(id int64, parent *int64) models.Category {
	return models.Category{
		ID:       id,
		Name:     fmt.Sprintf("Category %d", id),
		Slug:     fmt.Sprintf("category-%d", id),
		ParentID: parent,
		Active:   true,
	}
}

// fakeCategories keeps categories in memory and derives closure rows by
// walking parent pointers, mirroring what the closure rebuild produces.
type fakeCategories struct {
	cats  []models.Category
	calls int
}

func (f *fakeCategories) List(_ context.Context, flt store.CategoryFilter) ([]models.Category, error) {
	f.calls++
	out := []models.Category{}
	for _, c := range f.cats {
		switch {
		case flt.ActiveOnly && !c.Active:
			continue
		case flt.GenderID != nil && (c.GenderID == nil || *c.GenderID != *flt.GenderID):
			continue
		case flt.ParentID != nil && (c.ParentID == nil || *c.ParentID != *flt.ParentID):
			continue
		case flt.RootsOnly && c.ParentID != nil:
			continue
		case flt.ExcludeID != nil && c.ID == *flt.ExcludeID:
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range f.cats {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

func (f *fakeCategories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	for _, c := range f.cats {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

func (f *fakeCategories) byID(id int64) (models.Category, bool) {
	for _, c := range f.cats {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// closure returns every closure row, self rows included.
func (f *fakeCategories) closure() []models.CategoryClosure {
	var rows []models.CategoryClosure
	for _, c := range f.cats {
		rows = append(rows, models.CategoryClosure{AncestorID: c.ID, DescendantID: c.ID})
		seen := map[int64]bool{c.ID: true}
		cur, depth := c, 0
		for cur.ParentID != nil && !seen[*cur.ParentID] {
			p, ok := f.byID(*cur.ParentID)
			if !ok {
				break
			}
			depth++
			seen[p.ID] = true
			rows = append(rows, models.CategoryClosure{AncestorID: p.ID, DescendantID: c.ID, Depth: depth})
			cur = p
		}
	}
	return rows
}

func (f *fakeCategories) Descendants(_ context.Context, id int64) ([]int64, error) {
	var rows []models.CategoryClosure
	for _, r := range f.closure() {
		if r.AncestorID == id {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("Category not found")
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Depth != rows[j].Depth {
			return rows[i].Depth < rows[j].Depth
		}
		return rows[i].DescendantID < rows[j].DescendantID
	})
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.DescendantID
	}
	return ids, nil
}

func (f *fakeCategories) Ancestors(_ context.Context, id int64) ([]models.CategoryAncestor, error) {
	var out []models.CategoryAncestor
	for _, r := range f.closure() {
		if r.DescendantID != id {
			continue
		}
		c, _ := f.byID(r.AncestorID)
		out = append(out, models.CategoryAncestor{Category: c, Depth: r.Depth})
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("Category not found")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out, nil
}

type fakeGenders struct {
	genders []models.Gender
}

func (f *fakeGenders) FindByCode(_ context.Context, code string) (*models.Gender, error) {
	for _, g := range f.genders {
		if g.Code == code {
			return &g, nil
		}
	}
	return nil, apperr.NotFound("Gender not found")
}

func (f *fakeGenders) List(context.Context) ([]models.Gender, error) {
	return append([]models.Gender(nil), f.genders...), nil
}

type fakeBrands struct {
	brands []models.Brand
}

func (f *fakeBrands) FindBySlug(_ context.Context, slug string) (*models.Brand, error) {
	for _, b := range f.brands {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, apperr.NotFound("Brand not found")
}

// fakeProducts evaluates listing filters in memory with the same
// qualification, aggregation and ordering rules as the SQL listing.
type fakeProducts struct {
	products []models.Product
	listed   []models.ProductFilter
}

func (f *fakeProducts) ListProducts(_ context.Context, flt models.ProductFilter) ([]models.ProductRow, uint64, error) {
	f.listed = append(f.listed, flt)

	var rows []models.ProductRow
	for _, p := range f.products {
		if !p.Active {
			continue
		}
		if flt.CategoryIDs != nil && (p.PrimaryCategoryID == nil || !contains(flt.CategoryIDs, *p.PrimaryCategoryID)) {
			continue
		}
		if flt.Text != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(flt.Text)) {
			continue
		}
		if flt.BrandID != nil && (p.BrandID == nil || *p.BrandID != *flt.BrandID) {
			continue
		}
		if flt.ExcludeID != nil && p.ID == *flt.ExcludeID {
			continue
		}

		row := models.ProductRow{
			ID: p.ID, Title: p.Title, Slug: p.Slug, BrandID: p.BrandID,
			BrandName: p.BrandName, PrimaryCategoryID: p.PrimaryCategoryID,
		}
		qualifying := 0
		for i := range p.Variants {
			v := &p.Variants[i]
			if !flt.Variant.Matches(v) {
				continue
			}
			if qualifying == 0 || v.Price < row.MinPrice {
				row.MinPrice = v.Price
			}
			if qualifying == 0 || v.Price > row.MaxPrice {
				row.MaxPrice = v.Price
			}
			qualifying++
		}
		if qualifying == 0 && !flt.Variant.IsZero() {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch flt.Sort {
		case models.SortPriceAsc:
			if a.MinPrice != b.MinPrice {
				return a.MinPrice < b.MinPrice
			}
		case models.SortPriceDesc:
			if a.MaxPrice != b.MaxPrice {
				return a.MaxPrice > b.MaxPrice
			}
		case models.SortNew:
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	total := uint64(len(rows))
	if flt.Offset >= total {
		return []models.ProductRow{}, total, nil
	}
	rows = rows[flt.Offset:]
	if flt.Limit > 0 && uint64(len(rows)) > flt.Limit {
		rows = rows[:flt.Limit]
	}
	return rows, total, nil
}

func (f *fakeProducts) VariantsFor(_ context.Context, ids []int64, activeOnly bool) (map[int64][]models.Variant, error) {
	out := make(map[int64][]models.Variant, len(ids))
	for _, p := range f.products {
		if !contains(ids, p.ID) {
			continue
		}
		vs := []models.Variant{}
		for _, v := range p.Variants {
			if activeOnly && !v.Active {
				continue
			}
			vs = append(vs, v)
		}
		out[p.ID] = vs
	}
	return out, nil
}

func (f *fakeProducts) FindBySlug(_ context.Context, slug string, activeOnly bool) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug && (!activeOnly || p.Active) {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Product not found")
}

func (f *fakeProducts) Slugs(context.Context) ([]store.ProductSlug, error) {
	var out []store.ProductSlug
	for _, p := range f.products {
		if p.Active {
			out = append(out, store.ProductSlug{Slug: p.Slug, CreatedAt: p.CreatedAt})
		}
	}
	return out, nil
}

func contains(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func variant(id, price int64, color string, sizes ...string) models.Variant {
	v := models.Variant{
		ID:     id,
		Color:  ptr(color),
		Price:  price,
		Active: true,
		Images: []models.VariantImage{{ID: id*10 + 1, VariantID: id, URL: "/img/" + color + ".jpg"}},
		Sizes:  []models.VariantSize{},
	}
	for i, s := range sizes {
		v.Sizes = append(v.Sizes, models.VariantSize{ID: id*10 + int64(i), VariantID: id, Size: s})
	}
	return v
}

func product(id int64, slug string, category int64, variants ...models.Variant) models.Product {
	for i := range variants {
		variants[i].ProductID = id
	}
	return models.Product{
		ID:                id,
		Title:             strings.ToUpper(slug[:1]) + slug[1:],
		Slug:              slug,
		PrimaryCategoryID: ptr(category),
		Active:            true,
		CreatedAt:         time.Date(2026, 1, int(id%28)+1, 0, 0, 0, 0, time.UTC),
		Variants:          variants,
	}
}

// fixture is a small women/men catalog: footwear > shoes > sneakers.
type fixture struct {
	categories *fakeCategories
	genders    *fakeGenders
	brands     *fakeBrands
	products   *fakeProducts
}

func newFixture() *fixture {
	women := models.Gender{ID: 1, Code: "women", Name: "Mulher"}
	men := models.Gender{ID: 2, Code: "men", Name: "Homem"}

	cats := []models.Category{
		{ID: 1, Name: "Footwear", Slug: "footwear", GenderID: &women.ID, Active: true},
		{ID: 10, Name: "Shoes", Slug: "shoes", ParentID: ptr(int64(1)), GenderID: &women.ID, Active: true},
		{ID: 11, Name: "Sneakers", Slug: "sneakers", ParentID: ptr(int64(10)), GenderID: &women.ID, Active: true},
		{ID: 12, Name: "Bags", Slug: "bags", ParentID: ptr(int64(1)), GenderID: &women.ID, Active: true},
		{ID: 20, Name: "Boots", Slug: "men-boots", GenderID: &men.ID, Active: true},
		{ID: 30, Name: "Archive", Slug: "archive", Active: false},
	}

	nike := models.Brand{ID: 5, Name: "Nike", Slug: "nike", Active: true}

	products := []models.Product{
		product(100, "ballet-flat", 10, variant(1000, 4000, "red", "37")),
		product(101, "court-shoe", 10, variant(1010, 9000, "black", "38"), variant(1011, 5000, "nude", "38", "39")),
		product(102, "runner", 11, variant(1020, 7000, "white", "40")),
		product(103, "trainer", 11, variant(1030, 9000, "blue", "41"), variant(1031, 3000, "grey", "41")),
		product(104, "tote", 12, variant(1040, 6000, "brown")),
		product(105, "chelsea", 20, variant(1050, 8000, "black", "43")),
	}
	products[2].BrandID = &nike.ID
	products[2].BrandName = &nike.Name

	return &fixture{
		categories: &fakeCategories{cats: cats},
		genders:    &fakeGenders{genders: []models.Gender{women, men}},
		brands:     &fakeBrands{brands: []models.Brand{nike}},
		products:   &fakeProducts{products: products},
	}
}

func (fx *fixture) catalog(scope ScopeResolver) *Catalog {
	if scope == nil {
		scope = NewClosureResolver(fx.categories)
	}
	return New(fx.categories, fx.genders, fx.brands, fx.products, scope)
}
